package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ratulDIU/RentoVerse/internal/domain"
	"github.com/ratulDIU/RentoVerse/internal/repository"
)

// escrowTx implements repository.EscrowTx on a single *sql.Tx. LockPayment
// uses SELECT ... FOR UPDATE, so a second transaction touching the same
// payment blocks until this one commits or rolls back.
type escrowTx struct {
	tx *sql.Tx
}

func (s *Store) BeginTx(ctx context.Context) (repository.EscrowTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &escrowTx{tx: tx}, nil
}

func (t *escrowTx) LockPayment(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`
	p, err := scanPayment(t.tx.QueryRowContext(ctx, query, paymentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: payment %d", domain.ErrNotFound, paymentID)
	}
	return p, err
}

func (t *escrowTx) GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(t.tx.QueryRowContext(ctx, query, bookingID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: booking %d", domain.ErrNotFound, bookingID)
	}
	return b, err
}

func (t *escrowTx) CreatePayment(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (booking_id, amount_cents, method, reference, payer_name, payer_phone, txn_id, note, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	return t.tx.QueryRowContext(ctx, query, p.BookingID, p.Amount, p.Method, p.Reference,
		p.PayerName, p.PayerPhone, p.TxnID, p.Note, p.Status, p.CreatedAt).Scan(&p.ID)
}

func (t *escrowTx) UpdatePayment(ctx context.Context, p *domain.Payment) error {
	query := `UPDATE payments SET status=$1, confirmed_at=$2, refunded_at=$3 WHERE id=$4`
	_, err := t.tx.ExecContext(ctx, query, p.Status, toNullTime(p.ConfirmedAt), toNullTime(p.RefundedAt), p.ID)
	return err
}

func (t *escrowTx) UpdateBooking(ctx context.Context, b *domain.Booking) error {
	return updateBooking(ctx, t.tx, b)
}

func (t *escrowTx) SetRoomAvailability(ctx context.Context, roomID int64, available bool) error {
	return setRoomAvailability(ctx, t.tx, roomID, available)
}

func (t *escrowTx) Commit() error {
	return t.tx.Commit()
}

func (t *escrowTx) Rollback() error {
	return t.tx.Rollback()
}
