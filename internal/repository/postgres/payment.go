package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/ratulDIU/RentoVerse/internal/domain"
	"github.com/ratulDIU/RentoVerse/internal/repository"
)

const paymentColumns = `id, booking_id, amount_cents, method, reference, payer_name, payer_phone, txn_id, note, status, created_at, confirmed_at, refunded_at`

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: payment %d", domain.ErrNotFound, id)
	}
	return p, err
}

func (r *paymentRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1 ORDER BY created_at DESC`
	return r.queryPayments(ctx, query, bookingID)
}

func (r *paymentRepository) List(ctx context.Context, filter repository.PaymentFilter) ([]domain.Payment, error) {
	query := `SELECT p.id, p.booking_id, p.amount_cents, p.method, p.reference, p.payer_name, p.payer_phone, p.txn_id, p.note, p.status, p.created_at, p.confirmed_at, p.refunded_at
	          FROM payments p`
	var args []interface{}
	where := ""
	and := func(clause string) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
	}
	if filter.RenterEmail != "" {
		query += ` JOIN bookings b ON b.id = p.booking_id JOIN users u ON u.id = b.renter_id`
		args = append(args, "%"+filter.RenterEmail+"%")
		and(fmt.Sprintf("u.email ILIKE $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		and(fmt.Sprintf("p.status = $%d", len(args)))
	}
	if filter.BookingID != 0 {
		args = append(args, filter.BookingID)
		and(fmt.Sprintf("p.booking_id = $%d", len(args)))
	}
	query += where + ` ORDER BY p.created_at DESC`
	return r.queryPayments(ctx, query, args...)
}

func (r *paymentRepository) ExistsByBookingAndStatusIn(ctx context.Context, bookingID int64, statuses []domain.PaymentStatus) (bool, error) {
	set := make([]string, len(statuses))
	for i, s := range statuses {
		set[i] = string(s)
	}
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM payments WHERE booking_id = $1 AND status = ANY($2))`
	err := r.db.QueryRowContext(ctx, query, bookingID, pq.Array(set)).Scan(&exists)
	return exists, err
}

func (r *paymentRepository) queryPayments(ctx context.Context, query string, args ...interface{}) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	p := &domain.Payment{}
	var confirmedAt, refundedAt sql.NullTime
	var payerName, payerPhone, txnID, note sql.NullString
	err := row.Scan(&p.ID, &p.BookingID, &p.Amount, &p.Method, &p.Reference,
		&payerName, &payerPhone, &txnID, &note, &p.Status, &p.CreatedAt,
		&confirmedAt, &refundedAt)
	if err != nil {
		return nil, err
	}
	p.PayerName = payerName.String
	p.PayerPhone = payerPhone.String
	p.TxnID = txnID.String
	p.Note = note.String
	p.ConfirmedAt = nullTime(confirmedAt)
	p.RefundedAt = nullTime(refundedAt)
	return p, nil
}
