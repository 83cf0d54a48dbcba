package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ratulDIU/RentoVerse/internal/domain"
	"github.com/ratulDIU/RentoVerse/internal/repository"
)

const payoutColumns = `id, booking_id, provider_email, room_code, method, account, status, created_at, paid_at`

type payoutRepository struct {
	db *sql.DB
}

func NewPayoutRepository(db *sql.DB) repository.PayoutRepository {
	return &payoutRepository{db: db}
}

func (r *payoutRepository) Create(ctx context.Context, p *domain.ProviderPayout) error {
	query := `INSERT INTO provider_payouts (booking_id, provider_email, room_code, method, account, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return r.db.QueryRowContext(ctx, query, p.BookingID, p.ProviderEmail, p.RoomCode, p.Method, p.Account, p.Status, p.CreatedAt).Scan(&p.ID)
}

func (r *payoutRepository) GetByID(ctx context.Context, id int64) (*domain.ProviderPayout, error) {
	query := `SELECT ` + payoutColumns + ` FROM provider_payouts WHERE id = $1`
	p, err := scanPayout(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: payout %d", domain.ErrNotFound, id)
	}
	return p, err
}

func (r *payoutRepository) Update(ctx context.Context, p *domain.ProviderPayout) error {
	query := `UPDATE provider_payouts SET status=$1, paid_at=$2 WHERE id=$3`
	_, err := r.db.ExecContext(ctx, query, p.Status, toNullTime(p.PaidAt), p.ID)
	return err
}

func (r *payoutRepository) GetLatestByBooking(ctx context.Context, bookingID int64) (*domain.ProviderPayout, error) {
	query := `SELECT ` + payoutColumns + ` FROM provider_payouts WHERE booking_id = $1 ORDER BY created_at DESC LIMIT 1`
	p, err := scanPayout(r.db.QueryRowContext(ctx, query, bookingID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no payout for booking %d", domain.ErrNotFound, bookingID)
	}
	return p, err
}

func scanPayout(row rowScanner) (*domain.ProviderPayout, error) {
	p := &domain.ProviderPayout{}
	var paidAt sql.NullTime
	var providerEmail, roomCode sql.NullString
	err := row.Scan(&p.ID, &p.BookingID, &providerEmail, &roomCode, &p.Method, &p.Account, &p.Status, &p.CreatedAt, &paidAt)
	if err != nil {
		return nil, err
	}
	p.ProviderEmail = providerEmail.String
	p.RoomCode = roomCode.String
	p.PaidAt = nullTime(paidAt)
	return p, nil
}
