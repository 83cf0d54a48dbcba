package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ratulDIU/RentoVerse/internal/domain"
	"github.com/ratulDIU/RentoVerse/internal/repository"
)

const bookingColumns = `id, renter_id, room_id, status, created_at, approved_at, payment_deadline, payment_confirmed_at, viewing_deadline, decision_status, decision_note`

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `INSERT INTO bookings (renter_id, room_id, status, created_at, decision_status, decision_note)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return r.db.QueryRowContext(ctx, query, b.RenterID, b.RoomID, b.Status, b.CreatedAt, b.DecisionStatus, b.DecisionNote).Scan(&b.ID)
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: booking %d", domain.ErrNotFound, id)
	}
	return b, err
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	return updateBooking(ctx, r.db, b)
}

func (r *bookingRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	return err
}

func (r *bookingRepository) ListByRenter(ctx context.Context, renterID int64, status domain.BookingStatus) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE renter_id = $1`
	args := []interface{}{renterID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`
	return r.queryBookings(ctx, query, args...)
}

func (r *bookingRepository) ListByProvider(ctx context.Context, providerID int64) ([]domain.Booking, error) {
	query := `SELECT b.id, b.renter_id, b.room_id, b.status, b.created_at, b.approved_at, b.payment_deadline, b.payment_confirmed_at, b.viewing_deadline, b.decision_status, b.decision_note
	          FROM bookings b JOIN rooms r ON r.id = b.room_id
	          WHERE r.provider_id = $1 ORDER BY b.created_at DESC`
	return r.queryBookings(ctx, query, providerID)
}

func (r *bookingRepository) ListByStatusAndPaymentDeadlineBefore(ctx context.Context, status domain.BookingStatus, cutoff time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = $1 AND payment_deadline < $2`
	return r.queryBookings(ctx, query, status, cutoff)
}

func (r *bookingRepository) ListByStatusAndViewingDeadlineBefore(ctx context.Context, status domain.BookingStatus, cutoff time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = $1 AND viewing_deadline < $2`
	return r.queryBookings(ctx, query, status, cutoff)
}

func (r *bookingRepository) queryBookings(ctx context.Context, query string, args ...interface{}) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	var approvedAt, paymentDeadline, paymentConfirmedAt, viewingDeadline sql.NullTime
	var decisionNote sql.NullString
	err := row.Scan(&b.ID, &b.RenterID, &b.RoomID, &b.Status, &b.CreatedAt,
		&approvedAt, &paymentDeadline, &paymentConfirmedAt, &viewingDeadline,
		&b.DecisionStatus, &decisionNote)
	if err != nil {
		return nil, err
	}
	b.ApprovedAt = nullTime(approvedAt)
	b.PaymentDeadline = nullTime(paymentDeadline)
	b.PaymentConfirmedAt = nullTime(paymentConfirmedAt)
	b.ViewingDeadline = nullTime(viewingDeadline)
	b.DecisionNote = decisionNote.String
	return b, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// updateBooking is shared between the plain repository and EscrowTx.
func updateBooking(ctx context.Context, db execer, b *domain.Booking) error {
	query := `UPDATE bookings SET status=$1, approved_at=$2, payment_deadline=$3, payment_confirmed_at=$4, viewing_deadline=$5, decision_status=$6, decision_note=$7 WHERE id=$8`
	_, err := db.ExecContext(ctx, query, b.Status, toNullTime(b.ApprovedAt), toNullTime(b.PaymentDeadline),
		toNullTime(b.PaymentConfirmedAt), toNullTime(b.ViewingDeadline), b.DecisionStatus, b.DecisionNote, b.ID)
	return err
}
