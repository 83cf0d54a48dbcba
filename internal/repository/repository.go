package repository

import (
	"context"
	"time"

	"github.com/ratulDIU/RentoVerse/internal/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type RoomRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	SetAvailability(ctx context.Context, roomID int64, available bool) error
	ListAvailable(ctx context.Context) ([]domain.Room, error)
}

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking) error
	Delete(ctx context.Context, id int64) error
	ListByRenter(ctx context.Context, renterID int64, status domain.BookingStatus) ([]domain.Booking, error)
	ListByProvider(ctx context.Context, providerID int64) ([]domain.Booking, error)

	// Sweep predicates.
	ListByStatusAndPaymentDeadlineBefore(ctx context.Context, status domain.BookingStatus, cutoff time.Time) ([]domain.Booking, error)
	ListByStatusAndViewingDeadlineBefore(ctx context.Context, status domain.BookingStatus, cutoff time.Time) ([]domain.Booking, error)
}

// PaymentFilter narrows the admin payment listing. Zero values match all.
type PaymentFilter struct {
	Status      domain.PaymentStatus
	BookingID   int64
	RenterEmail string // case-insensitive substring of the renter's email
}

type PaymentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]domain.Payment, error)

	// ExistsByBookingAndStatusIn backs the unpaid-sweep skip rule: a deposit
	// in flight must never be expired underneath.
	ExistsByBookingAndStatusIn(ctx context.Context, bookingID int64, statuses []domain.PaymentStatus) (bool, error)
}

type PayoutRepository interface {
	Create(ctx context.Context, p *domain.ProviderPayout) error
	GetByID(ctx context.Context, id int64) (*domain.ProviderPayout, error)
	Update(ctx context.Context, p *domain.ProviderPayout) error

	// GetLatestByBooking returns the most recently created payout for the
	// booking; that one is authoritative.
	GetLatestByBooking(ctx context.Context, bookingID int64) (*domain.ProviderPayout, error)
}

// EscrowTx is one atomic unit against payments, bookings and room
// availability. Acquire with TxStore.BeginTx, defer Rollback on every path,
// Commit on success. LockPayment takes the row lock that serializes
// concurrent admin actions on the same payment.
type EscrowTx interface {
	LockPayment(ctx context.Context, paymentID int64) (*domain.Payment, error)
	GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error)
	CreatePayment(ctx context.Context, p *domain.Payment) error
	UpdatePayment(ctx context.Context, p *domain.Payment) error
	UpdateBooking(ctx context.Context, b *domain.Booking) error
	SetRoomAvailability(ctx context.Context, roomID int64, available bool) error
	Commit() error
	Rollback() error
}

type TxStore interface {
	BeginTx(ctx context.Context) (EscrowTx, error)
}
