package service

import (
	"context"
	"time"

	"github.com/ratulDIU/RentoVerse/internal/domain"
	"github.com/ratulDIU/RentoVerse/internal/repository"
)

// Clock supplies current time to every deadline computation. Injected so the
// expiry logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }

type BookingService interface {
	CreateBooking(ctx context.Context, renterID, roomID int64) (*domain.Booking, error)
	RespondBooking(ctx context.Context, bookingID int64, action string) (*domain.Booking, error)
	CancelPending(ctx context.Context, bookingID int64) error
	RequestRefundDecision(ctx context.Context, bookingID int64, note string) (*domain.Booking, error)
	RequestCompleteDecision(ctx context.Context, bookingID int64, note string) (*domain.Booking, error)
	GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error)
	ListBookingsByRenter(ctx context.Context, renterID int64, status domain.BookingStatus) ([]domain.Booking, error)
	ListBookingsForProvider(ctx context.Context, providerID int64) ([]domain.Booking, error)

	// Sweep entry points, invoked by the scheduler. Each returns the number
	// of bookings it expired.
	ExpireUnpaidBookings(ctx context.Context) (int, error)
	ExpireNoVisitBookings(ctx context.Context) (int, error)
}

// SubmitDepositInput carries the renter's escrow submission. Method,
// reference and txn id are opaque strings from the payment rail.
type SubmitDepositInput struct {
	BookingID  int64  `json:"booking_id"`
	Amount     int64  `json:"amount_cents"`
	Method     string `json:"method"`
	Reference  string `json:"reference"`
	PayerName  string `json:"payer_name"`
	PayerPhone string `json:"payer_phone"`
	TxnID      string `json:"txn_id"`
	Note       string `json:"note"`
}

// PaymentView is the admin listing projection: a payment plus the status of
// the latest payout raised for its booking, if any.
type PaymentView struct {
	domain.Payment
	ProviderPayoutStatus string `json:"provider_payout_status,omitempty"`
}

type PaymentService interface {
	SubmitDeposit(ctx context.Context, in SubmitDepositInput) (*domain.Payment, error)
	ConfirmDeposit(ctx context.Context, paymentID int64) (*domain.Payment, error)
	Refund(ctx context.Context, paymentID int64) (*domain.Payment, error)
	RefundAndCancel(ctx context.Context, paymentID int64) (*domain.Payment, error)
	CompleteAndRelease(ctx context.Context, paymentID int64) (*domain.Payment, error)
	ListPayments(ctx context.Context, filter repository.PaymentFilter) ([]PaymentView, error)
}

type PayoutService interface {
	RequestPayout(ctx context.Context, bookingID int64, method, account, roomCode string) (*domain.ProviderPayout, error)
	GetPayoutByBooking(ctx context.Context, bookingID int64) (*domain.ProviderPayout, error)
	MarkPayoutPaid(ctx context.Context, payoutID int64) (*domain.ProviderPayout, error)
}

// EmailService delivers a notification to one recipient. Implementations are
// fire-and-forget: callers discard the error so a transport failure never
// rolls back or delays a state transition.
type EmailService interface {
	Send(ctx context.Context, to, subject, body string) error
}
