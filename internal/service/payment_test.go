package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ratulDIU/RentoVerse/internal/domain"
	"github.com/ratulDIU/RentoVerse/internal/repository"
	"github.com/ratulDIU/RentoVerse/internal/service"
)

func newPaymentService(payments *MockPaymentRepo, bookings *MockBookingRepo, rooms *MockRoomRepo, users *MockUserRepo, payouts *MockPayoutRepo, tx *MockTx, email service.EmailService) service.PaymentService {
	return service.NewPaymentService(payments, bookings, rooms, users, payouts, tx, email, fixedClock{testNow}, support, visitWindow)
}

func TestPaymentService_SubmitDeposit(t *testing.T) {
	payments := new(MockPaymentRepo)
	rooms := new(MockRoomRepo)
	tx := new(MockTx)
	email := new(MockEmailService)
	svc := newPaymentService(payments, nil, rooms, nil, nil, tx, email)
	ctx := context.Background()

	in := service.SubmitDepositInput{
		BookingID: 1, Amount: 250000, Method: "BKASH",
		Reference: "TXN-BK-1", PayerName: "Rahim", PayerPhone: "017", TxnID: "TX9",
	}

	tx.On("BeginTx", ctx).Return(tx, nil).Once()
	tx.On("GetBooking", ctx, int64(1)).Return(&domain.Booking{ID: 1, RoomID: 3, Status: domain.BookingStatusAwaitingPayment}, nil).Once()
	payments.On("ExistsByBookingAndStatusIn", ctx, int64(1),
		[]domain.PaymentStatus{domain.PaymentStatusPending, domain.PaymentStatusConfirmed}).Return(false, nil).Once()
	tx.On("CreatePayment", ctx, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.BookingID == 1 && p.Amount == 250000 &&
			p.Status == domain.PaymentStatusPending && p.CreatedAt.Equal(testNow)
	})).Return(nil).Once()
	tx.On("Commit").Return(nil).Once()
	tx.On("Rollback").Return(nil)

	rooms.On("GetByID", ctx, int64(3)).Return(&domain.Room{ID: 3, Title: "Sunny room"}, nil)
	email.On("Send", ctx, support, "New 25% deposit submitted", mock.Anything).Return(nil).Once()

	p, err := svc.SubmitDeposit(ctx, in)
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, p.Status)
	tx.AssertExpectations(t)
	email.AssertExpectations(t)
}

func TestPaymentService_SubmitDeposit_Guards(t *testing.T) {
	payments := new(MockPaymentRepo)
	tx := new(MockTx)
	svc := newPaymentService(payments, nil, nil, nil, nil, tx, relaxedEmail())
	ctx := context.Background()

	t.Run("NotAwaitingPayment", func(t *testing.T) {
		tx.On("BeginTx", ctx).Return(tx, nil).Once()
		tx.On("GetBooking", ctx, int64(1)).Return(&domain.Booking{ID: 1, Status: domain.BookingStatusPendingRequest}, nil).Once()
		tx.On("Rollback").Return(nil)

		_, err := svc.SubmitDeposit(ctx, service.SubmitDepositInput{BookingID: 1})
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("OutstandingDeposit", func(t *testing.T) {
		tx.On("BeginTx", ctx).Return(tx, nil).Once()
		tx.On("GetBooking", ctx, int64(2)).Return(&domain.Booking{ID: 2, Status: domain.BookingStatusAwaitingPayment}, nil).Once()
		payments.On("ExistsByBookingAndStatusIn", ctx, int64(2), mock.Anything).Return(true, nil).Once()
		tx.On("Rollback").Return(nil)

		_, err := svc.SubmitDeposit(ctx, service.SubmitDepositInput{BookingID: 2})
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestPaymentService_ConfirmDeposit(t *testing.T) {
	tx := new(MockTx)
	users := new(MockUserRepo)
	rooms := new(MockRoomRepo)
	svc := newPaymentService(nil, nil, rooms, users, nil, tx, relaxedEmail())
	ctx := context.Background()

	stale := testNow.Add(-time.Hour)
	tx.On("BeginTx", ctx).Return(tx, nil).Once()
	tx.On("LockPayment", ctx, int64(10)).Return(&domain.Payment{ID: 10, BookingID: 1, Status: domain.PaymentStatusPending}, nil).Once()
	tx.On("UpdatePayment", ctx, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.Status == domain.PaymentStatusConfirmed && p.ConfirmedAt != nil && p.ConfirmedAt.Equal(testNow)
	})).Return(nil).Once()
	tx.On("GetBooking", ctx, int64(1)).Return(&domain.Booking{
		ID: 1, RenterID: 7, RoomID: 3,
		Status:         domain.BookingStatusAwaitingPayment,
		DecisionStatus: domain.VisitDecisionRefundRequested,
		DecisionNote:   "stale",
		ViewingDeadline: &stale,
	}, nil).Once()
	tx.On("UpdateBooking", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.Status == domain.BookingStatusPaidConfirmed &&
			b.PaymentConfirmedAt.Equal(testNow) &&
			b.ViewingDeadline.Equal(testNow.Add(visitWindow)) &&
			b.DecisionStatus == domain.VisitDecisionNone && b.DecisionNote == ""
	})).Return(nil).Once()
	tx.On("SetRoomAvailability", ctx, int64(3), false).Return(nil).Once()
	tx.On("Commit").Return(nil).Once()
	tx.On("Rollback").Return(nil)

	users.On("GetByID", ctx, mock.Anything).Return(&domain.User{Email: "x@test.com"}, nil)
	rooms.On("GetByID", ctx, mock.Anything).Return(&domain.Room{ProviderID: 9}, nil)

	p, err := svc.ConfirmDeposit(ctx, 10)
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusConfirmed, p.Status)
	tx.AssertExpectations(t)
}

func TestPaymentService_ConfirmDeposit_SecondCallerLosesRace(t *testing.T) {
	tx := new(MockTx)
	svc := newPaymentService(nil, nil, nil, nil, nil, tx, relaxedEmail())
	ctx := context.Background()

	// The row lock means the loser observes the winner's committed status.
	tx.On("BeginTx", ctx).Return(tx, nil).Once()
	tx.On("LockPayment", ctx, int64(10)).Return(&domain.Payment{ID: 10, Status: domain.PaymentStatusConfirmed}, nil).Once()
	tx.On("Rollback").Return(nil)

	_, err := svc.ConfirmDeposit(ctx, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	tx.AssertNotCalled(t, "Commit")
}

func TestPaymentService_Refund_Idempotent(t *testing.T) {
	tx := new(MockTx)
	svc := newPaymentService(nil, nil, nil, nil, nil, tx, relaxedEmail())
	ctx := context.Background()

	refundedAt := testNow.Add(-24 * time.Hour)
	tx.On("BeginTx", ctx).Return(tx, nil).Once()
	tx.On("LockPayment", ctx, int64(10)).Return(&domain.Payment{ID: 10, Status: domain.PaymentStatusRefunded, RefundedAt: &refundedAt}, nil).Once()
	tx.On("Rollback").Return(nil)

	p, err := svc.Refund(ctx, 10)
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusRefunded, p.Status)
	assert.Equal(t, refundedAt, *p.RefundedAt)
	tx.AssertNotCalled(t, "UpdatePayment")
	tx.AssertNotCalled(t, "Commit")
}

func TestPaymentService_Refund_Pending(t *testing.T) {
	tx := new(MockTx)
	bookings := new(MockBookingRepo)
	users := new(MockUserRepo)
	rooms := new(MockRoomRepo)
	svc := newPaymentService(nil, bookings, rooms, users, nil, tx, relaxedEmail())
	ctx := context.Background()

	tx.On("BeginTx", ctx).Return(tx, nil).Once()
	tx.On("LockPayment", ctx, int64(10)).Return(&domain.Payment{ID: 10, BookingID: 1, Status: domain.PaymentStatusPending}, nil).Once()
	tx.On("UpdatePayment", ctx, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.Status == domain.PaymentStatusRefunded && p.RefundedAt.Equal(testNow)
	})).Return(nil).Once()
	tx.On("Commit").Return(nil).Once()
	tx.On("Rollback").Return(nil)

	// ad-hoc refund leaves the booking alone
	bookings.On("GetByID", ctx, int64(1)).Return(&domain.Booking{ID: 1, RenterID: 7, RoomID: 3}, nil)
	users.On("GetByID", ctx, mock.Anything).Return(&domain.User{Email: "x@test.com"}, nil)
	rooms.On("GetByID", ctx, mock.Anything).Return(&domain.Room{ProviderID: 9}, nil)

	p, err := svc.Refund(ctx, 10)
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusRefunded, p.Status)
	tx.AssertNotCalled(t, "UpdateBooking")
	tx.AssertExpectations(t)
}

func TestPaymentService_RefundAndCancel(t *testing.T) {
	tx := new(MockTx)
	users := new(MockUserRepo)
	rooms := new(MockRoomRepo)
	svc := newPaymentService(nil, nil, rooms, users, nil, tx, relaxedEmail())
	ctx := context.Background()

	deadline := testNow.Add(time.Hour)
	tx.On("BeginTx", ctx).Return(tx, nil).Once()
	tx.On("LockPayment", ctx, int64(10)).Return(&domain.Payment{ID: 10, BookingID: 1, Status: domain.PaymentStatusConfirmed}, nil).Once()
	tx.On("UpdatePayment", ctx, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.Status == domain.PaymentStatusRefunded && p.RefundedAt.Equal(testNow)
	})).Return(nil).Once()
	tx.On("GetBooking", ctx, int64(1)).Return(&domain.Booking{
		ID: 1, RenterID: 7, RoomID: 3,
		Status:          domain.BookingStatusPaidConfirmed,
		DecisionStatus:  domain.VisitDecisionRefundRequested,
		ViewingDeadline: &deadline,
		PaymentDeadline: &deadline,
	}, nil).Once()
	tx.On("UpdateBooking", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.Status == domain.BookingStatusCancelledAfterViewing &&
			b.DecisionStatus == domain.VisitDecisionNone &&
			b.ViewingDeadline == nil && b.PaymentDeadline == nil
	})).Return(nil).Once()
	tx.On("SetRoomAvailability", ctx, int64(3), true).Return(nil).Once()
	tx.On("Commit").Return(nil).Once()
	tx.On("Rollback").Return(nil)

	users.On("GetByID", ctx, mock.Anything).Return(&domain.User{Email: "x@test.com"}, nil)
	rooms.On("GetByID", ctx, mock.Anything).Return(&domain.Room{ProviderID: 9}, nil)

	p, err := svc.RefundAndCancel(ctx, 10)
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusRefunded, p.Status)
	tx.AssertExpectations(t)
}

func TestPaymentService_RefundAndCancel_RequiresConfirmed(t *testing.T) {
	tx := new(MockTx)
	svc := newPaymentService(nil, nil, nil, nil, nil, tx, relaxedEmail())
	ctx := context.Background()

	tx.On("BeginTx", ctx).Return(tx, nil).Once()
	tx.On("LockPayment", ctx, int64(10)).Return(&domain.Payment{ID: 10, Status: domain.PaymentStatusPending}, nil).Once()
	tx.On("Rollback").Return(nil)

	_, err := svc.RefundAndCancel(ctx, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestPaymentService_CompleteAndRelease(t *testing.T) {
	tx := new(MockTx)
	users := new(MockUserRepo)
	rooms := new(MockRoomRepo)
	email := new(MockEmailService)
	svc := newPaymentService(nil, nil, rooms, users, nil, tx, email)
	ctx := context.Background()

	tx.On("BeginTx", ctx).Return(tx, nil).Once()
	tx.On("LockPayment", ctx, int64(10)).Return(&domain.Payment{ID: 10, BookingID: 1, Status: domain.PaymentStatusConfirmed}, nil).Once()
	tx.On("GetBooking", ctx, int64(1)).Return(&domain.Booking{ID: 1, RenterID: 7, RoomID: 3, Status: domain.BookingStatusPaidConfirmed}, nil).Once()
	tx.On("UpdateBooking", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.Status == domain.BookingStatusCompleted && b.DecisionStatus == domain.VisitDecisionNone
	})).Return(nil).Once()
	// completed booking keeps the room off the market
	tx.On("SetRoomAvailability", ctx, int64(3), false).Return(nil).Once()
	tx.On("Commit").Return(nil).Once()
	tx.On("Rollback").Return(nil)

	users.On("GetByID", ctx, int64(7)).Return(&domain.User{ID: 7, Email: "renter@test.com"}, nil)
	rooms.On("GetByID", ctx, int64(3)).Return(&domain.Room{ID: 3, ProviderID: 9}, nil)
	users.On("GetByID", ctx, int64(9)).Return(&domain.User{ID: 9, Email: "provider@test.com"}, nil)
	email.On("Send", ctx, "renter@test.com", "Booking completed", mock.Anything).Return(nil).Once()
	email.On("Send", ctx, "provider@test.com", "Escrow released & booking completed", mock.MatchedBy(func(body string) bool {
		return strings.Contains(body, "payout request")
	})).Return(nil).Once()

	p, err := svc.CompleteAndRelease(ctx, 10)
	assert.NoError(t, err)
	// the deposit itself stays CONFIRMED
	assert.Equal(t, domain.PaymentStatusConfirmed, p.Status)
	tx.AssertExpectations(t)
	email.AssertExpectations(t)
}

func TestPaymentService_ListPayments(t *testing.T) {
	payments := new(MockPaymentRepo)
	payouts := new(MockPayoutRepo)
	svc := newPaymentService(payments, nil, nil, nil, payouts, nil, relaxedEmail())
	ctx := context.Background()

	filter := repository.PaymentFilter{Status: domain.PaymentStatusConfirmed}
	payments.On("List", ctx, filter).Return([]domain.Payment{
		{ID: 1, BookingID: 10, Status: domain.PaymentStatusConfirmed},
		{ID: 2, BookingID: 20, Status: domain.PaymentStatusConfirmed},
	}, nil)
	payouts.On("GetLatestByBooking", ctx, int64(10)).Return(&domain.ProviderPayout{BookingID: 10, Status: domain.PayoutStatusRequested}, nil)
	payouts.On("GetLatestByBooking", ctx, int64(20)).Return(nil, domain.ErrNotFound)

	views, err := svc.ListPayments(ctx, filter)
	assert.NoError(t, err)
	assert.Len(t, views, 2)
	assert.Equal(t, "REQUESTED", views[0].ProviderPayoutStatus)
	assert.Empty(t, views[1].ProviderPayoutStatus)
}
