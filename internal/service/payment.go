package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ratulDIU/RentoVerse/internal/domain"
	"github.com/ratulDIU/RentoVerse/internal/repository"
)

type paymentService struct {
	paymentRepo  repository.PaymentRepository
	bookingRepo  repository.BookingRepository
	roomRepo     repository.RoomRepository
	userRepo     repository.UserRepository
	payoutRepo   repository.PayoutRepository
	txStore      repository.TxStore
	emailSvc     EmailService
	clock        Clock
	supportEmail string
	visitWindow  time.Duration
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	bookingRepo repository.BookingRepository,
	roomRepo repository.RoomRepository,
	userRepo repository.UserRepository,
	payoutRepo repository.PayoutRepository,
	txStore repository.TxStore,
	emailSvc EmailService,
	clock Clock,
	supportEmail string,
	visitWindow time.Duration,
) PaymentService {
	return &paymentService{
		paymentRepo:  paymentRepo,
		bookingRepo:  bookingRepo,
		roomRepo:     roomRepo,
		userRepo:     userRepo,
		payoutRepo:   payoutRepo,
		txStore:      txStore,
		emailSvc:     emailSvc,
		clock:        clock,
		supportEmail: supportEmail,
		visitWindow:  visitWindow,
	}
}

// SubmitDeposit records the renter's escrow deposit as PENDING. The booking
// stays AWAITING_PAYMENT until an admin confirms.
func (s *paymentService) SubmitDeposit(ctx context.Context, in SubmitDepositInput) (*domain.Payment, error) {
	tx, err := s.txStore.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	b, err := tx.GetBooking(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingStatusAwaitingPayment {
		return nil, fmt.Errorf("%w: booking %d is not awaiting payment", domain.ErrInvalidState, b.ID)
	}

	// At most one payment per booking may be outstanding.
	outstanding, err := s.paymentRepo.ExistsByBookingAndStatusIn(ctx, b.ID,
		[]domain.PaymentStatus{domain.PaymentStatusPending, domain.PaymentStatusConfirmed})
	if err != nil {
		return nil, err
	}
	if outstanding {
		return nil, fmt.Errorf("%w: booking %d already has an outstanding deposit", domain.ErrInvalidState, b.ID)
	}

	p := &domain.Payment{
		BookingID:  in.BookingID,
		Amount:     in.Amount,
		Method:     in.Method,
		Reference:  in.Reference,
		PayerName:  in.PayerName,
		PayerPhone: in.PayerPhone,
		TxnID:      in.TxnID,
		Note:       in.Note,
		Status:     domain.PaymentStatusPending,
		CreatedAt:  s.clock.Now(),
	}
	if err := tx.CreatePayment(ctx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	roomTitle := "-"
	if room, err := s.roomRepo.GetByID(ctx, b.RoomID); err == nil {
		roomTitle = room.Title
	}
	_ = s.emailSvc.Send(ctx, s.supportEmail,
		"New 25% deposit submitted",
		fmt.Sprintf("Booking #%d — 25%% submitted\nRoom: %s\nMethod: %s\nAmount: %d\nTxnId: %s\nReference: %s\nPayer: %s (%s)\nReview in Admin → Payments.",
			b.ID, roomTitle, orDash(in.Method), in.Amount, orDash(in.TxnID), orDash(in.Reference), orDash(in.PayerName), orDash(in.PayerPhone)))
	return p, nil
}

// ConfirmDeposit moves a PENDING payment to CONFIRMED and opens the visit
// window on its booking. The payment row lock serializes racing admin
// actions: the loser of the race sees the post-transition status and fails
// the guard.
func (s *paymentService) ConfirmDeposit(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	tx, err := s.txStore.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := tx.LockPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.PaymentStatusPending {
		return nil, fmt.Errorf("%w: only PENDING payments can be confirmed, payment %d is %s", domain.ErrInvalidState, p.ID, p.Status)
	}

	now := s.clock.Now()
	p.Status = domain.PaymentStatusConfirmed
	p.ConfirmedAt = &now
	if err := tx.UpdatePayment(ctx, p); err != nil {
		return nil, err
	}

	b, err := tx.GetBooking(ctx, p.BookingID)
	if err != nil {
		return nil, err
	}
	deadline := now.Add(s.visitWindow)
	b.Status = domain.BookingStatusPaidConfirmed
	b.PaymentConfirmedAt = &now
	b.ViewingDeadline = &deadline
	b.DecisionStatus = domain.VisitDecisionNone
	b.DecisionNote = ""
	if err := tx.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}
	// re-assert unavailability, the room was hidden at approval
	if err := tx.SetRoomAvailability(ctx, b.RoomID, false); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.notifyParties(ctx, b,
		"Deposit confirmed",
		"Your 25% deposit is confirmed. Please visit within 3 days.",
		"Renter deposit confirmed",
		"The renter has paid 25% for your room. A 3-day visit window has started.")
	return p, nil
}

// Refund is idempotent: refunding an already refunded payment returns it
// unchanged with no side effects. It does not touch the booking; it covers
// ad-hoc refunds outside the visit-decision flow.
func (s *paymentService) Refund(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	tx, err := s.txStore.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := tx.LockPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status == domain.PaymentStatusRefunded {
		return p, nil
	}

	now := s.clock.Now()
	p.Status = domain.PaymentStatusRefunded
	p.RefundedAt = &now
	if err := tx.UpdatePayment(ctx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if b, err := s.bookingRepo.GetByID(ctx, p.BookingID); err == nil {
		s.notifyParties(ctx, b,
			"Deposit refunded",
			fmt.Sprintf("Your deposit for booking #%d has been refunded.", b.ID),
			"Escrow refund processed",
			"The renter's deposit for your room has been refunded.")
	}
	return p, nil
}

// RefundAndCancel resolves the visit window negatively: refund the confirmed
// deposit, cancel the booking and put the room back on the market.
func (s *paymentService) RefundAndCancel(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	tx, err := s.txStore.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := tx.LockPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.PaymentStatusConfirmed {
		return nil, fmt.Errorf("%w: refund & cancel requires a CONFIRMED payment, payment %d is %s", domain.ErrInvalidState, p.ID, p.Status)
	}

	now := s.clock.Now()
	p.Status = domain.PaymentStatusRefunded
	p.RefundedAt = &now
	if err := tx.UpdatePayment(ctx, p); err != nil {
		return nil, err
	}

	b, err := tx.GetBooking(ctx, p.BookingID)
	if err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatusCancelledAfterViewing
	b.DecisionStatus = domain.VisitDecisionNone
	b.DecisionNote = ""
	b.ViewingDeadline = nil
	b.PaymentDeadline = nil
	if err := tx.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}
	if err := tx.SetRoomAvailability(ctx, b.RoomID, true); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.notifyParties(ctx, b,
		"Deposit refunded & booking cancelled",
		fmt.Sprintf("Your escrow deposit for booking #%d was refunded; booking cancelled.", b.ID),
		"Booking cancelled after viewing",
		"The renter didn't proceed after viewing. Your room is available again.")
	return p, nil
}

// CompleteAndRelease resolves the visit window positively: the booking
// completes, the room stays off the market and the provider is told how to
// claim the payout. The payment itself stays CONFIRMED.
func (s *paymentService) CompleteAndRelease(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	tx, err := s.txStore.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := tx.LockPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.PaymentStatusConfirmed {
		return nil, fmt.Errorf("%w: complete & release requires a CONFIRMED payment, payment %d is %s", domain.ErrInvalidState, p.ID, p.Status)
	}

	b, err := tx.GetBooking(ctx, p.BookingID)
	if err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatusCompleted
	b.DecisionStatus = domain.VisitDecisionNone
	b.DecisionNote = ""
	if err := tx.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}
	// booking is permanent, keep the room occupied
	if err := tx.SetRoomAvailability(ctx, b.RoomID, false); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.notifyParties(ctx, b,
		"Booking completed",
		fmt.Sprintf("Congrats! Your booking #%d is completed.", b.ID),
		"Escrow released & booking completed",
		fmt.Sprintf("Escrow for booking #%d has been released.\n\nNext step (for provider):\n"+
			"• Please open your Provider Dashboard and submit a payout request.\n"+
			"• Fill in your bKash/Nagad/Rocket number and the Room Code (e.g., RENTO:101).\n"+
			"• After submission you will see: \"Waiting for admin confirmation\".\n"+
			"• You will receive a final email as soon as the 25%% payout is sent.", b.ID))
	return p, nil
}

// ListPayments is the admin projection; it attaches the latest payout status
// per booking and has no side effects.
func (s *paymentService) ListPayments(ctx context.Context, filter repository.PaymentFilter) ([]PaymentView, error) {
	payments, err := s.paymentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	views := make([]PaymentView, 0, len(payments))
	for _, p := range payments {
		view := PaymentView{Payment: p}
		payout, err := s.payoutRepo.GetLatestByBooking(ctx, p.BookingID)
		if err == nil {
			view.ProviderPayoutStatus = string(payout.Status)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *paymentService) notifyParties(ctx context.Context, b *domain.Booking, renterSubject, renterBody, providerSubject, providerBody string) {
	renter, _ := s.userRepo.GetByID(ctx, b.RenterID)
	if renter != nil {
		_ = s.emailSvc.Send(ctx, renter.Email, renterSubject, renterBody)
	}
	room, _ := s.roomRepo.GetByID(ctx, b.RoomID)
	if room != nil {
		provider, _ := s.userRepo.GetByID(ctx, room.ProviderID)
		if provider != nil {
			_ = s.emailSvc.Send(ctx, provider.Email, providerSubject, providerBody)
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
