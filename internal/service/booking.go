package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ratulDIU/RentoVerse/internal/domain"
	"github.com/ratulDIU/RentoVerse/internal/logger"
	"github.com/ratulDIU/RentoVerse/internal/repository"
)

type bookingService struct {
	bookingRepo  repository.BookingRepository
	paymentRepo  repository.PaymentRepository
	roomRepo     repository.RoomRepository
	userRepo     repository.UserRepository
	txStore      repository.TxStore
	emailSvc     EmailService
	clock        Clock
	supportEmail string
	payWindow    time.Duration
	visitWindow  time.Duration
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	paymentRepo repository.PaymentRepository,
	roomRepo repository.RoomRepository,
	userRepo repository.UserRepository,
	txStore repository.TxStore,
	emailSvc EmailService,
	clock Clock,
	supportEmail string,
	payWindow, visitWindow time.Duration,
) BookingService {
	return &bookingService{
		bookingRepo:  bookingRepo,
		paymentRepo:  paymentRepo,
		roomRepo:     roomRepo,
		userRepo:     userRepo,
		txStore:      txStore,
		emailSvc:     emailSvc,
		clock:        clock,
		supportEmail: supportEmail,
		payWindow:    payWindow,
		visitWindow:  visitWindow,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, renterID, roomID int64) (*domain.Booking, error) {
	if _, err := s.userRepo.GetByID(ctx, renterID); err != nil {
		return nil, err
	}
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	b := &domain.Booking{
		RenterID:       renterID,
		RoomID:         roomID,
		Status:         domain.BookingStatusPendingRequest,
		CreatedAt:      s.clock.Now(),
		DecisionStatus: domain.VisitDecisionNone,
	}
	if err := s.bookingRepo.Create(ctx, b); err != nil {
		return nil, err
	}

	provider, _ := s.userRepo.GetByID(ctx, room.ProviderID)
	if provider != nil {
		_ = s.emailSvc.Send(ctx, provider.Email,
			"New room booking request",
			fmt.Sprintf("A renter requested your room %q. Please approve/decline in your dashboard.", room.Title))
	}
	return b, nil
}

func (s *bookingService) RespondBooking(ctx context.Context, bookingID int64, action string) (*domain.Booking, error) {
	switch strings.ToLower(action) {
	case "approve", "decline":
	default:
		return nil, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidArgument, action)
	}

	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingStatusPendingRequest {
		return nil, fmt.Errorf("%w: booking %d is %s, only pending requests can be responded to", domain.ErrInvalidState, b.ID, b.Status)
	}

	room, err := s.roomRepo.GetByID(ctx, b.RoomID)
	if err != nil {
		return nil, err
	}
	renter, _ := s.userRepo.GetByID(ctx, b.RenterID)
	provider, _ := s.userRepo.GetByID(ctx, room.ProviderID)

	if strings.EqualFold(action, "decline") {
		b.Status = domain.BookingStatusDeclined
		if err := s.bookingRepo.Update(ctx, b); err != nil {
			return nil, err
		}
		if renter != nil {
			_ = s.emailSvc.Send(ctx, renter.Email,
				"Booking declined",
				"Sorry, your booking request was declined.")
		}
		if provider != nil {
			_ = s.emailSvc.Send(ctx, provider.Email,
				"You declined a booking",
				"You declined the renter's booking request.")
		}
		return b, nil
	}

	now := s.clock.Now()
	deadline := now.Add(s.payWindow)
	b.Status = domain.BookingStatusAwaitingPayment
	b.ApprovedAt = &now
	b.PaymentDeadline = &deadline

	// Booking update and room hide are one atomic unit.
	tx, err := s.txStore.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	if err := tx.UpdateBooking(ctx, b); err != nil {
		return nil, err
	}
	if err := tx.SetRoomAvailability(ctx, b.RoomID, false); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if renter != nil {
		_ = s.emailSvc.Send(ctx, renter.Email,
			"Approved — pay 25% within 3 days",
			"Your booking is approved. Please pay 25% deposit to ADMIN within 3 days to confirm.")
	}
	if provider != nil {
		_ = s.emailSvc.Send(ctx, provider.Email,
			"You approved a booking request",
			"Please wait for the renter to pay the 25% deposit within the deadline.")
	}
	_ = s.emailSvc.Send(ctx, s.supportEmail,
		"Awaiting 25% deposit",
		fmt.Sprintf("Booking #%d needs 25%% deposit.", b.ID))
	return b, nil
}

func (s *bookingService) CancelPending(ctx context.Context, bookingID int64) error {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.Status != domain.BookingStatusPendingRequest {
		return fmt.Errorf("%w: only pending requests can be cancelled", domain.ErrInvalidState)
	}
	// Pending requests never held the room, so a hard delete is safe.
	return s.bookingRepo.Delete(ctx, bookingID)
}

func (s *bookingService) RequestRefundDecision(ctx context.Context, bookingID int64, note string) (*domain.Booking, error) {
	return s.recordDecision(ctx, bookingID, note, domain.VisitDecisionRefundRequested,
		"Refund requested by renter", "renter requested a REFUND")
}

func (s *bookingService) RequestCompleteDecision(ctx context.Context, bookingID int64, note string) (*domain.Booking, error) {
	return s.recordDecision(ctx, bookingID, note, domain.VisitDecisionCompleteRequested,
		"Completion requested by renter", "renter confirmed they want to complete")
}

// recordDecision stores the renter's stated preference; it never changes the
// booking status. An admin acts on it through the payment operations.
func (s *bookingService) recordDecision(ctx context.Context, bookingID int64, note string, decision domain.VisitDecision, subject, detail string) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingStatusPaidConfirmed {
		return nil, fmt.Errorf("%w: decisions are only accepted during the visit window", domain.ErrInvalidState)
	}
	b.DecisionStatus = decision
	b.DecisionNote = note
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return nil, err
	}

	if note == "" {
		note = "-"
	}
	_ = s.emailSvc.Send(ctx, s.supportEmail, subject,
		fmt.Sprintf("Booking #%d — %s.\nNote: %s", b.ID, detail, note))
	return b, nil
}

func (s *bookingService) GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	return s.bookingRepo.GetByID(ctx, bookingID)
}

func (s *bookingService) ListBookingsByRenter(ctx context.Context, renterID int64, status domain.BookingStatus) ([]domain.Booking, error) {
	return s.bookingRepo.ListByRenter(ctx, renterID, status)
}

func (s *bookingService) ListBookingsForProvider(ctx context.Context, providerID int64) ([]domain.Booking, error) {
	return s.bookingRepo.ListByProvider(ctx, providerID)
}

// ExpireUnpaidBookings moves bookings past their payment deadline to
// EXPIRED_UNPAID and restores room availability. A booking with a PENDING or
// CONFIRMED payment is skipped: a deposit in flight must never be expired
// underneath. One booking's failure does not abort the rest of the sweep.
func (s *bookingService) ExpireUnpaidBookings(ctx context.Context) (int, error) {
	items, err := s.bookingRepo.ListByStatusAndPaymentDeadlineBefore(ctx, domain.BookingStatusAwaitingPayment, s.clock.Now())
	if err != nil {
		return 0, err
	}

	n := 0
	for i := range items {
		b := &items[i]
		hasPayment, err := s.paymentRepo.ExistsByBookingAndStatusIn(ctx, b.ID,
			[]domain.PaymentStatus{domain.PaymentStatusPending, domain.PaymentStatusConfirmed})
		if err != nil {
			logger.Error("Unpaid sweep: payment check failed", "booking_id", b.ID, "error", err)
			continue
		}
		if hasPayment {
			continue
		}

		b.Status = domain.BookingStatusExpiredUnpaid
		if err := s.expireBooking(ctx, b); err != nil {
			logger.Error("Unpaid sweep: expiry failed", "booking_id", b.ID, "error", err)
			continue
		}
		n++

		s.notifyExpiry(ctx, b,
			"Booking expired (unpaid)",
			"You didn't pay 25% within time. Your booking has expired.",
			"Booking expired (renter unpaid)",
			"The renter did not pay the deposit within time. Room is available again.")
	}
	return n, nil
}

// ExpireNoVisitBookings moves bookings whose visit window lapsed without a
// recorded outcome to EXPIRED_NO_VISIT, unconditionally.
func (s *bookingService) ExpireNoVisitBookings(ctx context.Context) (int, error) {
	items, err := s.bookingRepo.ListByStatusAndViewingDeadlineBefore(ctx, domain.BookingStatusPaidConfirmed, s.clock.Now())
	if err != nil {
		return 0, err
	}

	n := 0
	for i := range items {
		b := &items[i]
		b.Status = domain.BookingStatusExpiredNoVisit
		if err := s.expireBooking(ctx, b); err != nil {
			logger.Error("No-visit sweep: expiry failed", "booking_id", b.ID, "error", err)
			continue
		}
		n++

		s.notifyExpiry(ctx, b,
			"Booking expired (no visit)",
			"You didn't complete the visit within time. Booking expired.",
			"Booking expired (no visit)",
			"The renter did not visit in time. Room is available again.")
	}
	return n, nil
}

func (s *bookingService) expireBooking(ctx context.Context, b *domain.Booking) error {
	tx, err := s.txStore.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := tx.UpdateBooking(ctx, b); err != nil {
		return err
	}
	if err := tx.SetRoomAvailability(ctx, b.RoomID, true); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *bookingService) notifyExpiry(ctx context.Context, b *domain.Booking, renterSubject, renterBody, providerSubject, providerBody string) {
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
