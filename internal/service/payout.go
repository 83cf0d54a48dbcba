package service

import (
	"context"
	"fmt"

	"github.com/ratulDIU/RentoVerse/internal/domain"
	"github.com/ratulDIU/RentoVerse/internal/repository"
)

type payoutService struct {
	payoutRepo   repository.PayoutRepository
	bookingRepo  repository.BookingRepository
	roomRepo     repository.RoomRepository
	userRepo     repository.UserRepository
	emailSvc     EmailService
	clock        Clock
	supportEmail string
}

func NewPayoutService(
	payoutRepo repository.PayoutRepository,
	bookingRepo repository.BookingRepository,
	roomRepo repository.RoomRepository,
	userRepo repository.UserRepository,
	emailSvc EmailService,
	clock Clock,
	supportEmail string,
) PayoutService {
	return &payoutService{
		payoutRepo:   payoutRepo,
		bookingRepo:  bookingRepo,
		roomRepo:     roomRepo,
		userRepo:     userRepo,
		emailSvc:     emailSvc,
		clock:        clock,
		supportEmail: supportEmail,
	}
}

func (s *payoutService) RequestPayout(ctx context.Context, bookingID int64, method, account, roomCode string) (*domain.ProviderPayout, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingStatusCompleted {
		return nil, fmt.Errorf("%w: payout can be requested only after completion", domain.ErrInvalidState)
	}

	var providerEmail string
	if room, err := s.roomRepo.GetByID(ctx, b.RoomID); err == nil {
		if provider, err := s.userRepo.GetByID(ctx, room.ProviderID); err == nil {
			providerEmail = provider.Email
		}
	}

	p := &domain.ProviderPayout{
		BookingID:     b.ID,
		ProviderEmail: providerEmail,
		RoomCode:      roomCode,
		Method:        method,
		Account:       account,
		Status:        domain.PayoutStatusRequested,
		CreatedAt:     s.clock.Now(),
	}
	if err := s.payoutRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	_ = s.emailSvc.Send(ctx, s.supportEmail,
		"Provider payout requested",
		fmt.Sprintf("Booking #%d — %s requested 25%% via %s (%s).", b.ID, providerEmail, method, account))
	return p, nil
}

func (s *payoutService) GetPayoutByBooking(ctx context.Context, bookingID int64) (*domain.ProviderPayout, error) {
	return s.payoutRepo.GetLatestByBooking(ctx, bookingID)
}

func (s *payoutService) MarkPayoutPaid(ctx context.Context, payoutID int64) (*domain.ProviderPayout, error) {
	p, err := s.payoutRepo.GetByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	p.Status = domain.PayoutStatusPaid
	p.PaidAt = &now
	if err := s.payoutRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	if p.ProviderEmail != "" {
		_ = s.emailSvc.Send(ctx, p.ProviderEmail,
			"Payout received — 25% deposit",
			fmt.Sprintf("Your 25%% for booking #%d has been sent.\n\nThank you!", p.BookingID))
	}
	return p, nil
}
