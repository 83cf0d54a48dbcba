package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ratulDIU/RentoVerse/internal/domain"
	"github.com/ratulDIU/RentoVerse/internal/repository"
	"github.com/ratulDIU/RentoVerse/internal/service"
)

type PaymentHandler struct {
	svc service.PaymentService
}

func NewPaymentHandler(svc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func (h *PaymentHandler) SubmitDeposit(w http.ResponseWriter, r *http.Request) {
	var in service.SubmitDepositInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err))
		return
	}

	p, err := h.svc.SubmitDeposit(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.svc.ConfirmDeposit)
}

func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.svc.Refund)
}

func (h *PaymentHandler) RefundAndCancel(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.svc.RefundAndCancel)
}

func (h *PaymentHandler) CompleteAndRelease(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.svc.CompleteAndRelease)
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.PaymentFilter{
		Status:      domain.PaymentStatus(q.Get("status")),
		RenterEmail: q.Get("renter_email"),
	}
	if raw := q.Get("booking_id"); raw != "" {
		id, err := parseID(raw, "booking_id")
		if err != nil {
			writeError(w, err)
			return
		}
		filter.BookingID = id
	}

	items, err := h.svc.ListPayments(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *PaymentHandler) mutate(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, paymentID int64) (*domain.Payment, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := fn(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
