package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ratulDIU/RentoVerse/internal/domain"
	"github.com/ratulDIU/RentoVerse/internal/service"
)

type PayoutHandler struct {
	svc service.PayoutService
}

func NewPayoutHandler(svc service.PayoutService) *PayoutHandler {
	return &PayoutHandler{svc: svc}
}

type requestPayoutRequest struct {
	BookingID int64  `json:"booking_id"`
	Method    string `json:"method"`
	Account   string `json:"account"`
	RoomCode  string `json:"room_code"`
}

func (h *PayoutHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req requestPayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err))
		return
	}

	p, err := h.svc.RequestPayout(r.Context(), req.BookingID, req.Method, req.Account, req.RoomCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PayoutHandler) GetByBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := pathID(r, "bookingId")
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := h.svc.GetPayoutByBooking(r.Context(), bookingID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PayoutHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := h.svc.MarkPayoutPaid(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
