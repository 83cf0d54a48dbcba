package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ratulDIU/RentoVerse/internal/domain"
	"github.com/ratulDIU/RentoVerse/internal/service"
)

type BookingHandler struct {
	svc service.BookingService
}

func NewBookingHandler(svc service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

type createBookingRequest struct {
	RenterID int64 `json:"renter_id"`
	RoomID   int64 `json:"room_id"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err))
		return
	}

	b, err := h.svc.CreateBooking(r.Context(), req.RenterID, req.RoomID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

type respondBookingRequest struct {
	Action string `json:"action"`
}

func (h *BookingHandler) Respond(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req respondBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err))
		return
	}

	b, err := h.svc.RespondBooking(r.Context(), id, req.Action)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) CancelPending(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.CancelPending(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cancelled."})
}

type decisionRequest struct {
	Note string `json:"note"`
}

func (h *BookingHandler) RequestRefundDecision(w http.ResponseWriter, r *http.Request) {
	h.decision(w, r, h.svc.RequestRefundDecision)
}

func (h *BookingHandler) RequestCompleteDecision(w http.ResponseWriter, r *http.Request) {
	h.decision(w, r, h.svc.RequestCompleteDecision)
}

func (h *BookingHandler) decision(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, bookingID int64, note string) (*domain.Booking, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err))
		return
	}

	b, err := fn(r.Context(), id, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	b, err := h.svc.GetBooking(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) ListByRenter(w http.ResponseWriter, r *http.Request) {
	renterID, err := pathID(r, "renterId")
	if err != nil {
		writeError(w, err)
		return
	}
	status := domain.BookingStatus(r.URL.Query().Get("status"))
	items, err := h.svc.ListBookingsByRenter(r.Context(), renterID, status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *BookingHandler) ListForProvider(w http.ResponseWriter, r *http.Request) {
	providerID, err := pathID(r, "providerId")
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := h.svc.ListBookingsForProvider(r.Context(), providerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func pathID(r *http.Request, name string) (int64, error) {
	return parseID(mux.Vars(r)[name], name)
}

func parseID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a valid id", domain.ErrInvalidArgument, name, raw)
	}
	return id, nil
}
