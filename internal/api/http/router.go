package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ratulDIU/RentoVerse/internal/security"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth     *AuthHandler
	Bookings *BookingHandler
	Payments *PaymentHandler
	Payouts  *PayoutHandler
	Rooms    *RoomHandler
}

// NewRouter wires the public and admin routes. Admin routes sit behind the
// bearer-token middleware; everything passes through the request-ID
// middleware.
func NewRouter(h Handlers, tokens security.TokenManager) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestID)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// Rooms.
	api.HandleFunc("/rooms/available", h.Rooms.ListAvailable).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{id}", h.Rooms.Get).Methods(http.MethodGet)

	// Booking lifecycle.
	api.HandleFunc("/bookings", h.Bookings.Create).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}", h.Bookings.Get).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id}/respond", h.Bookings.Respond).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}", h.Bookings.CancelPending).Methods(http.MethodDelete)
	api.HandleFunc("/bookings/{id}/decision/refund", h.Bookings.RequestRefundDecision).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/decision/complete", h.Bookings.RequestCompleteDecision).Methods(http.MethodPost)
	api.HandleFunc("/bookings/renter/{renterId}", h.Bookings.ListByRenter).Methods(http.MethodGet)
	api.HandleFunc("/bookings/provider/{providerId}", h.Bookings.ListForProvider).Methods(http.MethodGet)

	// Renter escrow submission and provider payouts.
	api.HandleFunc("/payments/escrow", h.Payments.SubmitDeposit).Methods(http.MethodPost)
	api.HandleFunc("/payouts", h.Payouts.Request).Methods(http.MethodPost)
	api.HandleFunc("/payouts/booking/{bookingId}", h.Payouts.GetByBooking).Methods(http.MethodGet)

	// Back office.
	api.HandleFunc("/admin/login", h.Auth.Login).Methods(http.MethodPost)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(AdminAuth(tokens))
	admin.HandleFunc("/payments", h.Payments.List).Methods(http.MethodGet)
	admin.HandleFunc("/payments/{id}/confirm", h.Payments.Confirm).Methods(http.MethodPost)
	admin.HandleFunc("/payments/{id}/refund", h.Payments.Refund).Methods(http.MethodPost)
	admin.HandleFunc("/payments/{id}/refund-cancel", h.Payments.RefundAndCancel).Methods(http.MethodPost)
	admin.HandleFunc("/payments/{id}/complete-release", h.Payments.CompleteAndRelease).Methods(http.MethodPost)
	admin.HandleFunc("/payouts/{id}/paid", h.Payouts.MarkPaid).Methods(http.MethodPost)

	return r
}
