package domain

import "time"

type PayoutStatus string

const (
	PayoutStatusRequested PayoutStatus = "REQUESTED"
	PayoutStatusPaid      PayoutStatus = "PAID"
)

// ProviderPayout is the provider's claim on the confirmed deposit after a
// booking completes. The most recently created payout per booking is the
// authoritative one.
type ProviderPayout struct {
	ID            int64        `json:"id"`
	BookingID     int64        `json:"booking_id"`
	ProviderEmail string       `json:"provider_email"` // denormalized for convenience
	RoomCode      string       `json:"room_code"`
	Method        string       `json:"method"`  // payout rail, opaque
	Account       string       `json:"account"` // number / account id
	Status        PayoutStatus `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	PaidAt        *time.Time   `json:"paid_at,omitempty"`
}
