package domain

import "fmt"

// Room availability is a derived flag flipped by booking lifecycle
// transitions: approval and deposit confirmation hide the room, cancellation
// and expiry restore it.
type Room struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	RentCents   int64  `json:"rent_cents"`
	Location    string `json:"location"`
	Type        string `json:"type,omitempty"`
	Available   bool   `json:"available"`
	ImageURL    string `json:"image_url,omitempty"`
	ProviderID  int64  `json:"provider_id"`
}

// PublicCode is the human-readable room code shown to renters and used on
// payout requests, e.g. "RENTO:101".
func (r *Room) PublicCode() string {
	return fmt.Sprintf("RENTO:%d", 100+r.ID)
}
