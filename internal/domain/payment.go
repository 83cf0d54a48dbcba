package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusConfirmed PaymentStatus = "CONFIRMED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
	PaymentStatusFailed    PaymentStatus = "FAILED" // reserved for gateway callbacks
)

// Payment is one escrow deposit attempt against a booking. Amount, method,
// reference and payer metadata are write-once at creation.
type Payment struct {
	ID        int64         `json:"id"`
	BookingID int64         `json:"booking_id"`
	Amount    int64         `json:"amount_cents"`
	Method    string        `json:"method"`    // BKASH / NAGAD / ROCKET / MANUAL, opaque
	Reference string        `json:"reference"` // free-form TXN/ROOM/BK reference
	Status    PaymentStatus `json:"status"`

	PayerName  string `json:"payer_name,omitempty"`
	PayerPhone string `json:"payer_phone,omitempty"`
	TxnID      string `json:"txn_id,omitempty"`
	Note       string `json:"note,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	RefundedAt  *time.Time `json:"refunded_at,omitempty"`
}
