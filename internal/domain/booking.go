package domain

import "time"

type BookingStatus string

const (
	// request phase
	BookingStatusPendingRequest BookingStatus = "PENDING_REQUEST"
	BookingStatusDeclined       BookingStatus = "DECLINED"

	// escrow & visit phase
	BookingStatusAwaitingPayment BookingStatus = "AWAITING_PAYMENT"
	BookingStatusConfirmed       BookingStatus = "CONFIRMED" // kept for data compatibility, no transition produces it
	BookingStatusPaidConfirmed   BookingStatus = "PAID_CONFIRMED"

	// terminal positive
	BookingStatusCompleted BookingStatus = "COMPLETED"

	// terminal negative
	BookingStatusCancelledAfterViewing BookingStatus = "CANCELLED_AFTER_VIEWING"
	BookingStatusExpiredUnpaid         BookingStatus = "EXPIRED_UNPAID"
	BookingStatusExpiredNoVisit        BookingStatus = "EXPIRED_NO_VISIT"
)

type VisitDecision string

const (
	VisitDecisionNone              VisitDecision = "NONE"
	VisitDecisionRefundRequested   VisitDecision = "REFUND_REQUESTED"
	VisitDecisionCompleteRequested VisitDecision = "COMPLETE_REQUESTED"
)

type Booking struct {
	ID       int64         `json:"id"`
	RenterID int64         `json:"renter_id"`
	RoomID   int64         `json:"room_id"`
	Status   BookingStatus `json:"status"`

	CreatedAt          time.Time  `json:"created_at"`
	ApprovedAt         *time.Time `json:"approved_at,omitempty"`
	PaymentDeadline    *time.Time `json:"payment_deadline,omitempty"`
	PaymentConfirmedAt *time.Time `json:"payment_confirmed_at,omitempty"`
	ViewingDeadline    *time.Time `json:"viewing_deadline,omitempty"`

	// Renter's stated preference during the visit window. Advisory only;
	// an admin acts on it through the payment operations.
	DecisionStatus VisitDecision `json:"decision_status"`
	DecisionNote   string        `json:"decision_note,omitempty"`
}
