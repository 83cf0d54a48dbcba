package domain

import "errors"

// Error taxonomy shared by all services. Callers classify failures with
// errors.Is; messages carry the detail.
var (
	// ErrNotFound: a referenced booking/payment/payout/room/renter id does
	// not resolve.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState: the operation is not permitted from the entity's
	// current state. Retrying without changing input will fail again.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidArgument: malformed or unrecognized input.
	ErrInvalidArgument = errors.New("invalid argument")
)
