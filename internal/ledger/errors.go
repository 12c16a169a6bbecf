// Package ledger implements the booking ledger: the exclusive writer of
// booking and seat-occupancy state. It guarantees that two users cannot
// both hold a confirmed booking for the same seat of the same showtime,
// and that availability arithmetic stays consistent under concurrent
// requests. All coordination happens through the backing store's
// transactions; the ledger keeps no mutable in-memory state.
package ledger

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by ledger operations. Handlers translate
// these into HTTP responses; none of them should crash the process.
var (
	// ErrShowtimeInactive is returned when creating a booking against a
	// showtime whose is_active flag is false.
	ErrShowtimeInactive = errors.New("showtime is not active")

	// ErrAlreadyConfirmed is returned when confirming a booking that is
	// already confirmed. Re-confirmation is a hard error rather than an
	// idempotent no-op; payment callbacks delivered twice surface here.
	ErrAlreadyConfirmed = errors.New("booking already confirmed")

	// ErrAlreadyCancelled is returned when confirming or cancelling a
	// booking that is already cancelled.
	ErrAlreadyCancelled = errors.New("booking already cancelled")

	// ErrPaymentNotConfirmed is returned when the payment gateway does
	// not report a successful payment for the booking, or when the
	// booking has no payment reference yet. The booking stays pending so
	// the caller can retry once payment settles.
	ErrPaymentNotConfirmed = errors.New("payment not confirmed")

	// ErrPaymentAmountMismatch is returned when the gateway-reported
	// amount differs from the booking total. The booking is never
	// confirmed, not even partially; mismatches indicate fraud or a bug.
	ErrPaymentAmountMismatch = errors.New("payment amount mismatch")

	// ErrUnauthorized is returned when the actor is neither the booking
	// owner nor staff.
	ErrUnauthorized = errors.New("not allowed")
)

// NotFoundError reports that a referenced record does not exist.
type NotFoundError struct {
	Resource string // "showtime" or "booking"
	ID       uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// InvalidRequestError reports malformed input such as an empty seat
// list or seat ids that are not part of the catalogue.
type InvalidRequestError struct {
	Reason  string
	SeatIDs []uint64 // offending seat ids, when applicable
}

func (e *InvalidRequestError) Error() string {
	if len(e.SeatIDs) > 0 {
		return fmt.Sprintf("invalid request: %s %v", e.Reason, e.SeatIDs)
	}
	return "invalid request: " + e.Reason
}

// SeatConflictError reports that one or more requested seats already
// belong to a confirmed booking for the showtime. SeatIDs names the
// specific unavailable seats so the client can re-offer selection.
type SeatConflictError struct {
	ShowtimeID uint64
	SeatIDs    []uint64
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seats %v already booked for showtime %d", e.SeatIDs, e.ShowtimeID)
}
