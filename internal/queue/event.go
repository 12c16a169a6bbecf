// Package queue defines message payloads exchanged over the message
// broker and the background consumer that processes them.
package queue

// Queue names used on the broker. Both queues are declared durable so
// events survive broker restarts.
const (
	ConfirmedQueue = "booking.confirmed"
	CancelledQueue = "booking.cancelled"
)

// BookingConfirmedEvent is published when a booking reaches the
// confirmed state. It carries enough information for downstream
// consumers (ticket email, analytics) to act without querying the
// primary database.
type BookingConfirmedEvent struct {
	BookingID       uint64   `json:"booking_id"`
	UserID          uint64   `json:"user_id"`
	ShowtimeID      uint64   `json:"showtime_id"`
	Reference       string   `json:"reference"`
	SeatLabels      []string `json:"seats"`
	TotalPriceCents uint32   `json:"total_price_cents"`
	ConfirmedAt     string   `json:"confirmed_at"`
}

// BookingCancelledEvent is published when a booking is cancelled,
// whether by the user, by staff, by a lost seat race or by the
// pending-booking sweep. Reason is one of "requested",
// "seat_conflict" or "expired".
type BookingCancelledEvent struct {
	BookingID   uint64 `json:"booking_id"`
	UserID      uint64 `json:"user_id"`
	ShowtimeID  uint64 `json:"showtime_id"`
	Reference   string `json:"reference"`
	Reason      string `json:"reason"`
	CancelledAt string `json:"cancelled_at"`
}
