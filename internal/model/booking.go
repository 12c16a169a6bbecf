package model

import "time"

// BookingStatus enumerates the lifecycle states of a booking.  A
// booking starts pending, moves to confirmed exactly once (payment
// success plus a clean seat re-check), or to cancelled.  There is no
// transition out of cancelled.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

// Booking records a user's claim on a set of seats for a showtime.
// TotalPriceCents is snapshotted at creation from the showtime's
// price at that moment and never recomputed, so later price edits do
// not affect existing bookings.  Reference is an opaque token handed
// to the payment gateway and printed on tickets.  Only confirmed
// bookings occupy seats.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – user who made the booking.
//  ShowtimeID      – showtime being booked.
//  Status          – lifecycle state (pending, confirmed, cancelled).
//  TotalPriceCents – snapshotted total price in cents.
//  Reference       – unique opaque booking reference.
//  PaymentRef      – external payment intent id (nil until created).
//  DiscountApplied – whether the student discount was applied.
//  SeatIDs         – seats claimed by this booking, ordered by (row, number).
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Booking struct {
	ID              uint64        // bookings.id
	UserID          uint64        // bookings.user_id
	ShowtimeID      uint64        // bookings.showtime_id
	Status          BookingStatus // bookings.status
	TotalPriceCents uint32        // bookings.total_price_cents
	Reference       string        // bookings.reference
	PaymentRef      *string       // bookings.payment_ref (nullable)
	DiscountApplied bool          // bookings.discount_applied
	SeatIDs         []uint64      // booking_seats.seat_id, loaded alongside
	CreatedAt       time.Time     // bookings.created_at
	UpdatedAt       time.Time     // bookings.updated_at
}
