package ledger

import (
	"context"
	"time"

	"github.com/movietix/booking-api/internal/model"
)

// Store is the persistence boundary of the ledger. Every mutating
// operation runs inside WithinTx so that the check-then-set sequences
// in this package are atomic. The production implementation lives in
// the repository package and is backed by MySQL; tests use an
// in-memory fake.
type Store interface {
	// WithinTx runs fn inside a single transaction. When fn returns an
	// error the transaction is rolled back and the error is returned
	// unchanged; otherwise the transaction commits.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes the per-transaction operations the ledger needs. Methods
// that read a missing row return database/sql.ErrNoRows; the ledger
// maps that to its own NotFoundError.
type Tx interface {
	// Showtime loads a showtime without locking.
	Showtime(ctx context.Context, id uint64) (*model.Showtime, error)

	// ShowtimeForUpdate loads a showtime under a row lock
	// (SELECT ... FOR UPDATE). The lock serializes availability
	// arithmetic against concurrent confirms for the same showtime.
	ShowtimeForUpdate(ctx context.Context, id uint64) (*model.Showtime, error)

	// TheaterCapacity returns the total seat count of the theater.
	TheaterCapacity(ctx context.Context, theaterID uint64) (uint32, error)

	// ConfirmedSeatCount counts distinct seats held by confirmed
	// bookings for the showtime.
	ConfirmedSeatCount(ctx context.Context, showtimeID uint64) (uint32, error)

	// ConfirmedSeatIDs maps each occupied seat id to the confirmed
	// booking that holds it, for the given showtime.
	ConfirmedSeatIDs(ctx context.Context, showtimeID uint64) (map[uint64]uint64, error)

	// MissingSeats returns the subset of seatIDs that do not exist in
	// the seat catalogue.
	MissingSeats(ctx context.Context, seatIDs []uint64) ([]uint64, error)

	// ListSeats returns the full catalogue ordered by (row, number).
	ListSeats(ctx context.Context) ([]model.Seat, error)

	// SeatsByID returns the named seats ordered by (row, number).
	SeatsByID(ctx context.Context, seatIDs []uint64) ([]model.Seat, error)

	// InsertBooking persists a new booking and populates its ID.
	InsertBooking(ctx context.Context, b *model.Booking) error

	// InsertBookingSeats records the booking's seat set.
	InsertBookingSeats(ctx context.Context, bookingID, showtimeID uint64, seatIDs []uint64) error

	// Booking loads a booking (with its seat ids) without locking.
	Booking(ctx context.Context, id uint64) (*model.Booking, error)

	// BookingForUpdate loads a booking (with its seat ids) under a row
	// lock so status transitions are serialized.
	BookingForUpdate(ctx context.Context, id uint64) (*model.Booking, error)

	// UpdateBookingStatus moves a booking to the given status.
	UpdateBookingStatus(ctx context.Context, id uint64, status model.BookingStatus) error

	// SetPaymentRef stores the external payment intent id on a booking.
	SetPaymentRef(ctx context.Context, id uint64, ref string) error

	// ClaimSeats inserts occupancy rows binding the seats to the
	// booking for the showtime. The seat_occupancy table carries a
	// unique key on (showtime_id, seat_id), so a lost race surfaces as
	// a duplicate-key violation regardless of isolation level; the
	// implementation returns the already-taken seat ids in that case
	// with a nil error and inserts nothing.
	ClaimSeats(ctx context.Context, showtimeID, bookingID uint64, seatIDs []uint64) (taken []uint64, err error)

	// ReleaseSeats removes the occupancy rows for the seats, freeing
	// them for new bookings.
	ReleaseSeats(ctx context.Context, showtimeID uint64, seatIDs []uint64) error

	// StalePending returns pending bookings created before the cutoff,
	// oldest first, at most limit rows.
	StalePending(ctx context.Context, cutoff time.Time, limit int) ([]model.Booking, error)
}
