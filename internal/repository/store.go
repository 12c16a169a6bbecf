package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/movietix/booking-api/internal/ledger"
	"github.com/movietix/booking-api/internal/model"
)

// Store adapts the entity repositories to the ledger's Store and Tx
// interfaces. One Store serves the whole process; transaction handles
// are created per operation and passed explicitly to the repos.
type Store struct {
	db        *sql.DB
	theaters  *TheaterRepo
	showtimes *ShowtimeRepo
	seats     *SeatRepo
	bookings  *BookingRepo
}

// NewStore wires the repositories over a shared DB handle.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:        db,
		theaters:  NewTheaterRepo(db),
		showtimes: NewShowtimeRepo(db),
		seats:     NewSeatRepo(db),
		bookings:  NewBookingRepo(db),
	}
}

// WithinTx runs fn inside a single transaction, committing on nil and
// rolling back otherwise.
func (s *Store) WithinTx(ctx context.Context, fn func(tx ledger.Tx) error) error {
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = dbtx.Rollback()
		}
	}()
	if err := fn(&storeTx{store: s, tx: dbtx}); err != nil {
		return err
	}
	if err := dbtx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// storeTx satisfies ledger.Tx by delegating to the repos with the
// wrapped *sql.Tx.
type storeTx struct {
	store *Store
	tx    *sql.Tx
}

func (t *storeTx) Showtime(ctx context.Context, id uint64) (*model.Showtime, error) {
	return t.store.showtimes.GetTx(ctx, t.tx, id)
}

func (t *storeTx) ShowtimeForUpdate(ctx context.Context, id uint64) (*model.Showtime, error) {
	return t.store.showtimes.GetForUpdateTx(ctx, t.tx, id)
}

func (t *storeTx) TheaterCapacity(ctx context.Context, theaterID uint64) (uint32, error) {
	return t.store.theaters.CapacityTx(ctx, t.tx, theaterID)
}

func (t *storeTx) ConfirmedSeatCount(ctx context.Context, showtimeID uint64) (uint32, error) {
	return t.store.bookings.ConfirmedSeatCountTx(ctx, t.tx, showtimeID)
}

func (t *storeTx) ConfirmedSeatIDs(ctx context.Context, showtimeID uint64) (map[uint64]uint64, error) {
	return t.store.bookings.ConfirmedSeatIDsTx(ctx, t.tx, showtimeID)
}

func (t *storeTx) MissingSeats(ctx context.Context, seatIDs []uint64) ([]uint64, error) {
	return t.store.seats.MissingTx(ctx, t.tx, seatIDs)
}

func (t *storeTx) ListSeats(ctx context.Context) ([]model.Seat, error) {
	return t.store.seats.ListTx(ctx, t.tx)
}

func (t *storeTx) SeatsByID(ctx context.Context, seatIDs []uint64) ([]model.Seat, error) {
	return t.store.seats.ByIDsTx(ctx, t.tx, seatIDs)
}

func (t *storeTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	return t.store.bookings.CreateTx(ctx, t.tx, b)
}

func (t *storeTx) InsertBookingSeats(ctx context.Context, bookingID, showtimeID uint64, seatIDs []uint64) error {
	return t.store.bookings.CreateSeatsTx(ctx, t.tx, bookingID, showtimeID, seatIDs)
}

func (t *storeTx) Booking(ctx context.Context, id uint64) (*model.Booking, error) {
	return t.store.bookings.GetTx(ctx, t.tx, id)
}

func (t *storeTx) BookingForUpdate(ctx context.Context, id uint64) (*model.Booking, error) {
	return t.store.bookings.GetForUpdateTx(ctx, t.tx, id)
}

func (t *storeTx) UpdateBookingStatus(ctx context.Context, id uint64, status model.BookingStatus) error {
	return t.store.bookings.UpdateStatusTx(ctx, t.tx, id, status)
}

func (t *storeTx) SetPaymentRef(ctx context.Context, id uint64, ref string) error {
	return t.store.bookings.SetPaymentRefTx(ctx, t.tx, id, ref)
}

func (t *storeTx) ClaimSeats(ctx context.Context, showtimeID, bookingID uint64, seatIDs []uint64) ([]uint64, error) {
	return t.store.bookings.ClaimSeatsTx(ctx, t.tx, showtimeID, bookingID, seatIDs)
}

func (t *storeTx) ReleaseSeats(ctx context.Context, showtimeID uint64, seatIDs []uint64) error {
	return t.store.bookings.ReleaseSeatsTx(ctx, t.tx, showtimeID, seatIDs)
}

func (t *storeTx) StalePending(ctx context.Context, cutoff time.Time, limit int) ([]model.Booking, error) {
	return t.store.bookings.StalePendingTx(ctx, t.tx, cutoff, limit)
}
