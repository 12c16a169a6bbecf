package ledger

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/movietix/booking-api/internal/model"
	"github.com/movietix/booking-api/internal/payment"
	"github.com/movietix/booking-api/internal/queue"
)

// PaymentGateway is the slice of the payment service the ledger
// consumes. Intent creation happens outside any seat-lock-holding
// transaction; only the final status check sits adjacent to the
// atomic seat commit, and even that call never runs while a lock is
// held.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountCents uint32, reference string) (payment.Intent, error)
	Status(ctx context.Context, paymentID string) (payment.Status, error)
}

// Notifier receives booking lifecycle events. Implementations are
// fire-and-forget: they must not block and their failures never roll
// back a booking transition.
type Notifier interface {
	BookingConfirmed(ev queue.BookingConfirmedEvent)
	BookingCancelled(ev queue.BookingCancelledEvent)
}

// Actor identifies the caller of a ledger operation for the purpose
// of ownership checks.
type Actor struct {
	UserID uint64
	Role   model.Role
}

// staff reports whether the actor may act on bookings it does not own.
func (a Actor) staff() bool { return a.Role.Staff() }

// Ledger owns all booking and seat-occupancy mutations. No other
// component writes booking state.
type Ledger struct {
	store    Store
	payments PaymentGateway
	notifier Notifier
}

// New constructs a Ledger. All dependencies must be non-nil.
func New(store Store, payments PaymentGateway, notifier Notifier) *Ledger {
	if store == nil || payments == nil || notifier == nil {
		panic("nil dependency passed to ledger.New")
	}
	return &Ledger{store: store, payments: payments, notifier: notifier}
}

// AvailableSeatCount returns the number of free seats for the
// showtime: theater capacity minus the distinct seats held by
// confirmed bookings. The showtime row is locked for the duration of
// the count so concurrent committers cannot skew the arithmetic. The
// result is never negative.
func (l *Ledger) AvailableSeatCount(ctx context.Context, showtimeID uint64) (uint32, error) {
	var avail uint32
	err := l.store.WithinTx(ctx, func(tx Tx) error {
		st, err := tx.ShowtimeForUpdate(ctx, showtimeID)
		if err != nil {
			return showtimeErr(showtimeID, err)
		}
		capacity, err := tx.TheaterCapacity(ctx, st.TheaterID)
		if err != nil {
			return err
		}
		confirmed, err := tx.ConfirmedSeatCount(ctx, showtimeID)
		if err != nil {
			return err
		}
		if confirmed >= capacity {
			avail = 0
		} else {
			avail = capacity - confirmed
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return avail, nil
}

// AvailableSeats returns the seat catalogue minus the seats already
// confirmed-booked for the showtime, ordered by (row, number).
func (l *Ledger) AvailableSeats(ctx context.Context, showtimeID uint64) ([]model.Seat, error) {
	var free []model.Seat
	err := l.store.WithinTx(ctx, func(tx Tx) error {
		if _, err := tx.Showtime(ctx, showtimeID); err != nil {
			return showtimeErr(showtimeID, err)
		}
		seats, err := tx.ListSeats(ctx)
		if err != nil {
			return err
		}
		occupied, err := tx.ConfirmedSeatIDs(ctx, showtimeID)
		if err != nil {
			return err
		}
		free = make([]model.Seat, 0, len(seats))
		for _, s := range seats {
			if _, taken := occupied[s.ID]; !taken {
				free = append(free, s)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return free, nil
}

// CreateBooking validates the request, snapshots the price and
// creates a pending booking, then asks the gateway for a payment
// intent and records its id on the booking. The returned client
// secret is handed to the caller so they can complete payment.
//
// The seat transaction and the gateway round trip are deliberately
// separate: the intent is created after the booking transaction has
// committed so no seat lock is held across the network call. Seat
// occupancy is only authoritative at confirm time; a pending booking
// does not occupy seats, so the conflict check here is advisory and
// repeated inside ConfirmBooking.
func (l *Ledger) CreateBooking(ctx context.Context, actor Actor, showtimeID uint64, seatIDs []uint64, discount bool) (*model.Booking, string, error) {
	seatIDs = dedupe(seatIDs)
	if len(seatIDs) == 0 {
		return nil, "", &InvalidRequestError{Reason: "seat_ids must not be empty"}
	}

	ref, err := newReference()
	if err != nil {
		return nil, "", err
	}
	b := &model.Booking{
		UserID:          actor.UserID,
		ShowtimeID:      showtimeID,
		Status:          model.BookingPending,
		Reference:       ref,
		DiscountApplied: discount,
	}

	err = l.store.WithinTx(ctx, func(tx Tx) error {
		st, err := tx.ShowtimeForUpdate(ctx, showtimeID)
		if err != nil {
			return showtimeErr(showtimeID, err)
		}
		if !st.IsActive {
			return ErrShowtimeInactive
		}
		missing, err := tx.MissingSeats(ctx, seatIDs)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return &InvalidRequestError{Reason: "unknown seat ids", SeatIDs: missing}
		}
		occupied, err := tx.ConfirmedSeatIDs(ctx, showtimeID)
		if err != nil {
			return err
		}
		if conflicts := intersect(seatIDs, occupied); len(conflicts) > 0 {
			return &SeatConflictError{ShowtimeID: showtimeID, SeatIDs: conflicts}
		}
		// Price is snapshotted here; later edits to the showtime's
		// prices do not affect this booking.
		b.TotalPriceCents = st.TicketPriceCents(discount) * uint32(len(seatIDs))
		b.SeatIDs = seatIDs
		if err := tx.InsertBooking(ctx, b); err != nil {
			return err
		}
		return tx.InsertBookingSeats(ctx, b.ID, showtimeID, seatIDs)
	})
	if err != nil {
		return nil, "", err
	}

	intent, err := l.payments.CreateIntent(ctx, b.TotalPriceCents, b.Reference)
	if err != nil {
		// The gateway client already retried transient failures. The
		// booking cannot proceed to payment, so cancel it rather than
		// leave an orphan for the sweep.
		cancelErr := l.store.WithinTx(ctx, func(tx Tx) error {
			return tx.UpdateBookingStatus(ctx, b.ID, model.BookingCancelled)
		})
		if cancelErr != nil {
			return nil, "", fmt.Errorf("cancel booking %d after intent failure: %w", b.ID, cancelErr)
		}
		return nil, "", fmt.Errorf("create payment intent: %w", ErrPaymentNotConfirmed)
	}
	err = l.store.WithinTx(ctx, func(tx Tx) error {
		return tx.SetPaymentRef(ctx, b.ID, intent.PaymentID)
	})
	if err != nil {
		return nil, "", err
	}
	b.PaymentRef = &intent.PaymentID
	return b, intent.ClientSecret, nil
}

// ConfirmBooking moves a pending booking to confirmed after verifying
// payment with the gateway and re-validating seat occupancy inside a
// single transaction. Among concurrent confirms racing over an
// overlapping seat set exactly one succeeds: the seat_occupancy
// unique key rejects every other claim, those bookings are cancelled
// and their callers receive a SeatConflictError naming the seats.
func (l *Ledger) ConfirmBooking(ctx context.Context, actor Actor, bookingID uint64) (*model.Booking, error) {
	// Phase one: load and validate the booking without holding any
	// seat lock across the upcoming gateway round trip.
	var b *model.Booking
	err := l.store.WithinTx(ctx, func(tx Tx) error {
		var err error
		b, err = tx.Booking(ctx, bookingID)
		return bookingErr(bookingID, err)
	})
	if err != nil {
		return nil, err
	}
	if actor.UserID != b.UserID && !actor.staff() {
		return nil, ErrUnauthorized
	}
	switch b.Status {
	case model.BookingConfirmed:
		return nil, ErrAlreadyConfirmed
	case model.BookingCancelled:
		return nil, ErrAlreadyCancelled
	case model.BookingPending:
		// proceed
	default:
		return nil, fmt.Errorf("booking %d has unknown status %q", b.ID, b.Status)
	}
	if b.PaymentRef == nil {
		return nil, ErrPaymentNotConfirmed
	}

	// Phase two: ask the gateway. Slow or flaky network here cannot
	// stall other bookings because no lock is held.
	status, err := l.payments.Status(ctx, *b.PaymentRef)
	if err != nil {
		return nil, fmt.Errorf("check payment %s: %w", *b.PaymentRef, ErrPaymentNotConfirmed)
	}
	if !status.Succeeded() {
		return nil, ErrPaymentNotConfirmed
	}
	if status.AmountCents != b.TotalPriceCents {
		return nil, ErrPaymentAmountMismatch
	}

	// Phase three: the atomic validate-and-commit step. Lock hold time
	// is limited to the re-check and the status flip.
	var conflict *SeatConflictError
	var seatLabels []string
	err = l.store.WithinTx(ctx, func(tx Tx) error {
		if _, err := tx.ShowtimeForUpdate(ctx, b.ShowtimeID); err != nil {
			return showtimeErr(b.ShowtimeID, err)
		}
		cur, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			return bookingErr(bookingID, err)
		}
		switch cur.Status {
		case model.BookingConfirmed:
			return ErrAlreadyConfirmed
		case model.BookingCancelled:
			return ErrAlreadyCancelled
		}
		taken, err := tx.ClaimSeats(ctx, cur.ShowtimeID, cur.ID, cur.SeatIDs)
		if err != nil {
			return err
		}
		if len(taken) > 0 {
			// The booking lost the race and cannot be honored; cancel
			// it as part of this same transaction so the commit below
			// persists the cancellation.
			if err := tx.UpdateBookingStatus(ctx, cur.ID, model.BookingCancelled); err != nil {
				return err
			}
			conflict = &SeatConflictError{ShowtimeID: cur.ShowtimeID, SeatIDs: taken}
			b = cur
			b.Status = model.BookingCancelled
			return nil
		}
		if err := tx.UpdateBookingStatus(ctx, cur.ID, model.BookingConfirmed); err != nil {
			return err
		}
		seats, err := tx.SeatsByID(ctx, cur.SeatIDs)
		if err != nil {
			return err
		}
		for _, s := range seats {
			seatLabels = append(seatLabels, s.Label())
		}
		b = cur
		b.Status = model.BookingConfirmed
		return nil
	})
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		l.notifier.BookingCancelled(queue.BookingCancelledEvent{
			BookingID:   b.ID,
			UserID:      b.UserID,
			ShowtimeID:  b.ShowtimeID,
			Reference:   b.Reference,
			Reason:      "seat_conflict",
			CancelledAt: time.Now().UTC().Format(time.RFC3339),
		})
		return nil, conflict
	}

	l.notifier.BookingConfirmed(queue.BookingConfirmedEvent{
		BookingID:       b.ID,
		UserID:          b.UserID,
		ShowtimeID:      b.ShowtimeID,
		Reference:       b.Reference,
		SeatLabels:      seatLabels,
		TotalPriceCents: b.TotalPriceCents,
		ConfirmedAt:     time.Now().UTC().Format(time.RFC3339),
	})
	return b, nil
}

// CancelBooking moves a booking to cancelled. Pending bookings may be
// cancelled by their owner or by staff; confirmed bookings only by
// staff, which releases the seats immediately for rebooking. There is
// no transition out of cancelled.
func (l *Ledger) CancelBooking(ctx context.Context, actor Actor, bookingID uint64) (*model.Booking, error) {
	var b *model.Booking
	err := l.store.WithinTx(ctx, func(tx Tx) error {
		cur, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			return bookingErr(bookingID, err)
		}
		if actor.UserID != cur.UserID && !actor.staff() {
			return ErrUnauthorized
		}
		switch cur.Status {
		case model.BookingCancelled:
			return ErrAlreadyCancelled
		case model.BookingConfirmed:
			if !actor.staff() {
				return ErrUnauthorized
			}
			if _, err := tx.ShowtimeForUpdate(ctx, cur.ShowtimeID); err != nil {
				return showtimeErr(cur.ShowtimeID, err)
			}
			if err := tx.ReleaseSeats(ctx, cur.ShowtimeID, cur.SeatIDs); err != nil {
				return err
			}
		case model.BookingPending:
			// pending bookings hold no occupancy; nothing to release
		}
		if err := tx.UpdateBookingStatus(ctx, cur.ID, model.BookingCancelled); err != nil {
			return err
		}
		b = cur
		b.Status = model.BookingCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.notifier.BookingCancelled(queue.BookingCancelledEvent{
		BookingID:   b.ID,
		UserID:      b.UserID,
		ShowtimeID:  b.ShowtimeID,
		Reference:   b.Reference,
		Reason:      "requested",
		CancelledAt: time.Now().UTC().Format(time.RFC3339),
	})
	return b, nil
}

// Booking returns a booking visible to the actor: its owner or staff.
func (l *Ledger) Booking(ctx context.Context, actor Actor, bookingID uint64) (*model.Booking, error) {
	var b *model.Booking
	err := l.store.WithinTx(ctx, func(tx Tx) error {
		var err error
		b, err = tx.Booking(ctx, bookingID)
		return bookingErr(bookingID, err)
	})
	if err != nil {
		return nil, err
	}
	if actor.UserID != b.UserID && !actor.staff() {
		return nil, ErrUnauthorized
	}
	return b, nil
}

// ExpirePending cancels pending bookings created before the cutoff,
// at most limit per call, and returns how many were cancelled. The
// sweep keeps abandoned checkouts from accumulating; pending bookings
// hold no seats so no occupancy is released.
func (l *Ledger) ExpirePending(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	var expired []model.Booking
	err := l.store.WithinTx(ctx, func(tx Tx) error {
		stale, err := tx.StalePending(ctx, cutoff, limit)
		if err != nil {
			return err
		}
		for _, b := range stale {
			if err := tx.UpdateBookingStatus(ctx, b.ID, model.BookingCancelled); err != nil {
				return err
			}
		}
		expired = stale
		return nil
	})
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for _, b := range expired {
		l.notifier.BookingCancelled(queue.BookingCancelledEvent{
			BookingID:   b.ID,
			UserID:      b.UserID,
			ShowtimeID:  b.ShowtimeID,
			Reference:   b.Reference,
			Reason:      "expired",
			CancelledAt: now,
		})
	}
	return len(expired), nil
}

// showtimeErr maps a missing-row error to a typed NotFoundError.
func showtimeErr(id uint64, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Resource: "showtime", ID: id}
	}
	return err
}

// bookingErr maps a missing-row error to a typed NotFoundError.
func bookingErr(id uint64, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Resource: "booking", ID: id}
	}
	return err
}

// newReference returns a random 32-character hex token used as the
// booking's opaque unique reference.
func newReference() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// dedupe drops zero and repeated seat ids, preserving first-seen order.
func dedupe(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// intersect returns the seat ids present in occupied, sorted for
// stable error messages.
func intersect(ids []uint64, occupied map[uint64]uint64) []uint64 {
	var out []uint64
	for _, id := range ids {
		if _, ok := occupied[id]; ok {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
