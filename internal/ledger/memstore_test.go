package ledger

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/movietix/booking-api/internal/model"
	"github.com/movietix/booking-api/internal/payment"
	"github.com/movietix/booking-api/internal/queue"
)

// memStore is an in-memory Store used by the tests in this package.
// A single mutex serializes transactions, standing in for the row
// locks the MySQL implementation takes, and a state snapshot taken at
// transaction start provides rollback on error.
type memStore struct {
	mu sync.Mutex

	theaters  map[uint64]*model.Theater
	showtimes map[uint64]*model.Showtime
	seats     []model.Seat
	bookings  map[uint64]*model.Booking
	// occupancy[showtimeID][seatID] = bookingID, rows exist only for
	// confirmed bookings, mirroring the seat_occupancy table.
	occupancy map[uint64]map[uint64]uint64

	nextBookingID uint64
}

func newMemStore() *memStore {
	return &memStore{
		theaters:  make(map[uint64]*model.Theater),
		showtimes: make(map[uint64]*model.Showtime),
		bookings:  make(map[uint64]*model.Booking),
		occupancy: make(map[uint64]map[uint64]uint64),
	}
}

func (m *memStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.snapshot()
	if err := fn(&memTx{s: m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	bookings  map[uint64]*model.Booking
	occupancy map[uint64]map[uint64]uint64
	nextID    uint64
}

func (m *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		bookings:  make(map[uint64]*model.Booking, len(m.bookings)),
		occupancy: make(map[uint64]map[uint64]uint64, len(m.occupancy)),
		nextID:    m.nextBookingID,
	}
	for id, b := range m.bookings {
		cp := *b
		cp.SeatIDs = append([]uint64(nil), b.SeatIDs...)
		snap.bookings[id] = &cp
	}
	for st, seats := range m.occupancy {
		cp := make(map[uint64]uint64, len(seats))
		for k, v := range seats {
			cp[k] = v
		}
		snap.occupancy[st] = cp
	}
	return snap
}

func (m *memStore) restore(snap memSnapshot) {
	m.bookings = snap.bookings
	m.occupancy = snap.occupancy
	m.nextBookingID = snap.nextID
}

// addTheater, addShowtime and addSeats seed fixture data outside any
// transaction.
func (m *memStore) addTheater(t *model.Theater)   { m.theaters[t.ID] = t }
func (m *memStore) addShowtime(s *model.Showtime) { m.showtimes[s.ID] = s }
func (m *memStore) addSeats(seats ...model.Seat)  { m.seats = append(m.seats, seats...) }

type memTx struct {
	s *memStore
}

func (t *memTx) Showtime(ctx context.Context, id uint64) (*model.Showtime, error) {
	st, ok := t.s.showtimes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *st
	return &cp, nil
}

func (t *memTx) ShowtimeForUpdate(ctx context.Context, id uint64) (*model.Showtime, error) {
	return t.Showtime(ctx, id)
}

func (t *memTx) TheaterCapacity(ctx context.Context, theaterID uint64) (uint32, error) {
	th, ok := t.s.theaters[theaterID]
	if !ok {
		return 0, sql.ErrNoRows
	}
	return th.TotalSeats, nil
}

func (t *memTx) ConfirmedSeatCount(ctx context.Context, showtimeID uint64) (uint32, error) {
	return uint32(len(t.s.occupancy[showtimeID])), nil
}

func (t *memTx) ConfirmedSeatIDs(ctx context.Context, showtimeID uint64) (map[uint64]uint64, error) {
	out := make(map[uint64]uint64, len(t.s.occupancy[showtimeID]))
	for seat, booking := range t.s.occupancy[showtimeID] {
		out[seat] = booking
	}
	return out, nil
}

func (t *memTx) MissingSeats(ctx context.Context, seatIDs []uint64) ([]uint64, error) {
	known := make(map[uint64]bool, len(t.s.seats))
	for _, s := range t.s.seats {
		known[s.ID] = true
	}
	var missing []uint64
	for _, id := range seatIDs {
		if !known[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (t *memTx) ListSeats(ctx context.Context) ([]model.Seat, error) {
	return append([]model.Seat(nil), t.s.seats...), nil
}

func (t *memTx) SeatsByID(ctx context.Context, seatIDs []uint64) ([]model.Seat, error) {
	wanted := make(map[uint64]bool, len(seatIDs))
	for _, id := range seatIDs {
		wanted[id] = true
	}
	var out []model.Seat
	for _, s := range t.s.seats {
		if wanted[s.ID] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (t *memTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	t.s.nextBookingID++
	b.ID = t.s.nextBookingID
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	cp := *b
	cp.SeatIDs = append([]uint64(nil), b.SeatIDs...)
	t.s.bookings[b.ID] = &cp
	return nil
}

func (t *memTx) InsertBookingSeats(ctx context.Context, bookingID, showtimeID uint64, seatIDs []uint64) error {
	b, ok := t.s.bookings[bookingID]
	if !ok {
		return sql.ErrNoRows
	}
	b.SeatIDs = append([]uint64(nil), seatIDs...)
	return nil
}

func (t *memTx) Booking(ctx context.Context, id uint64) (*model.Booking, error) {
	b, ok := t.s.bookings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *b
	cp.SeatIDs = append([]uint64(nil), b.SeatIDs...)
	return &cp, nil
}

func (t *memTx) BookingForUpdate(ctx context.Context, id uint64) (*model.Booking, error) {
	return t.Booking(ctx, id)
}

func (t *memTx) UpdateBookingStatus(ctx context.Context, id uint64, status model.BookingStatus) error {
	b, ok := t.s.bookings[id]
	if !ok {
		return sql.ErrNoRows
	}
	b.Status = status
	return nil
}

func (t *memTx) SetPaymentRef(ctx context.Context, id uint64, ref string) error {
	b, ok := t.s.bookings[id]
	if !ok {
		return sql.ErrNoRows
	}
	b.PaymentRef = &ref
	return nil
}

func (t *memTx) ClaimSeats(ctx context.Context, showtimeID, bookingID uint64, seatIDs []uint64) ([]uint64, error) {
	occ := t.s.occupancy[showtimeID]
	if occ == nil {
		occ = make(map[uint64]uint64)
		t.s.occupancy[showtimeID] = occ
	}
	var taken []uint64
	for _, id := range seatIDs {
		if _, ok := occ[id]; ok {
			taken = append(taken, id)
		}
	}
	if len(taken) > 0 {
		sort.Slice(taken, func(i, j int) bool { return taken[i] < taken[j] })
		return taken, nil
	}
	for _, id := range seatIDs {
		occ[id] = bookingID
	}
	return nil, nil
}

func (t *memTx) ReleaseSeats(ctx context.Context, showtimeID uint64, seatIDs []uint64) error {
	occ := t.s.occupancy[showtimeID]
	for _, id := range seatIDs {
		delete(occ, id)
	}
	return nil
}

func (t *memTx) StalePending(ctx context.Context, cutoff time.Time, limit int) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range t.s.bookings {
		if b.Status == model.BookingPending && b.CreatedAt.Before(cutoff) {
			cp := *b
			cp.SeatIDs = append([]uint64(nil), b.SeatIDs...)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeGateway is a PaymentGateway whose answers the tests script.
type fakeGateway struct {
	mu        sync.Mutex
	createErr error
	statusErr error
	state     string
	// amountOverride, when set, is reported instead of the amount the
	// intent was created with.
	amountOverride *uint32

	amounts map[string]uint32 // payment id -> amount from CreateIntent
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{state: "succeeded", amounts: make(map[string]uint32)}
}

func (g *fakeGateway) CreateIntent(ctx context.Context, amountCents uint32, reference string) (payment.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return payment.Intent{}, g.createErr
	}
	id := "pi_" + reference
	g.amounts[id] = amountCents
	return payment.Intent{PaymentID: id, ClientSecret: "cs_" + reference}, nil
}

func (g *fakeGateway) Status(ctx context.Context, paymentID string) (payment.Status, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.statusErr != nil {
		return payment.Status{}, g.statusErr
	}
	amount := g.amounts[paymentID]
	if g.amountOverride != nil {
		amount = *g.amountOverride
	}
	return payment.Status{State: g.state, AmountCents: amount}, nil
}

// recordingNotifier captures lifecycle events for assertions.
type recordingNotifier struct {
	mu        sync.Mutex
	confirmed []queue.BookingConfirmedEvent
	cancelled []queue.BookingCancelledEvent
}

func (n *recordingNotifier) BookingConfirmed(ev queue.BookingConfirmedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, ev)
}

func (n *recordingNotifier) BookingCancelled(ev queue.BookingCancelledEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, ev)
}

func (n *recordingNotifier) cancelledReasons() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.cancelled))
	for _, ev := range n.cancelled {
		out = append(out, ev.Reason)
	}
	return out
}
