package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/movietix/booking-api/internal/model"
)

// BookingRepo provides CRUD for bookings, their seat sets and the
// seat_occupancy rows that make confirmed occupancy exclusive. The
// seat_occupancy table carries a unique key on (showtime_id, seat_id)
// and contains a row if and only if the owning booking is confirmed,
// so the storage engine itself rejects double bookings regardless of
// isolation level.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingCols = `id, user_id, showtime_id, status, total_price_cents,
	reference, payment_ref, discount_applied, created_at, updated_at`

// CreateTx inserts a new booking within the caller's transaction and
// populates the generated ID and timestamps on b.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (user_id, showtime_id, status, total_price_cents, reference, discount_applied)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.UserID, b.ShowtimeID, string(b.Status), b.TotalPriceCents, b.Reference, b.DiscountApplied)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM bookings WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt)
}

// CreateSeatsTx records the booking's seat set in one statement.
func (r *BookingRepo) CreateSeatsTx(ctx context.Context, tx *sql.Tx, bookingID, showtimeID uint64, seatIDs []uint64) error {
	if len(seatIDs) == 0 {
		return nil
	}
	query := `INSERT INTO booking_seats (booking_id, showtime_id, seat_id) VALUES `
	args := make([]interface{}, 0, len(seatIDs)*3)
	for i, sid := range seatIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, bookingID, showtimeID, sid)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// getTx loads a booking; forUpdate controls row locking.
func (r *BookingRepo) getTx(ctx context.Context, tx *sql.Tx, id uint64, forUpdate bool) (*model.Booking, error) {
	q := `SELECT ` + bookingCols + ` FROM bookings WHERE id = ?`
	if forUpdate {
		q += ` FOR UPDATE`
	}
	var b model.Booking
	var status string
	var payRef sql.NullString
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.UserID, &b.ShowtimeID, &status, &b.TotalPriceCents,
		&b.Reference, &payRef, &b.DiscountApplied, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Status = model.BookingStatus(status)
	if payRef.Valid {
		ref := payRef.String
		b.PaymentRef = &ref
	}
	b.SeatIDs, err = r.seatIDsTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetTx loads a booking with its seat ids, without locking.
func (r *BookingRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	return r.getTx(ctx, tx, id, false)
}

// GetForUpdateTx loads a booking with its seat ids under a row lock,
// serializing concurrent status transitions.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	return r.getTx(ctx, tx, id, true)
}

// seatIDsTx returns the booking's seats ordered by (row, number).
func (r *BookingRepo) seatIDsTx(ctx context.Context, tx *sql.Tx, bookingID uint64) ([]uint64, error) {
	const q = `SELECT bs.seat_id FROM booking_seats bs
	           JOIN seats se ON se.id = bs.seat_id
	           WHERE bs.booking_id = ?
	           ORDER BY se.row_label, se.seat_number`
	rows, err := tx.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateStatusTx moves the booking to the given status.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.BookingStatus) error {
	const q = `UPDATE bookings SET status = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, string(status), id)
	return err
}

// SetPaymentRefTx stores the gateway's payment intent id.
func (r *BookingRepo) SetPaymentRefTx(ctx context.Context, tx *sql.Tx, id uint64, ref string) error {
	const q = `UPDATE bookings SET payment_ref = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, ref, id)
	return err
}

// ConfirmedSeatCountTx counts distinct occupied seats for a showtime.
func (r *BookingRepo) ConfirmedSeatCountTx(ctx context.Context, tx *sql.Tx, showtimeID uint64) (uint32, error) {
	const q = `SELECT COUNT(DISTINCT seat_id) FROM seat_occupancy WHERE showtime_id = ?`
	var n uint32
	err := tx.QueryRowContext(ctx, q, showtimeID).Scan(&n)
	return n, err
}

// ConfirmedSeatIDsTx maps each occupied seat to its confirmed booking
// for a showtime.
func (r *BookingRepo) ConfirmedSeatIDsTx(ctx context.Context, tx *sql.Tx, showtimeID uint64) (map[uint64]uint64, error) {
	const q = `SELECT seat_id, booking_id FROM seat_occupancy WHERE showtime_id = ?`
	rows, err := tx.QueryContext(ctx, q, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	occ := make(map[uint64]uint64)
	for rows.Next() {
		var seatID, bookingID uint64
		if err := rows.Scan(&seatID, &bookingID); err != nil {
			return nil, err
		}
		occ[seatID] = bookingID
	}
	return occ, rows.Err()
}

// ClaimSeatsTx inserts occupancy rows for the booking. On a
// duplicate-key violation it reports which of the requested seats are
// already held by other bookings and leaves nothing inserted (the
// caller's transaction rolls the partial insert back only if it
// aborts, so the statement inserts all rows in one multi-values
// INSERT that either fully applies or fully fails).
func (r *BookingRepo) ClaimSeatsTx(ctx context.Context, tx *sql.Tx, showtimeID, bookingID uint64, seatIDs []uint64) ([]uint64, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}
	query := `INSERT INTO seat_occupancy (showtime_id, seat_id, booking_id) VALUES `
	args := make([]interface{}, 0, len(seatIDs)*3)
	for i, sid := range seatIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, showtimeID, sid, bookingID)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if !isDuplicateEntry(err) {
			return nil, err
		}
		occ, qerr := r.ConfirmedSeatIDsTx(ctx, tx, showtimeID)
		if qerr != nil {
			return nil, qerr
		}
		var taken []uint64
		for _, sid := range seatIDs {
			if holder, ok := occ[sid]; ok && holder != bookingID {
				taken = append(taken, sid)
			}
		}
		return taken, nil
	}
	return nil, nil
}

// ReleaseSeatsTx removes the occupancy rows for the seats, making
// them bookable again.
func (r *BookingRepo) ReleaseSeatsTx(ctx context.Context, tx *sql.Tx, showtimeID uint64, seatIDs []uint64) error {
	if len(seatIDs) == 0 {
		return nil
	}
	q := `DELETE FROM seat_occupancy WHERE showtime_id = ? AND seat_id IN (` + placeholders(len(seatIDs)) + `)`
	args := make([]interface{}, 0, len(seatIDs)+1)
	args = append(args, showtimeID)
	for _, sid := range seatIDs {
		args = append(args, sid)
	}
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

// StalePendingTx returns pending bookings created before the cutoff,
// oldest first, locked for update so the sweep's cancellations cannot
// race a concurrent confirm.
func (r *BookingRepo) StalePendingTx(ctx context.Context, tx *sql.Tx, cutoff time.Time, limit int) ([]model.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings
	           WHERE status = 'pending' AND created_at < ?
	           ORDER BY created_at LIMIT ? FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, cutoff.UTC().Format("2006-01-02 15:04:05"), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		var status string
		var payRef sql.NullString
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.ShowtimeID, &status, &b.TotalPriceCents,
			&b.Reference, &payRef, &b.DiscountApplied, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		b.Status = model.BookingStatus(status)
		if payRef.Valid {
			ref := payRef.String
			b.PaymentRef = &ref
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// BookingSummary is the listing shape for booking history endpoints.
type BookingSummary struct {
	ID              uint64   `json:"id"`
	ShowtimeID      uint64   `json:"showtime_id"`
	Status          string   `json:"status"`
	TotalPriceCents uint32   `json:"total_price_cents"`
	Reference       string   `json:"reference"`
	DiscountApplied bool     `json:"discount_applied"`
	SeatLabels      []string `json:"seats"`
	CreatedAt       string   `json:"created_at"`
}

// ListByUser returns the user's bookings, newest first, each with its
// seat labels.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingSummary, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE user_id = ? ORDER BY created_at DESC`
	return r.list(ctx, q, userID)
}

// ListByTheater returns all bookings against a theater's showtimes,
// newest first. Used by manager reporting endpoints.
func (r *BookingRepo) ListByTheater(ctx context.Context, theaterID uint64) ([]BookingSummary, error) {
	const q = `SELECT b.id, b.user_id, b.showtime_id, b.status, b.total_price_cents,
	                  b.reference, b.payment_ref, b.discount_applied, b.created_at, b.updated_at
	           FROM bookings b
	           JOIN showtimes s ON s.id = b.showtime_id
	           WHERE s.theater_id = ?
	           ORDER BY b.created_at DESC`
	return r.list(ctx, q, theaterID)
}

func (r *BookingRepo) list(ctx context.Context, q string, arg interface{}) ([]BookingSummary, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]BookingSummary, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var b model.Booking
		var status string
		var payRef sql.NullString
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.ShowtimeID, &status, &b.TotalPriceCents,
			&b.Reference, &payRef, &b.DiscountApplied, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		index[b.ID] = len(out)
		out = append(out, BookingSummary{
			ID:              b.ID,
			ShowtimeID:      b.ShowtimeID,
			Status:          status,
			TotalPriceCents: b.TotalPriceCents,
			Reference:       b.Reference,
			DiscountApplied: b.DiscountApplied,
			SeatLabels:      []string{},
			CreatedAt:       b.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}
	ids := make([]uint64, 0, len(out))
	for _, s := range out {
		ids = append(ids, s.ID)
	}
	seatQ := `SELECT bs.booking_id, se.row_label, se.seat_number
	          FROM booking_seats bs
	          JOIN seats se ON se.id = bs.seat_id
	          WHERE bs.booking_id IN (` + placeholders(len(ids)) + `)
	          ORDER BY bs.booking_id, se.row_label, se.seat_number`
	srows, err := r.db.QueryContext(ctx, seatQ, idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var bid uint64
		var rowLabel string
		var seatNum uint32
		if err := srows.Scan(&bid, &rowLabel, &seatNum); err != nil {
			return nil, err
		}
		if i, ok := index[bid]; ok {
			out[i].SeatLabels = append(out[i].SeatLabels, model.Seat{RowLabel: rowLabel, SeatNumber: seatNum}.Label())
		}
	}
	return out, srows.Err()
}
