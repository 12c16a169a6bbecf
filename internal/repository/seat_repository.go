package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/movietix/booking-api/internal/model"
)

// SeatRepo provides access to the global seat catalogue. Seats are
// shared across all showtimes; a seat identity is bound to a showtime
// only through a booking.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a SeatRepo bound to the given database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// EnsureCatalogue seeds the seat catalogue with rows × cols seats if
// it is empty. INSERT IGNORE keeps the call idempotent across
// concurrent startups; the (row_label, seat_number) unique key
// swallows duplicates.
func (r *SeatRepo) EnsureCatalogue(ctx context.Context, rowCount, cols int) error {
	if rowCount <= 0 || cols <= 0 {
		return nil
	}
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seats`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	query := `INSERT IGNORE INTO seats (row_label, seat_number) VALUES `
	args := make([]interface{}, 0, rowCount*cols*2)
	for ri := 0; ri < rowCount; ri++ {
		label := model.RowLabelForIndex(ri)
		for num := 1; num <= cols; num++ {
			if len(args) > 0 {
				query += ","
			}
			query += "(?, ?)"
			args = append(args, label, num)
		}
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// ListTx returns the full catalogue ordered by (row, number) inside
// the caller's transaction.
func (r *SeatRepo) ListTx(ctx context.Context, tx *sql.Tx) ([]model.Seat, error) {
	const q = `SELECT id, row_label, seat_number, created_at FROM seats ORDER BY row_label, seat_number`
	rows, err := tx.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSeats(rows)
}

// ByIDsTx returns the named seats ordered by (row, number). Missing
// ids are silently absent from the result; use MissingTx to detect
// them.
func (r *SeatRepo) ByIDsTx(ctx context.Context, tx *sql.Tx, seatIDs []uint64) ([]model.Seat, error) {
	if len(seatIDs) == 0 {
		return []model.Seat{}, nil
	}
	q := `SELECT id, row_label, seat_number, created_at FROM seats WHERE id IN (` +
		placeholders(len(seatIDs)) + `) ORDER BY row_label, seat_number`
	rows, err := tx.QueryContext(ctx, q, idArgs(seatIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSeats(rows)
}

// MissingTx returns the subset of seatIDs with no catalogue row.
func (r *SeatRepo) MissingTx(ctx context.Context, tx *sql.Tx, seatIDs []uint64) ([]uint64, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}
	q := `SELECT id FROM seats WHERE id IN (` + placeholders(len(seatIDs)) + `)`
	rows, err := tx.QueryContext(ctx, q, idArgs(seatIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	found := make(map[uint64]struct{}, len(seatIDs))
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var missing []uint64
	for _, id := range seatIDs {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func scanSeats(rows *sql.Rows) ([]model.Seat, error) {
	out := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.RowLabel, &s.SeatNumber, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// placeholders builds "?, ?, ?" for n parameters.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

func idArgs(ids []uint64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
