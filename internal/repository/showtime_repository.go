package repository

import (
	"context"
	"database/sql"

	"github.com/movietix/booking-api/internal/model"
)

// ShowtimeRepo manages persistence for showtimes. The showtimes table
// carries a unique key on (theater_id, show_date, start_time) so a
// theater can host at most one screening per slot.
type ShowtimeRepo struct {
	db *sql.DB
}

// NewShowtimeRepo constructs a ShowtimeRepo with the given DB handle.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo { return &ShowtimeRepo{db: db} }

// DB exposes the underlying sql.DB so callers can begin transactions
// spanning multiple repositories.
func (r *ShowtimeRepo) DB() *sql.DB { return r.db }

const showtimeCols = `id, theater_id, movie_id, show_date, start_time,
	price_cents, student_price_cents, is_active, created_at, updated_at`

func scanShowtime(row *sql.Row) (*model.Showtime, error) {
	var s model.Showtime
	err := row.Scan(
		&s.ID, &s.TheaterID, &s.MovieID, &s.ShowDate, &s.StartTime,
		&s.PriceCents, &s.StudentPriceCents, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new showtime and populates generated fields on s.
// A slot collision returns ErrDuplicateShowtime.
func (r *ShowtimeRepo) Create(ctx context.Context, s *model.Showtime) error {
	const q = `INSERT INTO showtimes (theater_id, movie_id, show_date, start_time, price_cents, student_price_cents, is_active)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.TheaterID, s.MovieID, s.ShowDate, s.StartTime, s.PriceCents, s.StudentPriceCents, s.IsActive)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrDuplicateShowtime
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM showtimes WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, s.ID).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// GetByID returns a showtime or sql.ErrNoRows.
func (r *ShowtimeRepo) GetByID(ctx context.Context, id uint64) (*model.Showtime, error) {
	return scanShowtime(r.db.QueryRowContext(ctx,
		`SELECT `+showtimeCols+` FROM showtimes WHERE id = ?`, id))
}

// GetTx returns a showtime inside the caller's transaction, without
// locking the row.
func (r *ShowtimeRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Showtime, error) {
	return scanShowtime(tx.QueryRowContext(ctx,
		`SELECT `+showtimeCols+` FROM showtimes WHERE id = ?`, id))
}

// GetForUpdateTx returns a showtime under a row lock. The lock is the
// serialization point for all availability arithmetic on that
// showtime and is held until the caller's transaction ends.
func (r *ShowtimeRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Showtime, error) {
	return scanShowtime(tx.QueryRowContext(ctx,
		`SELECT `+showtimeCols+` FROM showtimes WHERE id = ? FOR UPDATE`, id))
}

// List returns showtimes, optionally filtered by movie and/or date,
// ordered by date then time for stable display.
func (r *ShowtimeRepo) List(ctx context.Context, movieID uint64, date string) ([]model.Showtime, error) {
	q := `SELECT ` + showtimeCols + ` FROM showtimes WHERE 1=1`
	args := make([]interface{}, 0, 2)
	if movieID != 0 {
		q += ` AND movie_id = ?`
		args = append(args, movieID)
	}
	if date != "" {
		q += ` AND show_date = ?`
		args = append(args, date)
	}
	q += ` ORDER BY show_date, start_time`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Showtime, 0)
	for rows.Next() {
		var s model.Showtime
		if err := rows.Scan(
			&s.ID, &s.TheaterID, &s.MovieID, &s.ShowDate, &s.StartTime,
			&s.PriceCents, &s.StudentPriceCents, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Update applies price and active-flag changes. It returns
// sql.ErrNoRows when the showtime does not exist. Existing bookings
// are unaffected since their totals were snapshotted at creation.
func (r *ShowtimeRepo) Update(ctx context.Context, id uint64, priceCents, studentPriceCents *uint32, isActive *bool) (*model.Showtime, error) {
	q := `UPDATE showtimes SET id = id`
	args := make([]interface{}, 0, 4)
	if priceCents != nil {
		q += `, price_cents = ?`
		args = append(args, *priceCents)
	}
	if studentPriceCents != nil {
		q += `, student_price_cents = ?`
		args = append(args, *studentPriceCents)
	}
	if isActive != nil {
		q += `, is_active = ?`
		args = append(args, *isActive)
	}
	q += ` WHERE id = ?`
	args = append(args, id)
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Either missing or unchanged; distinguish by re-reading.
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}
