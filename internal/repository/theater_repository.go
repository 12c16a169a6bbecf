package repository

import (
	"context"
	"database/sql"

	"github.com/movietix/booking-api/internal/model"
)

// TheaterRepo provides persistence for theaters. Capacity lives on
// the theater row and is read under the booking transactions when
// computing availability.
type TheaterRepo struct {
	db *sql.DB
}

// NewTheaterRepo returns a TheaterRepo bound to the given database.
func NewTheaterRepo(db *sql.DB) *TheaterRepo { return &TheaterRepo{db: db} }

// Create inserts a new theater and populates the generated ID and
// timestamps on the passed struct.
func (r *TheaterRepo) Create(ctx context.Context, t *model.Theater) error {
	const q = `INSERT INTO theaters (name, location, total_seats, manager_id) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, t.Name, t.Location, t.TotalSeats, t.ManagerID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM theaters WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, t.ID).Scan(&t.CreatedAt, &t.UpdatedAt)
}

// GetByID returns a theater or sql.ErrNoRows when it does not exist.
func (r *TheaterRepo) GetByID(ctx context.Context, id uint64) (*model.Theater, error) {
	const q = `SELECT id, name, location, total_seats, manager_id, created_at, updated_at
	           FROM theaters WHERE id = ?`
	var t model.Theater
	var managerID sql.NullInt64
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&t.ID, &t.Name, &t.Location, &t.TotalSeats, &managerID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if managerID.Valid {
		mid := uint64(managerID.Int64)
		t.ManagerID = &mid
	}
	return &t, nil
}

// List returns all theaters ordered by name.
func (r *TheaterRepo) List(ctx context.Context) ([]model.Theater, error) {
	const q = `SELECT id, name, location, total_seats, manager_id, created_at, updated_at
	           FROM theaters ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Theater, 0)
	for rows.Next() {
		var t model.Theater
		var managerID sql.NullInt64
		if err := rows.Scan(&t.ID, &t.Name, &t.Location, &t.TotalSeats, &managerID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if managerID.Valid {
			mid := uint64(managerID.Int64)
			t.ManagerID = &mid
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CapacityTx reads the theater's total seat count inside the caller's
// transaction. Returns sql.ErrNoRows for an unknown theater.
func (r *TheaterRepo) CapacityTx(ctx context.Context, tx *sql.Tx, theaterID uint64) (uint32, error) {
	const q = `SELECT total_seats FROM theaters WHERE id = ?`
	var capacity uint32
	err := tx.QueryRowContext(ctx, q, theaterID).Scan(&capacity)
	return capacity, err
}

// ManagerOf reports whether userID manages the theater. Admins bypass
// this check at the handler layer.
func (r *TheaterRepo) ManagerOf(ctx context.Context, theaterID, userID uint64) (bool, error) {
	const q = `SELECT manager_id FROM theaters WHERE id = ?`
	var managerID sql.NullInt64
	if err := r.db.QueryRowContext(ctx, q, theaterID).Scan(&managerID); err != nil {
		return false, err
	}
	return managerID.Valid && uint64(managerID.Int64) == userID, nil
}
