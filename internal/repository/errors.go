// Package repository contains the MySQL data access layer. Each
// entity has its own repo with raw SQL; methods suffixed Tx take an
// explicit *sql.Tx so the ledger controls transaction boundaries.
// Sentinel values defined here let higher layers distinguish failure
// modes without parsing driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrEmailTaken is returned when registering a user with an email
// that already exists. Handlers translate this into HTTP 409.
var ErrEmailTaken = errors.New("email already registered")

// ErrDuplicateShowtime is returned when scheduling a showtime that
// collides with an existing (theater, date, start time) slot.
var ErrDuplicateShowtime = errors.New("showtime slot already scheduled")

// isDuplicateEntry reports whether err is a MySQL duplicate-key
// violation (error 1062). The seat_occupancy unique key turns lost
// booking races into this error.
func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
