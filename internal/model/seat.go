package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Seat describes an addressable seat in the shared catalogue.  Seats
// are identified by row label and number and are reused across all
// showtimes; occupancy is tracked per showtime through bookings, not
// on the seat itself.  The default catalogue spans rows A–F with
// eight seats per row.
//
// Fields:
//  ID         – primary key identifier.
//  RowLabel   – letter designating the row (A, B, ... AA for large rooms).
//  SeatNumber – number of the seat within the row, starting at 1.
//  CreatedAt  – creation timestamp.
type Seat struct {
	ID         uint64    // seats.id
	RowLabel   string    // seats.row_label
	SeatNumber uint32    // seats.seat_number
	CreatedAt  time.Time // seats.created_at
}

// Label renders the display form of the seat, e.g. "A1" or "F8".
func (s Seat) Label() string {
	return fmt.Sprintf("%s%d", s.RowLabel, s.SeatNumber)
}

// ParseSeatLabel splits a display label like "A1" into its row label
// and seat number.  The row label is normalized to upper case.  It
// returns false when the label has no row letters, no trailing
// number, or a non-positive number.
func ParseSeatLabel(label string) (row string, number uint32, ok bool) {
	s := strings.ToUpper(strings.TrimSpace(label))
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(s) {
		return "", 0, false
	}
	n, err := strconv.ParseUint(s[i:], 10, 32)
	if err != nil || n == 0 {
		return "", 0, false
	}
	return s[:i], uint32(n), true
}

// RowLabelForIndex converts a zero-based row index to an alphabetical
// label: 0 -> A, 25 -> Z, 26 -> AA.  Used when seeding the seat
// catalogue.
func RowLabelForIndex(i int) string {
	if i < 0 {
		return ""
	}
	var res []rune
	for {
		res = append(res, rune('A'+i%26))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}
