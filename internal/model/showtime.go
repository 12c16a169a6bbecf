package model

import "time"

// Showtime represents a scheduled screening of a movie at a theater.
// A theater hosts at most one showtime per (date, start time); the
// database enforces this with a unique key.  Prices are stored in
// cents.  StudentPriceCents applies when a booking requests the
// student discount.
//
// Fields:
//  ID                – primary key identifier.
//  TheaterID         – theater hosting the screening.
//  MovieID           – opaque identifier of the movie in the external catalog.
//  ShowDate          – calendar date of the screening ("2006-01-02").
//  StartTime         – start time of the screening ("15:04").
//  PriceCents        – regular ticket price in cents.
//  StudentPriceCents – discounted ticket price in cents.
//  IsActive          – whether bookings are currently accepted.
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – last update timestamp.
type Showtime struct {
	ID                uint64    // showtimes.id
	TheaterID         uint64    // showtimes.theater_id
	MovieID           uint64    // showtimes.movie_id
	ShowDate          string    // showtimes.show_date (DATE, "YYYY-MM-DD")
	StartTime         string    // showtimes.start_time (TIME, "HH:MM")
	PriceCents        uint32    // showtimes.price_cents
	StudentPriceCents uint32    // showtimes.student_price_cents
	IsActive          bool      // showtimes.is_active
	CreatedAt         time.Time // showtimes.created_at
	UpdatedAt         time.Time // showtimes.updated_at
}

// TicketPriceCents returns the per-seat price for this showtime given
// whether the student discount applies.
func (s *Showtime) TicketPriceCents(discount bool) uint32 {
	if discount {
		return s.StudentPriceCents
	}
	return s.PriceCents
}
