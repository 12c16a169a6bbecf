package model

import "time"

// Theater represents a cinema venue.  Capacity (TotalSeats) is treated
// as fixed once showtimes have been scheduled against the theater;
// availability arithmetic depends on it never shrinking below the
// number of confirmed seats.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – display name of the theater.
//  Location   – street address or short location string.
//  TotalSeats – fixed seat capacity of the auditorium.
//  ManagerID  – user ID of the managing account (nil when unassigned).
//  CreatedAt  – timestamp when the theater was created.
//  UpdatedAt  – timestamp of last update.
type Theater struct {
	ID         uint64    // theaters.id
	Name       string    // theaters.name
	Location   string    // theaters.location
	TotalSeats uint32    // theaters.total_seats
	ManagerID  *uint64   // theaters.manager_id (nullable)
	CreatedAt  time.Time // theaters.created_at
	UpdatedAt  time.Time // theaters.updated_at
}
