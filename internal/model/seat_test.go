package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeatLabelRoundTrip(t *testing.T) {
	tests := []struct {
		label  string
		row    string
		number uint32
		ok     bool
	}{
		{"A1", "A", 1, true},
		{"f8", "F", 8, true},
		{"AA12", "AA", 12, true},
		{" b3 ", "B", 3, true},
		{"A0", "", 0, false},
		{"7", "", 0, false},
		{"A", "", 0, false},
		{"", "", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.label, func(t *testing.T) {
			row, n, ok := ParseSeatLabel(tc.label)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.row, row)
			assert.Equal(t, tc.number, n)
		})
	}

	assert.Equal(t, "A1", Seat{RowLabel: "A", SeatNumber: 1}.Label())
	assert.Equal(t, "AA12", Seat{RowLabel: "AA", SeatNumber: 12}.Label())
}

func TestRowLabelForIndex(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "A"},
		{5, "F"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
		{-1, ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, RowLabelForIndex(tc.index))
	}
}

func TestRoleChecks(t *testing.T) {
	assert.True(t, RoleCustomer.Valid())
	assert.True(t, RoleManager.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("OWNER").Valid())
	assert.False(t, Role("").Valid())

	assert.False(t, RoleCustomer.Staff())
	assert.True(t, RoleManager.Staff())
	assert.True(t, RoleAdmin.Staff())
	assert.False(t, Role("OWNER").Staff())
}

func TestTicketPriceCents(t *testing.T) {
	s := &Showtime{PriceCents: 1000, StudentPriceCents: 800}
	assert.Equal(t, uint32(1000), s.TicketPriceCents(false))
	assert.Equal(t, uint32(800), s.TicketPriceCents(true))
}

func TestBookingStatusValid(t *testing.T) {
	assert.True(t, BookingPending.Valid())
	assert.True(t, BookingConfirmed.Valid())
	assert.True(t, BookingCancelled.Valid())
	assert.False(t, BookingStatus("held").Valid())
}
