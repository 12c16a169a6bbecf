package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/movietix/booking-api/internal/cache"
	"github.com/movietix/booking-api/internal/ledger"
	"github.com/movietix/booking-api/internal/repository"
)

// BookingHandler exposes the booking lifecycle over HTTP.  All mutating
// endpoints delegate the transactional work to the ledger; the handler
// only parses the request, runs the operation and maps errors to status
// codes.  Seat availability cache entries are invalidated whenever an
// operation can change occupancy.
type BookingHandler struct {
	Ledger   *ledger.Ledger
	Bookings *repository.BookingRepo
	Cache    *cache.Availability
}

// NewBookingHandler constructs a BookingHandler.  Cache may be nil.
func NewBookingHandler(l *ledger.Ledger, bookings *repository.BookingRepo, av *cache.Availability) *BookingHandler {
	if l == nil || bookings == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Ledger: l, Bookings: bookings, Cache: av}
}

// Create handles POST /v1/bookings.  The body names a showtime, the
// requested seats and whether the student discount should apply.  On
// success it returns 201 with the pending booking and the payment
// client secret the customer completes the charge with.
func (h *BookingHandler) Create(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		ShowtimeID        uint64   `json:"showtime_id"`
		SeatIDs           []uint64 `json:"seat_ids"`
		DiscountRequested bool     `json:"discount_requested"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ShowtimeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "showtime_id is required"})
	}

	b, clientSecret, err := h.Ledger.CreateBooking(c.Request().Context(), actor, body.ShowtimeID, body.SeatIDs, body.DiscountRequested)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, toBookingResponse(b, clientSecret))
}

// Confirm handles POST /v1/bookings/:id/confirm.  It verifies the
// payment with the gateway and flips the booking to confirmed, claiming
// the seats.  A lost seat race cancels the booking and surfaces 409
// with the contested seats.
func (h *BookingHandler) Confirm(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	b, err := h.Ledger.ConfirmBooking(c.Request().Context(), actor, id)
	if err != nil {
		return bookingError(c, err)
	}
	h.Cache.Invalidate(c.Request().Context(), b.ShowtimeID)
	return c.JSON(http.StatusOK, toBookingResponse(b, ""))
}

// Cancel handles POST /v1/bookings/:id/cancel.  Owners may cancel their
// own pending bookings; cancelling a confirmed booking frees its seats
// and is restricted to staff inside the ledger.
func (h *BookingHandler) Cancel(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	b, err := h.Ledger.CancelBooking(c.Request().Context(), actor, id)
	if err != nil {
		return bookingError(c, err)
	}
	h.Cache.Invalidate(c.Request().Context(), b.ShowtimeID)
	return c.JSON(http.StatusOK, toBookingResponse(b, ""))
}

// Get handles GET /v1/bookings/:id.  Customers see only their own
// bookings; staff may inspect any.
func (h *BookingHandler) Get(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	b, err := h.Ledger.Booking(c.Request().Context(), actor, id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b, ""))
}

// ListMine handles GET /v1/my-bookings.  It returns all bookings created
// by the current user, newest first, with seat labels resolved.
func (h *BookingHandler) ListMine(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListByUser(c.Request().Context(), actor.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
