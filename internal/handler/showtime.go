package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/movietix/booking-api/internal/cache"
	"github.com/movietix/booking-api/internal/ledger"
	"github.com/movietix/booking-api/internal/repository"
)

// PublicHandler serves the unauthenticated browse endpoints: showtime
// listings and per-showtime seat availability.  Availability answers are
// cached in Redis with a short TTL; the booking flow never trusts the
// cache and re-checks inside its own transaction.
type PublicHandler struct {
	Showtimes *repository.ShowtimeRepo
	Ledger    *ledger.Ledger
	Cache     *cache.Availability
}

// NewPublicHandler constructs a PublicHandler.  Cache may be nil.
func NewPublicHandler(showtimes *repository.ShowtimeRepo, l *ledger.Ledger, av *cache.Availability) *PublicHandler {
	if showtimes == nil || l == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	return &PublicHandler{Showtimes: showtimes, Ledger: l, Cache: av}
}

// ListShowtimes handles GET /v1/showtimes.  Optional query parameters
// movie_id and date (YYYY-MM-DD) narrow the listing.  Inactive showtimes
// are included so clients can render sold-out or closed slots; the
// is_active flag tells them apart.
func (h *PublicHandler) ListShowtimes(c echo.Context) error {
	var movieID uint64
	if raw := c.QueryParam("movie_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || n == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie_id"})
		}
		movieID = n
	}
	date := c.QueryParam("date")

	items, err := h.Showtimes.List(c.Request().Context(), movieID, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load showtimes"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetShowtime handles GET /v1/showtimes/:id.
func (h *PublicHandler) GetShowtime(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	s, err := h.Showtimes.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": s})
}

// ShowtimeSeats handles GET /v1/showtimes/:id/seats.  It returns the
// free seat count and the free seat labels ordered by (row, number).
// Answers are served from the availability cache when fresh.
func (h *PublicHandler) ShowtimeSeats(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	ctx := c.Request().Context()

	if count, labels, ok := h.Cache.Get(ctx, id); ok {
		return c.JSON(http.StatusOK, echo.Map{
			"available": count,
			"seats":     labels,
		})
	}

	count, err := h.Ledger.AvailableSeatCount(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}
	seats, err := h.Ledger.AvailableSeats(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}
	labels := make([]string, 0, len(seats))
	for _, s := range seats {
		labels = append(labels, s.Label())
	}

	h.Cache.Set(ctx, id, count, labels)
	return c.JSON(http.StatusOK, echo.Map{
		"available": count,
		"seats":     labels,
	})
}
