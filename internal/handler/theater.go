package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/movietix/booking-api/internal/model"
	"github.com/movietix/booking-api/internal/repository"
)

// ManagerHandler groups the staff-only endpoints for managing theaters
// and showtimes and for inspecting a theater's bookings.  Role
// enforcement happens in middleware; ownership checks happen here.
type ManagerHandler struct {
	Theaters  *repository.TheaterRepo
	Showtimes *repository.ShowtimeRepo
	Bookings  *repository.BookingRepo
}

// NewManagerHandler constructs a ManagerHandler.  All dependencies must
// be non-nil.
func NewManagerHandler(theaters *repository.TheaterRepo, showtimes *repository.ShowtimeRepo, bookings *repository.BookingRepo) *ManagerHandler {
	if theaters == nil || showtimes == nil || bookings == nil {
		panic("nil repository passed to NewManagerHandler")
	}
	return &ManagerHandler{Theaters: theaters, Showtimes: showtimes, Bookings: bookings}
}

// CreateTheater handles POST /v1/theaters.  The creating manager becomes
// the theater's manager; admins may create unmanaged theaters the same
// way and reassign later.
func (h *ManagerHandler) CreateTheater(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Name       string `json:"name"`
		Location   string `json:"location"`
		TotalSeats uint32 `json:"total_seats"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if body.TotalSeats == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "total_seats must be positive"})
	}

	t := &model.Theater{
		Name:       body.Name,
		Location:   body.Location,
		TotalSeats: body.TotalSeats,
		ManagerID:  &actor.UserID,
	}
	if err := h.Theaters.Create(c.Request().Context(), t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create theater"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": t})
}

// ListTheaters handles GET /v1/theaters for staff.
func (h *ManagerHandler) ListTheaters(c echo.Context) error {
	items, err := h.Theaters.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load theaters"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreateShowtime handles POST /v1/showtimes.  A theater can host at most
// one showtime per (date, start_time); a duplicate slot yields 409.
func (h *ManagerHandler) CreateShowtime(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		TheaterID         uint64 `json:"theater_id"`
		MovieID           uint64 `json:"movie_id"`
		ShowDate          string `json:"show_date"`
		StartTime         string `json:"start_time"`
		PriceCents        uint32 `json:"price_cents"`
		StudentPriceCents uint32 `json:"student_price_cents"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.TheaterID == 0 || body.MovieID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "theater_id and movie_id are required"})
	}
	if _, err := time.Parse("2006-01-02", body.ShowDate); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "show_date must be YYYY-MM-DD"})
	}
	if _, err := time.Parse("15:04", body.StartTime); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time must be HH:MM"})
	}
	if body.PriceCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_cents must be positive"})
	}
	if body.StudentPriceCents == 0 {
		body.StudentPriceCents = body.PriceCents
	}

	ctx := c.Request().Context()
	if err := h.requireTheater(c, actor.UserID, actor.Role, body.TheaterID); err != nil {
		return err
	}

	s := &model.Showtime{
		TheaterID:         body.TheaterID,
		MovieID:           body.MovieID,
		ShowDate:          body.ShowDate,
		StartTime:         body.StartTime,
		PriceCents:        body.PriceCents,
		StudentPriceCents: body.StudentPriceCents,
		IsActive:          true,
	}
	if err := h.Showtimes.Create(ctx, s); err != nil {
		if errors.Is(err, repository.ErrDuplicateShowtime) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "showtime slot already scheduled"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create showtime"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": s})
}

// UpdateShowtime handles PATCH /v1/showtimes/:id.  Only prices and the
// is_active flag may change; price updates never touch existing
// bookings, whose totals were snapshotted at creation.
func (h *ManagerHandler) UpdateShowtime(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	var body struct {
		PriceCents        *uint32 `json:"price_cents"`
		StudentPriceCents *uint32 `json:"student_price_cents"`
		IsActive          *bool   `json:"is_active"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.PriceCents == nil && body.StudentPriceCents == nil && body.IsActive == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}

	ctx := c.Request().Context()
	existing, err := h.Showtimes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if err := h.requireTheater(c, actor.UserID, actor.Role, existing.TheaterID); err != nil {
		return err
	}

	s, err := h.Showtimes.Update(ctx, id, body.PriceCents, body.StudentPriceCents, body.IsActive)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update showtime"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": s})
}

// TheaterBookings handles GET /v1/theaters/:id/bookings.  Managers may
// only inspect theaters they manage; admins see any theater.
func (h *ManagerHandler) TheaterBookings(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid theater id"})
	}
	if err := h.requireTheater(c, actor.UserID, actor.Role, id); err != nil {
		return err
	}

	items, err := h.Bookings.ListByTheater(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// requireTheater verifies the theater exists and that the caller may act
// on it.  A nil return means the request may proceed; otherwise the
// response has been written.
func (h *ManagerHandler) requireTheater(c echo.Context, userID uint64, role model.Role, theaterID uint64) error {
	ctx := c.Request().Context()
	if _, err := h.Theaters.GetByID(ctx, theaterID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "theater not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if role == model.RoleAdmin {
		return nil
	}
	ok, err := h.Theaters.ManagerOf(ctx, theaterID, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return nil
}
