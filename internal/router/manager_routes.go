package router

import (
	"github.com/labstack/echo/v4"

	"github.com/movietix/booking-api/internal/handler"
	"github.com/movietix/booking-api/internal/middleware"
)

// RegisterManager registers the staff-only endpoints for theater and
// showtime management.  Routes require a valid JWT with the MANAGER or
// ADMIN role; per-theater ownership is checked in the handlers.
func RegisterManager(e *echo.Echo, h *handler.ManagerHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireStaff(),
	)
	g.POST("/theaters", h.CreateTheater)
	g.GET("/theaters", h.ListTheaters)
	g.GET("/theaters/:id/bookings", h.TheaterBookings)
	g.POST("/showtimes", h.CreateShowtime)
	g.PATCH("/showtimes/:id", h.UpdateShowtime)
}
