package router

import (
	"github.com/labstack/echo/v4"

	"github.com/movietix/booking-api/internal/handler"
	"github.com/movietix/booking-api/internal/middleware"
	"github.com/movietix/booking-api/internal/model"
)

// RegisterCustomer registers the booking lifecycle endpoints under /v1.
// All routes require a valid JWT; any authenticated role may book.
// Staff use the same cancel endpoint to cancel arbitrary bookings, with
// the finer authorization rules enforced inside the ledger.
func RegisterCustomer(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleManager, model.RoleAdmin),
		limit,
	)
	g.POST("/bookings", h.Create)
	g.POST("/bookings/:id/confirm", h.Confirm)
	g.POST("/bookings/:id/cancel", h.Cancel)
	g.GET("/bookings/:id", h.Get)
	g.GET("/my-bookings", h.ListMine)
}
