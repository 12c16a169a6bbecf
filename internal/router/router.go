package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/movietix/booking-api/internal/handler"
	"github.com/movietix/booking-api/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints.  Register and
// login live under /v1/auth and need no token; /v1/me requires a valid
// access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse endpoints: the
// showtime catalogue and per-showtime seat availability.  No JWT or
// role middleware applies so guests can browse before registering.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/v1", limit)
	g.GET("/showtimes", p.ListShowtimes)
	g.GET("/showtimes/:id", p.GetShowtime)
	g.GET("/showtimes/:id/seats", p.ShowtimeSeats)
}
