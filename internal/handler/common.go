package handler // handler defines http handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/movietix/booking-api/internal/ledger"
	"github.com/movietix/booking-api/internal/middleware"
	"github.com/movietix/booking-api/internal/model"
)

// getActor extracts the authenticated identity placed in the context by
// the JWT middleware.  Handlers behind JWTAuth can rely on both values
// being present; anything else is treated as unauthenticated.
func getActor(c echo.Context) (ledger.Actor, error) {
	id, ok := c.Get(middleware.CtxUserID).(uint64)
	if !ok || id == 0 {
		return ledger.Actor{}, errors.New("invalid user_id in context")
	}
	role, ok := c.Get(middleware.CtxRole).(model.Role)
	if !ok || !role.Valid() {
		return ledger.Actor{}, errors.New("invalid role in context")
	}
	return ledger.Actor{UserID: id, Role: role}, nil
}

// bookingError translates ledger errors into HTTP responses.  Conflict
// style failures carry enough detail for the client to retry with a
// different seat selection.
func bookingError(c echo.Context, err error) error {
	var nf *ledger.NotFoundError
	if errors.As(err, &nf) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": nf.Error()})
	}
	var ir *ledger.InvalidRequestError
	if errors.As(err, &ir) {
		resp := echo.Map{"error": ir.Reason}
		if len(ir.SeatIDs) > 0 {
			resp["seat_ids"] = ir.SeatIDs
		}
		return c.JSON(http.StatusBadRequest, resp)
	}
	var sc *ledger.SeatConflictError
	if errors.As(err, &sc) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":    "seat conflict",
			"seat_ids": sc.SeatIDs,
		})
	}
	switch {
	case errors.Is(err, ledger.ErrShowtimeInactive):
		return c.JSON(http.StatusConflict, echo.Map{"error": "showtime is not active"})
	case errors.Is(err, ledger.ErrAlreadyConfirmed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking already confirmed"})
	case errors.Is(err, ledger.ErrAlreadyCancelled):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking already cancelled"})
	case errors.Is(err, ledger.ErrPaymentNotConfirmed):
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "payment not confirmed"})
	case errors.Is(err, ledger.ErrPaymentAmountMismatch):
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "payment amount mismatch"})
	case errors.Is(err, ledger.ErrUnauthorized):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// bookingResponse is the JSON shape returned for a single booking.
type bookingResponse struct {
	ID              uint64   `json:"id"`
	ShowtimeID      uint64   `json:"showtime_id"`
	Status          string   `json:"status"`
	TotalPriceCents uint32   `json:"total_price_cents"`
	Reference       string   `json:"reference"`
	DiscountApplied bool     `json:"discount_applied"`
	SeatIDs         []uint64 `json:"seat_ids"`
	ClientSecret    string   `json:"client_secret,omitempty"`
}

func toBookingResponse(b *model.Booking, clientSecret string) bookingResponse {
	return bookingResponse{
		ID:              b.ID,
		ShowtimeID:      b.ShowtimeID,
		Status:          string(b.Status),
		TotalPriceCents: b.TotalPriceCents,
		Reference:       b.Reference,
		DiscountApplied: b.DiscountApplied,
		SeatIDs:         b.SeatIDs,
		ClientSecret:    clientSecret,
	}
}
