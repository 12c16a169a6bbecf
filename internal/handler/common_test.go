package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movietix/booking-api/internal/ledger"
	"github.com/movietix/booking-api/internal/middleware"
	"github.com/movietix/booking-api/internal/model"
)

func TestBookingErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", &ledger.NotFoundError{Resource: "booking", ID: 7}, http.StatusNotFound},
		{"invalid request", &ledger.InvalidRequestError{Reason: "unknown seat ids", SeatIDs: []uint64{9}}, http.StatusBadRequest},
		{"seat conflict", &ledger.SeatConflictError{ShowtimeID: 1, SeatIDs: []uint64{1}}, http.StatusConflict},
		{"showtime inactive", ledger.ErrShowtimeInactive, http.StatusConflict},
		{"already confirmed", ledger.ErrAlreadyConfirmed, http.StatusConflict},
		{"already cancelled", ledger.ErrAlreadyCancelled, http.StatusConflict},
		{"payment not confirmed", ledger.ErrPaymentNotConfirmed, http.StatusPaymentRequired},
		{"amount mismatch", ledger.ErrPaymentAmountMismatch, http.StatusPaymentRequired},
		{"unauthorized", ledger.ErrUnauthorized, http.StatusForbidden},
		{"wrapped sentinel", errors.Join(errors.New("ctx"), ledger.ErrPaymentNotConfirmed), http.StatusPaymentRequired},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			require.NoError(t, bookingError(c, tc.err))
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestSeatConflictResponseNamesSeats(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	err := &ledger.SeatConflictError{ShowtimeID: 3, SeatIDs: []uint64{1, 5}}
	require.NoError(t, bookingError(c, err))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"seat conflict","seat_ids":[1,5]}`, rec.Body.String())
}

func TestGetActor(t *testing.T) {
	e := echo.New()

	newCtx := func() echo.Context {
		return e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	}

	t.Run("valid", func(t *testing.T) {
		c := newCtx()
		c.Set(middleware.CtxUserID, uint64(7))
		c.Set(middleware.CtxRole, model.RoleManager)

		actor, err := getActor(c)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), actor.UserID)
		assert.Equal(t, model.RoleManager, actor.Role)
	})

	t.Run("missing identity", func(t *testing.T) {
		_, err := getActor(newCtx())
		assert.Error(t, err)
	})

	t.Run("bad role", func(t *testing.T) {
		c := newCtx()
		c.Set(middleware.CtxUserID, uint64(7))
		c.Set(middleware.CtxRole, model.Role("OWNER"))
		_, err := getActor(c)
		assert.Error(t, err)
	})
}
