package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movietix/booking-api/internal/model"
	"github.com/movietix/booking-api/internal/utils"
)

const testSecret = "test-secret"

func doRequest(t *testing.T, mw []echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, handler(c))
	return rec, c
}

func TestJWTAuth(t *testing.T) {
	t.Run("valid token populates context", func(t *testing.T) {
		tok, err := utils.NewAccessToken(testSecret, 42, string(model.RoleCustomer), 15)
		require.NoError(t, err)

		rec, c := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "Bearer "+tok.Token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, uint64(42), c.Get(CtxUserID))
		assert.Equal(t, model.RoleCustomer, c.Get(CtxRole))
	})

	t.Run("missing header", func(t *testing.T) {
		rec, _ := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok, err := utils.NewAccessToken("other-secret", 42, string(model.RoleCustomer), 15)
		require.NoError(t, err)
		rec, _ := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "Bearer "+tok.Token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown role claim", func(t *testing.T) {
		tok, err := utils.NewAccessToken(testSecret, 42, "OWNER", 15)
		require.NoError(t, err)
		rec, _ := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "Bearer "+tok.Token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	token := func(role model.Role) string {
		tok, err := utils.NewAccessToken(testSecret, 1, string(role), 15)
		require.NoError(t, err)
		return "Bearer " + tok.Token
	}

	tests := []struct {
		name       string
		role       model.Role
		mw         echo.MiddlewareFunc
		wantStatus int
	}{
		{"customer on customer route", model.RoleCustomer, RequireRole(model.RoleCustomer), http.StatusOK},
		{"customer on staff route", model.RoleCustomer, RequireStaff(), http.StatusForbidden},
		{"manager on staff route", model.RoleManager, RequireStaff(), http.StatusOK},
		{"admin on staff route", model.RoleAdmin, RequireStaff(), http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, _ := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret), tc.mw}, token(tc.role))
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestRequireRoleWithoutAuth(t *testing.T) {
	rec, _ := doRequest(t, []echo.MiddlewareFunc{RequireStaff()}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
