package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(url string) *Client {
	return NewClient(url, time.Second, 3, time.Millisecond)
}

func TestCreateIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			AmountCents uint32 `json:"amount_cents"`
			Reference   string `json:"reference"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, uint32(2000), body.AmountCents)
		assert.Equal(t, "ref123", body.Reference)

		json.NewEncoder(w).Encode(Intent{PaymentID: "pi_1", ClientSecret: "cs_1"})
	}))
	defer srv.Close()

	intent, err := testClient(srv.URL).CreateIntent(context.Background(), 2000, "ref123")
	require.NoError(t, err)
	assert.Equal(t, "pi_1", intent.PaymentID)
	assert.Equal(t, "cs_1", intent.ClientSecret)
}

func TestCreateIntentRejectsMissingPaymentID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).CreateIntent(context.Background(), 100, "r")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no payment_id")
}

func TestStatusRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pi_1", r.URL.Path)
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(Status{State: "succeeded", AmountCents: 2000})
	}))
	defer srv.Close()

	st, err := testClient(srv.URL).Status(context.Background(), "pi_1")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.True(t, st.Succeeded())
	assert.Equal(t, uint32(2000), st.AmountCents)
}

func TestStatusExhaustsRetryBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Status(context.Background(), "pi_1")
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestStatusClientErrorIsTerminal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("no such payment"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Status(context.Background(), "pi_missing")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
	assert.Contains(t, err.Error(), "404")
}

func TestStatusStateMapping(t *testing.T) {
	tests := []struct {
		state string
		want  bool
	}{
		{"succeeded", true},
		{"confirmed", true},
		{"pending", false},
		{"failed", false},
		{"", false},
	}
	for _, tc := range tests {
		t.Run("state "+tc.state, func(t *testing.T) {
			assert.Equal(t, tc.want, Status{State: tc.state}.Succeeded())
		})
	}
}
