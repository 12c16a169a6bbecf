// Package payment implements the HTTP client for the external payment
// gateway. The gateway is opaque to the rest of the service beyond
// two calls: creating a payment intent for an amount, and querying
// the status and amount of an existing payment. Transient failures
// are retried here with bounded attempts so callers see a single
// error after the budget is exhausted.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Intent is the gateway's answer to a create-intent request. The
// client secret is forwarded to the end user so they can complete
// payment directly with the gateway.
type Intent struct {
	PaymentID    string `json:"payment_id"`
	ClientSecret string `json:"client_secret"`
}

// Status reports the current state of a payment. Only State
// "succeeded" (or the legacy alias "confirmed") is trusted, and the
// amount must be cross-checked against the booking total by the
// caller.
type Status struct {
	State       string `json:"status"`
	AmountCents uint32 `json:"amount_cents"`
}

// Succeeded reports whether the payment went through.
func (s Status) Succeeded() bool {
	return s.State == "succeeded" || s.State == "confirmed"
}

// Client talks to the gateway over its REST contract:
//
//	POST {base}/       {"amount_cents":..., "reference":...} -> Intent
//	GET  {base}/{id}                                          -> Status
type Client struct {
	baseURL  string
	httpc    *http.Client
	attempts int
	backoff  time.Duration
}

// NewClient builds a Client. attempts is the total number of tries
// per call (minimum 1); backoff is the initial delay between tries
// and doubles after each failure.
func NewClient(baseURL string, timeout time.Duration, attempts int, backoff time.Duration) *Client {
	if attempts < 1 {
		attempts = 1
	}
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		httpc:    &http.Client{Timeout: timeout},
		attempts: attempts,
		backoff:  backoff,
	}
}

// CreateIntent registers a payment of amountCents with the gateway,
// tagged with the booking reference for reconciliation.
func (c *Client) CreateIntent(ctx context.Context, amountCents uint32, reference string) (Intent, error) {
	body, err := json.Marshal(map[string]any{
		"amount_cents": amountCents,
		"reference":    reference,
	})
	if err != nil {
		return Intent{}, err
	}
	var intent Intent
	err = c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, &intent)
	if err != nil {
		return Intent{}, fmt.Errorf("create payment intent: %w", err)
	}
	if intent.PaymentID == "" {
		return Intent{}, fmt.Errorf("create payment intent: gateway returned no payment_id")
	}
	return intent, nil
}

// Status fetches the current state of the payment.
func (c *Client) Status(ctx context.Context, paymentID string) (Status, error) {
	var st Status
	err := c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+paymentID, nil)
	}, &st)
	if err != nil {
		return Status{}, fmt.Errorf("payment status %s: %w", paymentID, err)
	}
	return st, nil
}

// do executes the request with retries. Network errors and 5xx
// responses are retried with doubling backoff; 4xx responses are
// terminal since retrying cannot change the outcome.
func (c *Client) do(ctx context.Context, build func() (*http.Request, error), out any) error {
	var lastErr error
	delay := c.backoff
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		req, err := build()
		if err != nil {
			return err
		}
		resp, err := c.httpc.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		switch {
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("gateway returned %d", resp.StatusCode)
			continue
		case resp.StatusCode >= 400:
			return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode gateway response: %w", err)
		}
		return nil
	}
	return lastErr
}
