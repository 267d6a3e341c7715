// Package remote holds the HTTP plumbing shared by the detection and
// generation clients: JSON round-trips with a bounded retry budget, the
// service error taxonomy, and a liveness probe. Connection failures and
// timeouts are retried with linear backoff; a non-success HTTP response is
// surfaced immediately as a *StatusError and never retried.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a stateless JSON HTTP client. Safe for concurrent use.
type Client struct {
	service    string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
}

// NewClient builds a client for one named service. maxRetries is the number
// of retries after the initial attempt; backoff grows linearly per attempt.
func NewClient(service string, timeout time.Duration, maxRetries int, backoff time.Duration) *Client {
	return &Client{
		service:    service,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		backoff:    backoff,
	}
}

// PostJSON marshals body, POSTs it to url, and decodes the JSON response into
// out. Transport errors are retried; non-2xx responses return *StatusError.
func (c *Client) PostJSON(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	attempts := c.maxRetries + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return &UnavailableError{Service: c.service, Attempts: attempt, Err: ctx.Err()}
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			_ = resp.Body.Close()
			return &StatusError{Service: c.service, StatusCode: resp.StatusCode, Body: string(errBody)}
		}

		decodeErr := json.NewDecoder(resp.Body).Decode(out)
		if cerr := resp.Body.Close(); decodeErr == nil && cerr != nil {
			decodeErr = cerr
		}
		if decodeErr != nil {
			return fmt.Errorf("failed to decode %s response: %w", c.service, decodeErr)
		}
		return nil
	}

	return &UnavailableError{Service: c.service, Attempts: attempts, Err: lastErr}
}

// Probe is a fast liveness check: GET url with its own short timeout,
// true only on a 2xx response. It never returns an error.
func Probe(ctx context.Context, url string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}
