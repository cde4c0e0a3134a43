// Package httpx wraps net/http with bounded exponential-backoff retries.
// Transient failures (timeouts, connection errors, 5xx) are retried;
// client errors (4xx) propagate immediately and are never retried.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// StatusError reports a non-2xx response after retries are exhausted or a
// non-retryable status was returned.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.URL, e.StatusCode)
}

// Client is an HTTP client with retry policy and optional default headers.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	maxRetries int
	baseDelay  time.Duration
	sleep      func(time.Duration) // injectable for tests
}

// Option configures a Client.
type Option func(*Client)

// WithHeaders sets headers applied to every request.
func WithHeaders(h map[string]string) Option {
	return func(c *Client) { c.headers = h }
}

// WithRetries sets the maximum retry count and the backoff base delay.
func WithRetries(max int, base time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = max
		c.baseDelay = base
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a client with 3 retries and a 1s backoff base.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
		baseDelay:  time.Second,
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// retryable reports whether a status code is worth retrying. Only server
// errors are; 4xx means the request itself is wrong.
func retryable(status int) bool {
	return status >= 500
}

// Do performs a request with retries. The body factory is called per
// attempt so retries never resend a drained reader. The caller owns the
// response body.
func (c *Client) Do(ctx context.Context, method, url string, body func() io.Reader) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay * (1 << (attempt - 1))
			log.Printf("beacon: request %s failed (attempt %d/%d), retrying in %s: %v",
				url, attempt, c.maxRetries+1, delay, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			c.sleep(delay)
		}

		var reader io.Reader
		if body != nil {
			reader = body()
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, fmt.Errorf("create request for %s: %w", url, err)
		}
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Timeouts and connection failures land here.
			lastErr = err
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		resp.Body.Close()
		statusErr := &StatusError{StatusCode: resp.StatusCode, URL: url}
		if !retryable(resp.StatusCode) {
			return nil, statusErr
		}
		lastErr = statusErr
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

// Get performs a GET request with retries.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, url, nil)
}

// GetJSON performs a GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}
	return nil
}

// PostJSON performs a POST with a JSON body and discards the response body.
func (c *Client) PostJSON(ctx context.Context, url string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload for %s: %w", url, err)
	}
	resp, err := c.Do(ctx, http.MethodPost, url, func() io.Reader {
		return bytes.NewReader(data)
	})
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}
