package httpx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// newTestClient disables real sleeping and records requested delays.
func newTestClient(t *testing.T, opts ...Option) (*Client, *[]time.Duration) {
	t.Helper()
	c := NewClient(opts...)
	var delays []time.Duration
	c.sleep = func(d time.Duration) { delays = append(delays, d) }
	return c, &delays
}

func TestGetSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	c, _ := newTestClient(t)
	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Errorf("body = %q", body)
	}
}

func TestRetryOn500ThenSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		io.WriteString(w, "recovered")
	}))
	defer srv.Close()

	c, delays := newTestClient(t, WithRetries(3, time.Second))
	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get after retries: %v", err)
	}
	resp.Body.Close()

	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
	// Exponential: 1s then 2s.
	if len(*delays) != 2 || (*delays)[0] != time.Second || (*delays)[1] != 2*time.Second {
		t.Errorf("backoff delays = %v", *delays)
	}
}

func TestNoRetryOn404(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, _ := newTestClient(t)
	_, err := c.Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != 404 {
		t.Errorf("error = %v, want StatusError 404", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (4xx must not retry)", calls.Load())
	}
}

func TestRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, WithRetries(2, time.Millisecond))
	_, err := c.Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != 502 {
		t.Errorf("error should wrap the last StatusError: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3 (initial + 2 retries)", calls.Load())
	}
}

func TestContextCancelStopsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c, _ := newTestClient(t)
	c.sleep = func(time.Duration) { cancel() }

	_, err := c.Get(ctx, srv.URL)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestDefaultHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token123" {
			t.Errorf("missing auth header, got %q", r.Header.Get("Authorization"))
		}
	}))
	defer srv.Close()

	c, _ := newTestClient(t, WithHeaders(map[string]string{"Authorization": "Bearer token123"}))
	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"name": "CS450", "id": 7}`)
	}))
	defer srv.Close()

	var out struct {
		Name string `json:"name"`
		ID   int    `json:"id"`
	}
	c, _ := newTestClient(t)
	if err := c.GetJSON(context.Background(), srv.URL, &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if out.Name != "CS450" || out.ID != 7 {
		t.Errorf("decoded = %+v", out)
	}
}

func TestPostJSONResendsBodyOnRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"content":"hello"}` {
			t.Errorf("attempt %d body = %q", calls.Load()+1, body)
		}
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c, _ := newTestClient(t, WithRetries(2, time.Millisecond))
	payload := map[string]string{"content": "hello"}
	if err := c.PostJSON(context.Background(), srv.URL, payload); err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}
