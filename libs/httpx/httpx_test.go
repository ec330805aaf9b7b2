package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitRejectsOverBudget(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	h := RateLimit(rl, false, nil)(okHandler())

	for i := 0; i < 2; i++ {
		rw := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/slots", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		h.ServeHTTP(rw, req)
		if rw.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rw.Code)
		}
	}

	rw := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/slots", nil)
	req.RemoteAddr = "10.0.0.1:5556"
	h.ServeHTTP(rw, req)
	if rw.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rw.Code)
	}
	if rw.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", rw.Header().Get("Retry-After"))
	}

	other := httptest.NewRequest(http.MethodGet, "/api/v1/slots", nil)
	other.RemoteAddr = "10.0.0.2:5555"
	rw = httptest.NewRecorder()
	h.ServeHTTP(rw, other)
	if rw.Code != http.StatusOK {
		t.Fatalf("different client should not be limited, got %d", rw.Code)
	}
}

func TestRateLimiterWindowResets(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if ok, _ := rl.Allow(context.Background(), "k"); !ok {
		t.Fatal("first call should pass")
	}
	if ok, _ := rl.Allow(context.Background(), "k"); ok {
		t.Fatal("second call in window should be rejected")
	}
	now = now.Add(61 * time.Second)
	if ok, _ := rl.Allow(context.Background(), "k"); !ok {
		t.Fatal("call after window should pass")
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, context.DeadlineExceeded
}

func (failingLimiter) Window() time.Duration { return time.Second }

func TestRateLimitFailOpen(t *testing.T) {
	var seen error
	h := RateLimit(failingLimiter{}, true, func(err error) { seen = err })(okHandler())
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil))
	if rw.Code != http.StatusOK {
		t.Fatalf("expected fail-open 200, got %d", rw.Code)
	}
	if seen == nil {
		t.Fatal("expected onError to be called")
	}

	closed := RateLimit(failingLimiter{}, false, nil)(okHandler())
	rw = httptest.NewRecorder()
	closed.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil))
	if rw.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected fail-closed 503, got %d", rw.Code)
	}
}

func TestWithRequestIDPropagates(t *testing.T) {
	var got string
	h := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	if got != "req-123" || rw.Header().Get(RequestIDHeader) != "req-123" {
		t.Fatalf("expected propagated id, got ctx=%q header=%q", got, rw.Header().Get(RequestIDHeader))
	}

	rw = httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(got) != 32 {
		t.Fatalf("expected generated 32-char id, got %q", got)
	}
}

func TestWithRecover(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), WithRequestID, WithRecover(logger))

	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil))
	if rw.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rw.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := WithCORS(DefaultCORSPolicy(ParseOrigins("https://app.example.com, ")))(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/bookings", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	if rw.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rw.Code)
	}
	if rw.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Fatalf("unexpected allow-origin %q", rw.Header().Get("Access-Control-Allow-Origin"))
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rw = httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	if rw.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unlisted origin must not get CORS headers")
	}
}
