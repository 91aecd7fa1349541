package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimiterExhaustsBurstPerIP(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)

	for i := 0; i < 2; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d within burst should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("request past the burst should be denied")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatal("a different IP has its own bucket")
	}
}

func TestRateLimiterSubstitutesDefaults(t *testing.T) {
	rl := NewRateLimiter(0, 0)

	for i := 0; i < DefaultAuthBurst; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d within default burst should be allowed", i+1)
		}
	}
}

func TestRateLimitRejectsWithRetryAfter(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw := RateLimit(0.5, 1)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set("X-Real-Ip", "10.0.0.1")

	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("expected Retry-After of 2s at 0.5 req/s, got %q", got)
	}
}
