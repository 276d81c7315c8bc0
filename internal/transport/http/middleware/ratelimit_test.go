package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stempel/internal/domain/auth"
)

func TestRateLimitUsesUserKeyBeforeIPFallback(t *testing.T) {
	limited := RateLimit(1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	userCtx := context.WithValue(context.Background(), ctxKeyUser, auth.UserContext{
		TenantID: "tenant-1",
		UserID:   "user-1",
	})

	first := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/timesheets", nil).WithContext(userCtx)
	first.RemoteAddr = "198.51.100.11:2222"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	if firstRec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", firstRec.Code)
	}

	second := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/timesheets", nil).WithContext(userCtx)
	second.RemoteAddr = "198.51.100.12:3333"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	if secondRec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled by user key, got %d", secondRec.Code)
	}
	if secondRec.Header().Get("Retry-After") == "" {
		t.Error("throttled response should carry Retry-After")
	}
}

func TestTerminalRateLimitKeysOnIP(t *testing.T) {
	limited := TerminalRateLimit(1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	// same kiosk IP, different pins: second attempt throttles
	first := httptest.NewRequest(http.MethodPost, "/api/v1/terminal/clock-in", nil)
	first.RemoteAddr = "203.0.113.10:4444"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	if firstRec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", firstRec.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/terminal/clock-in", nil)
	second.RemoteAddr = "203.0.113.10:5555"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	if secondRec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request from same IP to throttle, got %d", secondRec.Code)
	}

	// a different kiosk is unaffected
	third := httptest.NewRequest(http.MethodPost, "/api/v1/terminal/clock-in", nil)
	third.RemoteAddr = "203.0.113.99:6666"
	thirdRec := httptest.NewRecorder()
	limited.ServeHTTP(thirdRec, third)
	if thirdRec.Code != http.StatusNoContent {
		t.Fatalf("expected request from another IP to pass, got %d", thirdRec.Code)
	}
}

func TestClientIPKeyPrefersForwardedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	if got := ClientIPKey(req); got != "198.51.100.7" {
		t.Errorf("ClientIPKey = %q, want forwarded address", got)
	}

	req.Header.Del("X-Forwarded-For")
	if got := ClientIPKey(req); got != "10.0.0.1" {
		t.Errorf("ClientIPKey = %q, want remote host", got)
	}
}
