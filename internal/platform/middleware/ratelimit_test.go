package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRateLimit_RequestsWithinLimit(t *testing.T) {
	e := echo.New()
	h := RateLimit(RateLimitConfig{RequestsPerSecond: 10, BurstSize: 5})(okHandler)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/persons", nil), rec)
		if err := h(c); err != nil {
			t.Fatalf("request %d: expected no error, got %v", i+1, err)
		}
		if got := rec.Header().Get("X-RateLimit-Limit"); got != "10" {
			t.Errorf("request %d: expected X-RateLimit-Limit '10', got %q", i+1, got)
		}
	}
}

func TestRateLimit_ExceedsLimit(t *testing.T) {
	e := echo.New()
	h := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2})(okHandler)

	for i := 0; i < 2; i++ {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/persons", nil), httptest.NewRecorder())
		if err := h(c); err != nil {
			t.Fatalf("request %d: expected no error, got %v", i+1, err)
		}
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/persons", nil), rec)
	err := h(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
	retry, convErr := strconv.Atoi(rec.Header().Get("Retry-After"))
	if convErr != nil || retry < 1 {
		t.Errorf("expected positive Retry-After, got %q", rec.Header().Get("Retry-After"))
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("expected X-RateLimit-Remaining 0")
	}
}

func TestRateLimit_SeparateBucketsPerIP(t *testing.T) {
	e := echo.New()
	h := RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})(okHandler)

	request := func(ip string) error {
		req := httptest.NewRequest(http.MethodGet, "/persons", nil)
		req.RemoteAddr = ip + ":1234"
		return h(e.NewContext(req, httptest.NewRecorder()))
	}

	if err := request("10.0.0.1"); err != nil {
		t.Fatalf("first client: %v", err)
	}
	if err := request("10.0.0.1"); err == nil {
		t.Fatal("first client: expected second request to be limited")
	}
	if err := request("10.0.0.2"); err != nil {
		t.Fatalf("second client should have its own bucket: %v", err)
	}
}

func TestTokenBucket_RetryAfter(t *testing.T) {
	b := newTokenBucket(0.5, 1)
	if ok, _ := b.take(); !ok {
		t.Fatal("expected first token")
	}
	ok, retry := b.take()
	if ok {
		t.Fatal("expected bucket to be empty")
	}
	if retry < 2 {
		t.Errorf("expected at least 2s until refill at 0.5 rps, got %d", retry)
	}
}

func TestClientBuckets_EvictsIdleClients(t *testing.T) {
	s := newClientBuckets(RateLimitConfig{RequestsPerSecond: 10, BurstSize: 5})
	if s.idle != time.Minute {
		t.Fatalf("expected one minute idle window, got %s", s.idle)
	}
	s.get("10.0.0.1")
	s.get("10.0.0.2")

	past := time.Now().Add(-2 * time.Minute)
	s.buckets["10.0.0.1"].lastRefill = past
	s.lastSweep = past
	s.get("10.0.0.3")

	if _, ok := s.buckets["10.0.0.1"]; ok {
		t.Error("expected idle client to be evicted")
	}
	if len(s.buckets) != 2 {
		t.Errorf("expected 2 live buckets, got %d", len(s.buckets))
	}
}

func TestClientBuckets_IdleWindowCoversFullRefill(t *testing.T) {
	s := newClientBuckets(RateLimitConfig{RequestsPerSecond: 0.01, BurstSize: 2})
	if s.idle != 200*time.Second {
		t.Errorf("expected 200s idle window, got %s", s.idle)
	}
}
