package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quadroute/quadroute/internal/api/middleware"
)

func limited(limit int, build func(middleware.RateLimitConfig) func(http.Handler) http.Handler) http.Handler {
	cfg := middleware.RateLimitConfig{RequestLimit: limit, WindowLength: time.Minute}
	return build(cfg)(okHandler)
}

func hit(handler http.Handler, remoteAddr, apiKey string) int {
	req := httptest.NewRequest(http.MethodGet, "/v1/departures/IU", http.NoBody)
	req.RemoteAddr = remoteAddr
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimitByIP_WithinBudget(t *testing.T) {
	handler := limited(5, middleware.RateLimitByIP)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(handler, "192.168.1.1:12345", ""), "request %d", i+1)
	}
}

func TestRateLimitByIP_OverBudget(t *testing.T) {
	handler := limited(3, middleware.RateLimitByIP)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:12345", ""))
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/departures/IU", http.NoBody)
	req.RemoteAddr = "10.0.0.1:12345"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rate limit exceeded")
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestRateLimitByIP_PerIPBudgets(t *testing.T) {
	handler := limited(2, middleware.RateLimitByIP)

	assert.Equal(t, http.StatusOK, hit(handler, "172.16.0.1:12345", ""))
	assert.Equal(t, http.StatusOK, hit(handler, "172.16.0.1:12345", ""))
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "172.16.0.1:12345", ""))

	// The second client is unaffected.
	assert.Equal(t, http.StatusOK, hit(handler, "172.16.0.2:12345", ""))
}

func TestRateLimitByCredential_SharedAcrossIPs(t *testing.T) {
	handler := limited(2, middleware.RateLimitByCredential)

	// One credential from two addresses draws on a single budget.
	assert.Equal(t, http.StatusOK, hit(handler, "192.168.1.1:12345", "key-one"))
	assert.Equal(t, http.StatusOK, hit(handler, "192.168.1.2:12345", "key-one"))
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "192.168.1.3:12345", "key-one"))

	// A different credential gets its own budget.
	assert.Equal(t, http.StatusOK, hit(handler, "192.168.1.1:12345", "key-two"))
}

func TestRateLimitByCredential_IPFallback(t *testing.T) {
	handler := limited(1, middleware.RateLimitByCredential)

	assert.Equal(t, http.StatusOK, hit(handler, "198.51.100.1:12345", ""))
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "198.51.100.1:12345", ""))
}

func TestRateLimit_ProblemResponse(t *testing.T) {
	handler := middleware.RequestID(limited(1, middleware.RateLimitByIP))

	assert.Equal(t, http.StatusOK, hit(handler, "203.0.113.1:12345", ""))

	req := httptest.NewRequest(http.MethodGet, "/v1/departures/IU", http.NoBody)
	req.RemoteAddr = "203.0.113.1:12345"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "too-many-requests")
	assert.Contains(t, rec.Body.String(), "/v1/departures/IU")
}

func TestRateLimitTiers(t *testing.T) {
	assert.Equal(t, 10, middleware.AuthRateLimit.RequestLimit)
	assert.Equal(t, 30, middleware.ExpensiveRateLimit.RequestLimit)
	assert.Equal(t, 100, middleware.StandardRateLimit.RequestLimit)
	for _, cfg := range []middleware.RateLimitConfig{
		middleware.AuthRateLimit, middleware.ExpensiveRateLimit, middleware.StandardRateLimit,
	} {
		assert.Equal(t, time.Minute, cfg.WindowLength)
	}
}
