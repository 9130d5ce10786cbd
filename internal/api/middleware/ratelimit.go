package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/quadroute/quadroute/internal/api/models"
	"github.com/quadroute/quadroute/internal/auth"
)

// RateLimitConfig sets the request budget for one limiter tier.
type RateLimitConfig struct {
	RequestLimit int
	WindowLength time.Duration
}

// Limiter tiers. Token minting and recommendation computes get tighter
// budgets than plain reads.
var (
	AuthRateLimit      = RateLimitConfig{RequestLimit: 10, WindowLength: time.Minute}
	ExpensiveRateLimit = RateLimitConfig{RequestLimit: 30, WindowLength: time.Minute}
	StandardRateLimit  = RateLimitConfig{RequestLimit: 100, WindowLength: time.Minute}
)

// RateLimitByIP limits by client IP. RealIP runs earlier in the chain, so
// the key reflects X-Forwarded-For behind the load balancer.
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(rateLimitExceededHandler),
	)
}

// RateLimitByCredential creates a rate limiter middleware keyed on the
// request credential (API key or bearer token). Falls back to IP-based rate
// limiting for requests without a credential.
func RateLimitByCredential(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(keyByCredentialOrIP),
		httprate.WithLimitHandler(rateLimitExceededHandler),
	)
}

// keyByCredentialOrIP returns the request credential when present, otherwise
// the client IP.
func keyByCredentialOrIP(r *http.Request) (string, error) {
	credential := auth.ExtractCredential(
		r.Header.Get("X-API-Key"),
		r.Header.Get("Authorization"),
	)
	if credential != "" {
		return "cred:" + credential, nil
	}

	return httprate.KeyByRealIP(r)
}

func rateLimitExceededHandler(w http.ResponseWriter, r *http.Request) {
	problem := models.NewTooManyRequests(
		GetRequestID(r.Context()),
		"Rate limit exceeded. Please try again later.",
	)
	problem.Instance = r.URL.Path

	// httprate does not expose the window reset time, so advertise the
	// full window.
	w.Header().Set("Retry-After", strconv.Itoa(int(time.Minute.Seconds())))

	problem.Write(w)
}
