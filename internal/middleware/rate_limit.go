package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	pkghttp "github.com/BradenHooton/coffer/pkg/http"
)

// RateLimitConfig holds request rate limiting configuration. This is a
// coarse per-IP limit on request volume; login lockout is tracked
// separately, per identity, by the throttle package.
type RateLimitConfig struct {
	RequestsPerMinute int
}

// DefaultAuthRateLimit limits auth endpoints to 10 requests per minute per IP
func DefaultAuthRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 10,
	}
}

// DefaultAPIRateLimit limits general API endpoints to 120 requests per minute per IP
func DefaultAPIRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 120,
	}
}

// RateLimitByIP creates a middleware that rate limits requests by client IP
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyByRealIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteError(w, http.StatusTooManyRequests, "rate_limited", "Rate limit exceeded")
		}),
	)
}
