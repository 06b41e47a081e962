package middleware

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"solid-service/internal/auth"
)

// RateLimiter throttles requests per caller identity. Authenticated
// agents get a token bucket per WebID, anonymous callers one per
// client IP, so a noisy agent cannot starve a shared address and an
// agent cannot dodge its budget by rotating addresses.
type RateLimiter struct {
	extractor auth.CredentialsExtractor
	buckets   sync.Map // identity key -> *rate.Limiter
	limit     rate.Limit
	burst     int
}

// NewRateLimiter creates a limiter allowing requestsPerSecond sustained
// throughput with the given burst per identity.
func NewRateLimiter(extractor auth.CredentialsExtractor, requestsPerSecond, burst int) *RateLimiter {
	return &RateLimiter{
		extractor: extractor,
		limit:     rate.Limit(requestsPerSecond),
		burst:     burst,
	}
}

// Allow takes one token from the identity's bucket, creating the
// bucket on first sight.
func (rl *RateLimiter) Allow(identity string) bool {
	bucket, ok := rl.buckets.Load(identity)
	if !ok {
		bucket, _ = rl.buckets.LoadOrStore(identity, rate.NewLimiter(rl.limit, rl.burst))
	}
	return bucket.(*rate.Limiter).Allow()
}

// identityOf derives the bucket key for a request: the WebID when the
// bearer token verifies, the client IP otherwise. Extraction failures
// fall back to the IP; the authorization pipeline rejects the bad
// token properly later.
func (rl *RateLimiter) identityOf(c echo.Context) string {
	if credentials, err := rl.extractor.Extract(c.Request()); err == nil {
		if agent, ok := credentials[auth.Agent]; ok && agent.WebID != "" {
			return "agent:" + agent.WebID
		}
	}
	return "ip:" + c.RealIP()
}

// Middleware returns the Echo middleware enforcing the limit.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.Allow(rl.identityOf(c)) {
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": "rate limit exceeded",
				})
			}

			c.Response().Header().Set("X-RateLimit-Limit", fmt.Sprintf("%.0f", float64(rl.limit)))

			return next(c)
		}
	}
}
