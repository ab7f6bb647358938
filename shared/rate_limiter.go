package shared

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// HTTPRequestRateLimiter spaces out requests to the tender site. It is safe for use by
// the enrichment workers concurrently.
type HTTPRequestRateLimiter struct {
	limiter      *rate.Limiter
	requestCount atomic.Int64
}

// NewHTTPRequestRateLimiter allows requestsPerSecond requests with a burst of burst.
// A non-positive rate disables limiting.
func NewHTTPRequestRateLimiter(requestsPerSecond float64, burst int) *HTTPRequestRateLimiter {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	if burst < 1 {
		burst = 1
	}
	return &HTTPRequestRateLimiter{
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Wait blocks until a request may be sent or ctx is done
func (limiter *HTTPRequestRateLimiter) Wait(ctx context.Context) error {
	start := time.Now()
	if err := limiter.limiter.Wait(ctx); err != nil {
		return err
	}

	count := limiter.requestCount.Add(1)
	if waited := time.Since(start); waited > 10*time.Millisecond {
		logrus.WithFields(logrus.Fields{
			"component":     "HTTPRequestRateLimiter",
			"waited":        waited,
			"request_count": count,
		}).Debug("Enforced rate limit delay")
	}
	return nil
}

// GetRequestCount returns the total number of requests let through
func (limiter *HTTPRequestRateLimiter) GetRequestCount() int64 {
	return limiter.requestCount.Load()
}
