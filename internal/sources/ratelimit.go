package sources

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter wraps a token-bucket limiter for controlling request rates to
// provider APIs. Safe for concurrent use; the underlying rate.Limiter is
// goroutine-safe for all operations.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter with the given sustained requests per
// second and burst size.
//
// Example configurations:
//   - DBLP: NewRateLimiter(1, 1) — DBLP asks for at most 1 req/s
//   - Semantic Scholar unauthenticated: NewRateLimiter(1, 2)
//   - OpenAlex polite pool: NewRateLimiter(10, 10)
func NewRateLimiter(ratePerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

// Wait blocks until a request is allowed or the context is canceled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// Allow reports whether a request may proceed without waiting, consuming a
// token when it may.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// SetRate adjusts the sustained rate, preserving the burst size. Used to back
// off when a provider starts returning rate-limit responses.
func (r *RateLimiter) SetRate(ratePerSecond float64) {
	r.limiter.SetLimit(rate.Limit(ratePerSecond))
}
