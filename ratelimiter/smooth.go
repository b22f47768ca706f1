package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// SmoothLimiter spaces requests evenly instead of granting a full minute's
// budget at once. It counts requests only; the token argument is ignored.
type SmoothLimiter struct {
	limiter *rate.Limiter
}

var _ Limiter = (*SmoothLimiter)(nil)

// NewSmooth allows perMinute requests per minute with the given burst.
// perMinute <= 0 means unlimited.
func NewSmooth(perMinute int, burst int) *SmoothLimiter {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60)
	}
	if burst < 1 {
		burst = 1
	}

	return &SmoothLimiter{
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (s *SmoothLimiter) TryConsume(int) bool {
	return s.limiter.Allow()
}

func (s *SmoothLimiter) TimeUntilAvailable(int) time.Duration {
	limit := s.limiter.Limit()
	if limit == rate.Inf {
		return 0
	}

	tokens := s.limiter.Tokens()
	if tokens >= 1 {
		return 0
	}

	return time.Duration((1 - tokens) / float64(limit) * float64(time.Second))
}

func (s *SmoothLimiter) WaitAndConsume(ctx context.Context, _ int, maxWait time.Duration) error {
	if maxWait > 0 {
		if wait := s.TimeUntilAvailable(1); wait > maxWait {
			return fmt.Errorf("rate limit wait time %v exceeds max wait %v", wait, maxWait)
		}

		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, maxWait)
		defer cancel()
	}

	return s.limiter.Wait(ctx)
}
