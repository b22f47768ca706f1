package ratelimiter

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RateLimiter enforces a tokens-per-minute and a requests-per-minute budget.
// Each TryConsume spends the given tokens and one request.
type RateLimiter struct {
	TokensBucket   *TokenBucket
	RequestsBucket *TokenBucket
}

var _ Limiter = (*RateLimiter)(nil)

// New returns a limiter with full buckets. A zero budget disables that bucket.
func New(tokensPerMinute, requestsPerMinute int) *RateLimiter {
	return &RateLimiter{
		TokensBucket:   NewTokenBucket(tokensPerMinute, tokensPerMinute, time.Minute),
		RequestsBucket: NewTokenBucket(requestsPerMinute, requestsPerMinute, time.Minute),
	}
}

// RateLimits mirrors wallgen.RateLimits to avoid an import cycle.
type RateLimits struct {
	TokensPerMinute   int
	RequestsPerMinute int
	TokensPerDay      int
}

// NewFromLimits creates a RateLimiter from a model's published limits.
func NewFromLimits(limits RateLimits) *RateLimiter {
	return New(limits.TokensPerMinute, limits.RequestsPerMinute)
}

// HasCapacity checks if tokens are available WITHOUT consuming them.
func (rl *RateLimiter) HasCapacity(numTokens int) bool {
	return rl.TokensBucket.HasCapacity(numTokens) && rl.RequestsBucket.HasCapacity(1)
}

// TryConsume spends tokens and one request, or nothing if either bucket is short.
func (rl *RateLimiter) TryConsume(numTokens int) bool {
	if !rl.HasCapacity(numTokens) {
		return false
	}
	if !rl.TokensBucket.TryConsume(numTokens) {
		return false
	}
	if !rl.RequestsBucket.TryConsume(1) {
		rl.TokensBucket.refund(numTokens)
		return false
	}
	return true
}

// TimeUntilAvailable returns how long until the specified tokens would be available.
func (rl *RateLimiter) TimeUntilAvailable(tokens int) time.Duration {
	tokenWait := rl.TokensBucket.TimeUntilAvailable(tokens)
	requestWait := rl.RequestsBucket.TimeUntilAvailable(1)
	return max(tokenWait, requestWait)
}

// WaitAndConsume waits until tokens are available (up to maxWait), then consumes them.
// If maxWait is 0, there is no limit on how long to wait. Concurrent waiters
// that lose the race for refilled capacity wait again.
func (rl *RateLimiter) WaitAndConsume(ctx context.Context, tokens int, maxWait time.Duration) error {
	if !rl.TokensBucket.fits(tokens) {
		return fmt.Errorf("request of %d tokens exceeds bucket capacity %d", tokens, rl.TokensBucket.capacity)
	}

	var deadline time.Time
	if maxWait > 0 {
		deadline = time.Now().Add(maxWait)
	}

	for {
		if rl.TryConsume(tokens) {
			return nil
		}

		wait := max(rl.TimeUntilAvailable(tokens), time.Millisecond)
		if !deadline.IsZero() {
			if left := time.Until(deadline); wait > left {
				return fmt.Errorf("rate limit wait time %v exceeds max wait %v", wait, maxWait)
			}
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// TokenBucket refills gradually, reaching capacity once per interval. A bucket
// with zero capacity never limits.
type TokenBucket struct {
	mu             sync.Mutex
	capacity       int
	remaining      int
	refillInterval time.Duration
	lastRefill     time.Time
}

// NewTokenBucket creates a new token bucket.
func NewTokenBucket(capacity int, initialTokens int, refillInterval time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:       capacity,
		remaining:      initialTokens,
		refillInterval: refillInterval,
		lastRefill:     time.Now(),
	}
}

func (tb *TokenBucket) unlimited() bool {
	return tb.capacity <= 0
}

func (tb *TokenBucket) fits(tokens int) bool {
	return tb.unlimited() || tokens <= tb.capacity
}

// HasCapacity checks if tokens are available WITHOUT consuming them.
func (tb *TokenBucket) HasCapacity(tokens int) bool {
	if tb.unlimited() {
		return true
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()

	remaining, _ := tb.refilled(time.Now())
	return tokens <= remaining
}

// TryConsume atomically checks and consumes tokens.
func (tb *TokenBucket) TryConsume(tokens int) bool {
	if tb.unlimited() {
		return true
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.remaining, tb.lastRefill = tb.refilled(time.Now())
	if tokens <= tb.remaining {
		tb.remaining -= tokens
		return true
	}
	return false
}

func (tb *TokenBucket) refund(tokens int) {
	if tb.unlimited() {
		return
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.remaining = min(tb.capacity, tb.remaining+tokens)
}

// TimeUntilAvailable returns how long until tokens would be available (read-only).
func (tb *TokenBucket) TimeUntilAvailable(tokens int) time.Duration {
	if tb.unlimited() {
		return 0
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()

	remaining, _ := tb.refilled(time.Now())
	return tb.waitFor(tokens, remaining)
}

// refilled returns the balance at now and the refill time it is counted from.
// Only whole tokens are credited; the clock advances by exactly the time they
// took, so partial progress toward the next token is kept. Must hold tb.mu.
func (tb *TokenBucket) refilled(now time.Time) (int, time.Time) {
	elapsed := now.Sub(tb.lastRefill)
	if elapsed <= 0 {
		return tb.remaining, tb.lastRefill
	}
	if elapsed >= tb.refillInterval {
		return tb.capacity, now
	}

	added := int(float64(tb.capacity) * (float64(elapsed) / float64(tb.refillInterval)))
	if added <= 0 {
		return tb.remaining, tb.lastRefill
	}

	remaining := min(tb.capacity, tb.remaining+added)
	if remaining == tb.capacity {
		return remaining, now
	}
	return remaining, tb.lastRefill.Add(time.Duration(float64(added) * float64(tb.refillInterval) / float64(tb.capacity)))
}

// waitFor adds 10% to the proportional refill time.
func (tb *TokenBucket) waitFor(tokens, remaining int) time.Duration {
	if tokens <= remaining {
		return 0
	}

	rate := float64(tb.capacity) / float64(tb.refillInterval)
	wait := time.Duration(float64(tokens-remaining) / rate)

	return wait + wait/10
}
