package ratelimiter

import (
	"context"
	"testing"
	"time"
)

func TestTokenBucket(t *testing.T) {
	capacity := 10
	bucket := NewTokenBucket(capacity, capacity, time.Minute)

	if !bucket.TryConsume(5) {
		t.Error("failed to consume tokens from full bucket")
	}
	if bucket.remaining != 5 {
		t.Errorf("expected 5 remaining tokens, got %d", bucket.remaining)
	}

	if bucket.TryConsume(6) {
		t.Error("should not be able to consume more than remaining")
	}

	fastBucket := NewTokenBucket(capacity, 0, 10*time.Millisecond)

	if fastBucket.TryConsume(1) {
		t.Error("should fail to consume from empty bucket")
	}

	time.Sleep(20 * time.Millisecond)

	if !fastBucket.TryConsume(1) {
		t.Error("should succeed after refill")
	}
}

func TestTokenBucket_ZeroCapacityIsUnlimited(t *testing.T) {
	bucket := NewTokenBucket(0, 0, time.Minute)

	for range 100 {
		if !bucket.TryConsume(1000) {
			t.Fatal("zero-capacity bucket should never limit")
		}
	}
	if wait := bucket.TimeUntilAvailable(1000); wait != 0 {
		t.Errorf("expected no wait, got %v", wait)
	}
}

func TestRateLimiter_TryConsume(t *testing.T) {
	rl := New(100, 10)

	if !rl.TryConsume(10) {
		t.Error("should be able to proceed with valid request")
	}

	smallTokenRL := New(10, 100)
	if !smallTokenRL.TryConsume(10) {
		t.Error("should be able to consume exactly available tokens")
	}
	if smallTokenRL.TryConsume(1) {
		t.Error("should not proceed when tokens exhausted")
	}

	smallReqRL := New(100, 1)
	if !smallReqRL.TryConsume(1) {
		t.Error("should be able to proceed with 1st request")
	}
	if smallReqRL.TryConsume(1) {
		t.Error("should not proceed when requests exhausted")
	}
	if smallReqRL.TokensBucket.remaining != 99 {
		t.Errorf("denied request should not spend tokens, %d remaining", smallReqRL.TokensBucket.remaining)
	}
}

func TestRateLimiter_TimeUntilAvailable(t *testing.T) {
	rl := New(60, 60) // 1 token per second

	rl.TokensBucket.TryConsume(60)

	wait := rl.TimeUntilAvailable(1)
	if wait < 900*time.Millisecond || wait > 1500*time.Millisecond {
		t.Errorf("expected wait around 1s, got %v", wait)
	}
}

func TestTokenBucket_GradualRefill(t *testing.T) {
	bucket := NewTokenBucket(10, 0, 100*time.Millisecond) // 1 token per 10ms

	time.Sleep(35 * time.Millisecond)

	if !bucket.HasCapacity(3) {
		t.Error("expected about 3 tokens after 35ms")
	}
	if !bucket.TryConsume(3) {
		t.Fatal("should consume tokens refilled before the full interval")
	}
	if bucket.TryConsume(10) {
		t.Error("should not be full before the interval ends")
	}
}

func TestRateLimiter_WaitAndConsume_AfterWait(t *testing.T) {
	rl := &RateLimiter{
		TokensBucket:   NewTokenBucket(0, 0, time.Minute),
		RequestsBucket: NewTokenBucket(10, 10, 200*time.Millisecond),
	}
	for range 10 {
		if !rl.TryConsume(1) {
			t.Fatal("full bucket should allow 10 requests")
		}
	}

	start := time.Now()
	if err := rl.WaitAndConsume(context.Background(), 1, time.Second); err != nil {
		t.Fatalf("expected to acquire after waiting, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("expected a real wait, returned after %v", elapsed)
	}
}

func TestRateLimiter_WaitAndConsume_PerMinuteBudget(t *testing.T) {
	rl := New(0, 60)
	for range 60 {
		rl.TryConsume(1)
	}

	if err := rl.WaitAndConsume(context.Background(), 1, 0); err != nil {
		t.Fatalf("expected to acquire within about a second, got %v", err)
	}
}

func TestRateLimiter_WaitAndConsume_ConcurrentWaiters(t *testing.T) {
	rl := &RateLimiter{
		TokensBucket:   NewTokenBucket(0, 0, time.Minute),
		RequestsBucket: NewTokenBucket(2, 0, 100*time.Millisecond),
	}

	errs := make(chan error, 4)
	for range 4 {
		go func() {
			errs <- rl.WaitAndConsume(context.Background(), 1, 2*time.Second)
		}()
	}
	for range 4 {
		if err := <-errs; err != nil {
			t.Errorf("waiter failed: %v", err)
		}
	}
}

func TestRateLimiter_WaitAndConsume_Cancelled(t *testing.T) {
	rl := New(0, 1)
	rl.TryConsume(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := rl.WaitAndConsume(ctx, 1, 0); err != context.DeadlineExceeded {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestRateLimiter_WaitAndConsume_OverCapacity(t *testing.T) {
	rl := New(10, 0)

	if err := rl.WaitAndConsume(context.Background(), 11, 0); err == nil {
		t.Error("a request larger than the bucket can never succeed")
	}
}

func TestRateLimiter_WaitAndConsume_MaxWait(t *testing.T) {
	rl := New(60, 60)
	rl.TokensBucket.TryConsume(60)

	err := rl.WaitAndConsume(context.Background(), 30, 10*time.Millisecond)
	if err == nil {
		t.Error("expected max wait error")
	}
}

func TestNewFromLimits(t *testing.T) {
	rl := NewFromLimits(RateLimits{TokensPerMinute: 50, RequestsPerMinute: 2})

	if !rl.TryConsume(20) || !rl.TryConsume(20) {
		t.Fatal("first two requests should pass")
	}
	if rl.TryConsume(1) {
		t.Error("third request should exceed requests per minute")
	}
}
