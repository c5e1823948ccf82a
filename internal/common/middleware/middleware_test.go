package middleware

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTokenBucketExhaustsAndRefills(t *testing.T) {
	tb := NewTokenBucket(2, 1000)
	ctx := context.Background()

	if !tb.Allow(ctx) || !tb.Allow(ctx) {
		t.Fatalf("expected first two requests allowed")
	}
	if tb.Allow(ctx) {
		t.Fatalf("expected empty bucket to reject")
	}

	time.Sleep(10 * time.Millisecond)
	if !tb.Allow(ctx) {
		t.Fatalf("expected refill to allow again")
	}
}

func TestSlidingWindowLimit(t *testing.T) {
	sw := NewSlidingWindow(time.Minute, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !sw.Allow(ctx) {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if sw.Allow(ctx) {
		t.Fatalf("expected window limit to reject fourth request")
	}
}

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, 10*time.Millisecond)
	ctx := context.Background()
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		if err := cb.Call(ctx, func() error { return boom }); err == nil {
			t.Fatalf("expected failure")
		}
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("expected breaker open after max failures, got %v", cb.GetState())
	}
	if err := cb.Call(ctx, func() error { return nil }); err == nil {
		t.Fatalf("expected open breaker to reject")
	}

	time.Sleep(15 * time.Millisecond)
	if err := cb.Call(ctx, func() error { return nil }); err != nil {
		t.Fatalf("expected half-open probe to pass: %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Fatalf("expected breaker closed after successful probe, got %v", cb.GetState())
	}
}
