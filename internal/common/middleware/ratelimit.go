package middleware

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is the interface the HTTP layer consumes.
type RateLimiter interface {
	Allow(ctx context.Context) bool
}

// TokenBucket is a token-bucket rate limiter.
type TokenBucket struct {
	capacity   int64
	tokens     int64
	refillRate int64 // tokens added per second
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a full bucket with the given capacity and refill rate.
func NewTokenBucket(capacity, refillRate int64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow reports whether one request may proceed, consuming a token if so.
func (tb *TokenBucket) Allow(ctx context.Context) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()

	tokensToAdd := int64(elapsed * float64(tb.refillRate))
	if tokensToAdd > 0 {
		tb.tokens = min(tb.tokens+tokensToAdd, tb.capacity)
		tb.lastRefill = now
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}

	return false
}

// SlidingWindow is a sliding-window rate limiter.
type SlidingWindow struct {
	requests    []time.Time
	window      time.Duration
	maxRequests int
	mu          sync.Mutex
}

// NewSlidingWindow creates a limiter allowing maxRequests per window.
func NewSlidingWindow(window time.Duration, maxRequests int) *SlidingWindow {
	return &SlidingWindow{
		requests:    make([]time.Time, 0),
		window:      window,
		maxRequests: maxRequests,
	}
}

// Allow reports whether one request may proceed within the current window.
func (sw *SlidingWindow) Allow(ctx context.Context) bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-sw.window)

	valid := make([]time.Time, 0, len(sw.requests))
	for _, reqTime := range sw.requests {
		if reqTime.After(windowStart) {
			valid = append(valid, reqTime)
		}
	}
	sw.requests = valid

	if len(sw.requests) < sw.maxRequests {
		sw.requests = append(sw.requests, now)
		return true
	}

	return false
}

func min(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
