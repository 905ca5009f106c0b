package infra

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket spacing our own REST calls to the exchange.
// A /pnl command fans out one mark-price request per open symbol; the bucket
// keeps a burst of those under the exchange's comfort zone. Thread-safe.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// NewRateLimiter creates a limiter allowing bursts of maxRequests and a
// steady refill of perSecond requests per second.
func NewRateLimiter(maxRequests int, perSecond float64) *RateLimiter {
	return &RateLimiter{
		tokens:     float64(maxRequests),
		maxTokens:  float64(maxRequests),
		refillRate: perSecond,
		lastRefill: time.Now(),
	}
}

func (r *RateLimiter) refill(now time.Time) {
	elapsed := now.Sub(r.lastRefill).Seconds()
	r.tokens += elapsed * r.refillRate
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}
	r.lastRefill = now
}

// take consumes a token if available; otherwise returns how long until the
// next token lands.
func (r *RateLimiter) take() (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill(time.Now())
	if r.tokens >= 1 {
		r.tokens--
		return true, 0
	}
	deficit := 1 - r.tokens
	return false, time.Duration(deficit / r.refillRate * float64(time.Second))
}

// Allow consumes a token without waiting. Returns false if none available.
func (r *RateLimiter) Allow() bool {
	ok, _ := r.take()
	return ok
}

// Wait blocks until a token is available or the context is canceled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		ok, wait := r.take()
		if ok {
			return nil
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
