package scheduler

import (
	"sync"
	"time"
)

// RateLimiter enforces at most R executions per second across a sequence of
// calls (§4.Q).
type RateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

// NewRateLimiter builds a limiter admitting at most ratePerSecond calls/sec.
func NewRateLimiter(ratePerSecond float64) *RateLimiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	return &RateLimiter{
		interval: time.Duration(float64(time.Second) / ratePerSecond),
		now:      time.Now,
	}
}

// Wait blocks, if necessary, until the next call is permitted under the
// configured rate, then records that a call happened.
func (r *RateLimiter) Wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if !r.last.IsZero() {
		next := r.last.Add(r.interval)
		if now.Before(next) {
			time.Sleep(next.Sub(now))
			now = r.now()
		}
	}
	r.last = now
}

// Allow reports whether a call is permitted right now without blocking,
// and if so records it.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if !r.last.IsZero() && now.Before(r.last.Add(r.interval)) {
		return false
	}
	r.last = now
	return true
}
