package catalog

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter is a token bucket that refills continuously: limit tokens per
// interval, never holding more than limit. The server can pause it through
// Retry-After or an exhausted X-RateLimit-Remaining.
type RateLimiter struct {
	mu          sync.Mutex
	limit       float64
	perToken    time.Duration
	tokens      float64
	last        time.Time
	pausedUntil time.Time
	now         func() time.Time
}

// NewRateLimiter creates a rate limiter allowing limit requests per interval.
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	if limit < 1 {
		limit = 1
	}
	if interval <= 0 {
		interval = time.Minute
	}
	r := &RateLimiter{
		limit:    float64(limit),
		perToken: interval / time.Duration(limit),
		tokens:   float64(limit),
		now:      time.Now,
	}
	r.last = r.now()
	return r
}

// refill adds the tokens earned since the last call. Callers hold mu.
func (r *RateLimiter) refill(now time.Time) {
	if now.After(r.last) {
		r.tokens = math.Min(r.limit, r.tokens+float64(now.Sub(r.last))/float64(r.perToken))
		r.last = now
	}
}

// reserve takes a token, possibly on credit, and returns how long the
// caller has to wait before using it.
func (r *RateLimiter) reserve() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.refill(now)

	var wait time.Duration
	if r.tokens < 1 {
		wait = time.Duration((1 - r.tokens) * float64(r.perToken))
	}
	if pause := r.pausedUntil.Sub(now); pause > wait {
		wait = pause
	}
	r.tokens--
	return wait
}

// cancel returns a token taken by reserve.
func (r *RateLimiter) cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = math.Min(r.limit, r.tokens+1)
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	wait := r.reserve()
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.cancel()
		return ctx.Err()
	}
}

// Tokens returns the number of requests that can be made without waiting.
func (r *RateLimiter) Tokens() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.refill(now)
	if now.Before(r.pausedUntil) || r.tokens < 1 {
		return 0
	}
	return int(r.tokens)
}

// UpdateFromHeaders applies the server's view of the budget:
// X-RateLimit-Remaining lowers the tokens, and a Retry-After (seconds) or an
// exhausted budget with X-RateLimit-Reset (unix seconds) pauses the limiter.
func (r *RateLimiter) UpdateFromHeaders(headers http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.refill(now)

	exhausted := false
	if remaining := headers.Get("X-RateLimit-Remaining"); remaining != "" {
		if n, err := strconv.Atoi(remaining); err == nil && n >= 0 {
			r.tokens = math.Min(r.tokens, float64(n))
			exhausted = n == 0
		}
	}

	if exhausted {
		if reset := headers.Get("X-RateLimit-Reset"); reset != "" {
			if ts, err := strconv.ParseInt(reset, 10, 64); err == nil {
				r.pauseUntil(time.Unix(ts, 0))
			}
		}
	}

	if after := headers.Get("Retry-After"); after != "" {
		if secs, err := strconv.Atoi(after); err == nil && secs > 0 {
			r.pauseUntil(now.Add(time.Duration(secs) * time.Second))
		}
	}
}

func (r *RateLimiter) pauseUntil(t time.Time) {
	if t.After(r.pausedUntil) {
		r.pausedUntil = t
	}
}
