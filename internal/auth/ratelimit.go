package auth

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"
)

// RateLimiter is a per-key token bucket. limit is tokens per minute,
// burst the bucket size.
type RateLimiter struct {
	limit   int
	burst   int
	buckets map[string]*bucket
	mu      sync.Mutex
	logger  *slog.Logger
	now     func() time.Time
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter creates a limiter. limit <= 0 disables limiting.
func NewRateLimiter(limit, burst int, logger *slog.Logger) *RateLimiter {
	if burst <= 0 {
		burst = 10
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RateLimiter{
		limit:   limit,
		burst:   burst,
		buckets: make(map[string]*bucket),
		logger:  logger,
		now:     time.Now,
	}
}

// Allow consumes a token for key. When none is left it returns false and
// the whole seconds until the next token.
func (r *RateLimiter) Allow(key string) (bool, int) {
	if r == nil || r.limit <= 0 {
		return true, 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	b, ok := r.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(r.burst), lastRefill: now}
		r.buckets[key] = b
	}

	perSecond := float64(r.limit) / 60.0
	b.tokens += now.Sub(b.lastRefill).Seconds() * perSecond
	if b.tokens > float64(r.burst) {
		b.tokens = float64(r.burst)
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	return false, int(math.Ceil((1 - b.tokens) / perSecond))
}

// StartCleanup drops idle buckets every interval until ctx ends.
func (r *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	if r == nil || r.limit <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.cleanup(10 * time.Minute)
			}
		}
	}()
}

func (r *RateLimiter) cleanup(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-idle)
	removed := 0
	for key, b := range r.buckets {
		if b.lastRefill.Before(cutoff) {
			delete(r.buckets, key)
			removed++
		}
	}
	if removed > 0 {
		r.logger.Debug("Rate limit cleanup", "removed_buckets", removed, "remaining", len(r.buckets))
	}
	return removed
}
