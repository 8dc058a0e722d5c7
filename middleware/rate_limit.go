package middleware

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ClientIdentifier derives the caller identity for rate limiting from the
// first populated forwarded header. Callers behind no proxy fall back to
// "unknown" rather than RemoteAddr, so direct hits share one bucket.
func ClientIdentifier(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		// first IP in the chain is the originating client
		if i := strings.IndexAny(xff, ", "); i > 0 {
			return xff[:i]
		}
		return xff
	}
	if xri := c.GetHeader("X-Real-IP"); xri != "" {
		return xri
	}
	return "unknown"
}

type bucket struct {
	lastAccepted time.Time
	hits         []time.Time
}

// RateLimiter enforces, per (identifier, form kind), a minimum cooldown
// between accepted submissions and a maximum count within a rolling window.
// State is process local; under multiple server instances each process
// limits independently. Check and increment happen under a single lock so
// concurrent requests for the same identifier cannot slip through between
// the check and the record.
type RateLimiter struct {
	mu           sync.Mutex
	cooldown     time.Duration
	window       time.Duration
	maxPerWindow int
	buckets      map[string]*bucket

	now func() time.Time
}

func NewRateLimiter(cooldown, window time.Duration, maxPerWindow int) *RateLimiter {
	return &RateLimiter{
		cooldown:     cooldown,
		window:       window,
		maxPerWindow: maxPerWindow,
		buckets:      make(map[string]*bucket),
		now:          time.Now,
	}
}

// NewRateLimiterFromEnv reads QUOTE_RATE_COOLDOWN_SECONDS,
// QUOTE_RATE_WINDOW_MINUTES and QUOTE_RATE_MAX_PER_WINDOW, with defaults of
// 30s, 60m and 5 submissions.
func NewRateLimiterFromEnv() *RateLimiter {
	cooldown := time.Duration(envInt("QUOTE_RATE_COOLDOWN_SECONDS", 30)) * time.Second
	window := time.Duration(envInt("QUOTE_RATE_WINDOW_MINUTES", 60)) * time.Minute
	maxPerWindow := envInt("QUOTE_RATE_MAX_PER_WINDOW", 5)
	return NewRateLimiter(cooldown, window, maxPerWindow)
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// Allow records a submission attempt and reports whether it may proceed.
// When denied, retryAfter tells the caller how long to wait.
func (rl *RateLimiter) Allow(identifier, formKind string) (bool, time.Duration) {
	key := identifier + "|" + formKind
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{}
		rl.buckets[key] = b
	}

	// prune hits that left the rolling window
	cutoff := now.Add(-rl.window)
	kept := b.hits[:0]
	for _, h := range b.hits {
		if h.After(cutoff) {
			kept = append(kept, h)
		}
	}
	b.hits = kept

	if !b.lastAccepted.IsZero() {
		if elapsed := now.Sub(b.lastAccepted); elapsed < rl.cooldown {
			return false, rl.cooldown - elapsed
		}
	}

	if len(b.hits) >= rl.maxPerWindow {
		return false, b.hits[0].Add(rl.window).Sub(now)
	}

	b.lastAccepted = now
	b.hits = append(b.hits, now)
	return true, 0
}

// Sweep drops buckets with no activity inside the window plus cooldown.
// Returns the number removed; run from the maintenance cron.
func (rl *RateLimiter) Sweep() int {
	now := rl.now()
	cutoff := now.Add(-(rl.window + rl.cooldown))

	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for key, b := range rl.buckets {
		stale := b.lastAccepted.Before(cutoff)
		for _, h := range b.hits {
			if h.After(cutoff) {
				stale = false
				break
			}
		}
		if stale {
			delete(rl.buckets, key)
			removed++
		}
	}
	return removed
}
