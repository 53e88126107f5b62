package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ThrottleConfig controls the in-process per-client token bucket in front of
// the hot paths. This is a cheap first line; the Redis sliding window in the
// engine remains the authoritative cross-instance limit.
type ThrottleConfig struct {
	Rate            rate.Limit
	Burst           int
	CleanupInterval time.Duration
	// IdleEviction drops a client's bucket after this much inactivity.
	IdleEviction time.Duration
}

// DefaultThrottleConfig allows 2 req/sec with a burst of 30 per client.
func DefaultThrottleConfig() ThrottleConfig {
	return ThrottleConfig{
		Rate:            rate.Limit(2),
		Burst:           30,
		CleanupInterval: 5 * time.Minute,
		IdleEviction:    10 * time.Minute,
	}
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Throttle is a per-client-IP request limiter.
type Throttle struct {
	config ThrottleConfig

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewThrottle starts the background eviction loop.
func NewThrottle(config ThrottleConfig) *Throttle {
	t := &Throttle{
		config:   config,
		limiters: make(map[string]*clientLimiter),
		stopCh:   make(chan struct{}),
	}
	go t.cleanupLoop()
	return t
}

// Stop terminates the eviction goroutine.
func (t *Throttle) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopCh)
	})
}

// Middleware rejects clients that exceed the configured rate with 429.
func (t *Throttle) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !t.allow(clientIP(r)) {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (t *Throttle) allow(key string) bool {
	t.mu.Lock()
	entry, ok := t.limiters[key]
	if !ok {
		entry = &clientLimiter{
			limiter: rate.NewLimiter(t.config.Rate, t.config.Burst),
		}
		t.limiters[key] = entry
	}
	entry.lastAccess = time.Now()
	t.mu.Unlock()

	return entry.limiter.Allow()
}

func (t *Throttle) cleanupLoop() {
	interval := t.config.CleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.evictIdle()
		case <-t.stopCh:
			return
		}
	}
}

func (t *Throttle) evictIdle() {
	cutoff := time.Now().Add(-t.config.IdleEviction)
	t.mu.Lock()
	for key, entry := range t.limiters {
		if entry.lastAccess.Before(cutoff) {
			delete(t.limiters, key)
		}
	}
	t.mu.Unlock()
}
