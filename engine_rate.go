package authcore

import (
	"context"
	"fmt"
	"time"
)

// CheckRateLimit records an attempt against key and reports whether it is
// allowed. An attempt is allowed iff fewer than maxAttempts earlier attempts
// remain inside the sliding window; rejected attempts are not recorded and
// do not extend the window.
func (e *Engine) CheckRateLimit(ctx context.Context, key string, maxAttempts int, window time.Duration) (bool, error) {
	if e == nil || e.rateLimiter == nil {
		return false, ErrEngineNotReady
	}
	allowed, err := e.rateLimiter.Allow(ctx, key, maxAttempts, window)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !allowed {
		e.metricInc(MetricRateLimitHit)
		e.auditEmit(ctx, AuditEvent{
			EventType:  "rate_limited",
			Identifier: key,
		})
	}
	return allowed, nil
}

// RateLimitRemaining reports how many attempts are left inside the current
// window without recording one.
func (e *Engine) RateLimitRemaining(ctx context.Context, key string, maxAttempts int, window time.Duration) (int, error) {
	if e == nil || e.rateLimiter == nil {
		return 0, ErrEngineNotReady
	}
	remaining, err := e.rateLimiter.Remaining(ctx, key, maxAttempts, window)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return remaining, nil
}

// ClearRateLimit drops all recorded attempts for key.
func (e *Engine) ClearRateLimit(ctx context.Context, key string) error {
	if e == nil || e.rateLimiter == nil {
		return ErrEngineNotReady
	}
	if err := e.rateLimiter.Clear(ctx, key); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
