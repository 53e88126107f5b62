package limiters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockoutConfig holds tuning for the failed-login lockout guard.
type LockoutConfig struct {
	Threshold    int           // failures before the identifier locks
	Window       time.Duration // rolling window in which failures are counted
	LockDuration time.Duration // how long a triggered lock holds
}

// ErrLockoutUnavailable indicates the lockout backend is unreachable.
var ErrLockoutUnavailable = errors.New("lockout backend unavailable")

// Status is the outcome of a recorded failure.
type Status struct {
	Locked       bool
	AttemptsLeft int
	LockedUntil  time.Time
}

// LockoutGuard tracks failed login attempts per identifier and temporarily
// locks the identifier once the threshold is reached. The counter lives in
// Redis so concurrent failures against the same identifier serialize on the
// atomic INCR and cannot evade the threshold.
type LockoutGuard struct {
	redis  redis.UniversalClient
	config LockoutConfig
}

// NewLockoutGuard creates a lockout guard backed by the given Redis client.
func NewLockoutGuard(redisClient redis.UniversalClient, cfg LockoutConfig) *LockoutGuard {
	return &LockoutGuard{redis: redisClient, config: cfg}
}

func (g *LockoutGuard) attemptsKey(identifier string) string {
	return "lka:" + identifier
}

func (g *LockoutGuard) lockKey(identifier string) string {
	return "lkl:" + identifier
}

// RecordFailure increments the failure counter for an identifier. When the
// counter reaches the threshold the identifier is locked for LockDuration and
// the counter resets; the returned Status reports the transition.
func (g *LockoutGuard) RecordFailure(ctx context.Context, identifier string) (Status, error) {
	if identifier == "" {
		return Status{AttemptsLeft: g.config.Threshold}, nil
	}

	key := g.attemptsKey(identifier)
	count, err := g.redis.Incr(ctx, key).Result()
	if err != nil {
		return Status{}, fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
	}

	if count == 1 && g.config.Window > 0 {
		// TTL on first failure makes the counter a rolling window.
		if err := g.redis.Expire(ctx, key, g.config.Window).Err(); err != nil {
			return Status{}, fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
		}
	}

	if count >= int64(g.config.Threshold) {
		until := time.Now().Add(g.config.LockDuration)
		_, err := g.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, g.lockKey(identifier), 1, g.config.LockDuration)
			pipe.Del(ctx, key)
			return nil
		})
		if err != nil {
			return Status{}, fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
		}
		return Status{Locked: true, LockedUntil: until}, nil
	}

	return Status{AttemptsLeft: g.config.Threshold - int(count)}, nil
}

// Reset clears the failure counter and any active lock, e.g. after a
// successful login.
func (g *LockoutGuard) Reset(ctx context.Context, identifier string) error {
	if identifier == "" {
		return nil
	}

	if err := g.redis.Del(ctx, g.attemptsKey(identifier), g.lockKey(identifier)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
	}
	return nil
}

// IsLocked reports whether the identifier has an active lock.
func (g *LockoutGuard) IsLocked(ctx context.Context, identifier string) (bool, error) {
	if identifier == "" {
		return false, nil
	}

	ttl, err := g.redis.PTTL(ctx, g.lockKey(identifier)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
	}
	return ttl > 0, nil
}

// LockedUntil returns the lock expiry for the identifier, or the zero time
// when no lock is active.
func (g *LockoutGuard) LockedUntil(ctx context.Context, identifier string) (time.Time, error) {
	if identifier == "" {
		return time.Time{}, nil
	}

	ttl, err := g.redis.PTTL(ctx, g.lockKey(identifier)).Result()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
	}
	if ttl <= 0 {
		return time.Time{}, nil
	}
	return time.Now().Add(ttl), nil
}

// FailureCount returns the current attempt counter for an identifier.
// Missing keys return zero and do not reveal account existence.
func (g *LockoutGuard) FailureCount(ctx context.Context, identifier string) (int, error) {
	count, err := g.redis.Get(ctx, g.attemptsKey(identifier)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
	}
	return int(count), nil
}
