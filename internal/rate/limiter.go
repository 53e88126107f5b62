package rate

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sliding-window check: prune timestamps older than the window, count what
// remains, and record the attempt only when it is allowed. The whole sequence
// runs as one Lua script so concurrent attempts on the same key cannot both
// slip under the limit.
const slidingWindowScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
local member = ARGV[4]

redis.call("ZREMRANGEBYSCORE", key, 0, now - window)
local count = redis.call("ZCARD", key)
if count >= max then
  return 0
end
redis.call("ZADD", key, now, member)
redis.call("PEXPIRE", key, window)
return 1
`

var slidingWindowLua = redis.NewScript(slidingWindowScript)

// Limiter enforces sliding-window attempt budgets keyed by arbitrary strings
// (login identifiers, IPs, API keys). Attempt timestamps live in a Redis
// sorted set that is pruned on every check.
type Limiter struct {
	redis  redis.UniversalClient
	prefix string
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, prefix string) *Limiter {
	if prefix == "" {
		prefix = "rlw"
	}
	return &Limiter{redis: redisClient, prefix: prefix}
}

func (l *Limiter) key(k string) string {
	return l.prefix + ":" + k
}

// Allow reports whether an attempt under key fits inside the budget of
// maxAttempts per window. Allowed attempts are recorded; denied attempts
// leave the window untouched.
func (l *Limiter) Allow(ctx context.Context, key string, maxAttempts int, window time.Duration) (bool, error) {
	if maxAttempts <= 0 || window <= 0 {
		return false, ErrRateLimited
	}

	member, err := uniqueMember()
	if err != nil {
		return false, err
	}

	res, err := slidingWindowLua.Run(
		ctx,
		l.redis,
		[]string{l.key(key)},
		time.Now().UnixMilli(),
		window.Milliseconds(),
		maxAttempts,
		member,
	).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return res == 1, nil
}

// Remaining returns how many attempts are left in the current window.
func (l *Limiter) Remaining(ctx context.Context, key string, maxAttempts int, window time.Duration) (int, error) {
	now := time.Now().UnixMilli()
	k := l.key(key)

	if err := l.redis.ZRemRangeByScore(ctx, k, "0", fmt.Sprintf("%d", now-window.Milliseconds())).Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	count, err := l.redis.ZCard(ctx, k).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	left := maxAttempts - int(count)
	if left < 0 {
		left = 0
	}
	return left, nil
}

// Clear drops the window for key.
func (l *Limiter) Clear(ctx context.Context, key string) error {
	if err := l.redis.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// uniqueMember disambiguates attempts that land on the same millisecond.
func uniqueMember() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}
