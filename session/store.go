package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable indicates the session backend is unreachable. A missing
// session surfaces as [redis.Nil] so callers can distinguish "gone" from
// "backend down".
var ErrStoreUnavailable = errors.New("session store unavailable")

const minTTL = time.Second

// Store persists sessions in Redis keyed by their opaque token, with a
// per-principal index set so all sessions of one principal can be destroyed
// together. Expiry and idle-timeout decisions belong to the engine; the store
// only enforces the absolute TTL as a Redis expiration backstop.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a session [Store] backed by the given Redis client.
// prefix sets the Redis key namespace.
func NewStore(redisClient redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "vs"
	}
	return &Store{redis: redisClient, prefix: prefix}
}

func (s *Store) key(token string) string {
	return s.prefix + ":" + token
}

func (s *Store) principalKey(principalID string) string {
	return s.prefix + "p:" + principalID
}

// Save persists a session and indexes its token under the principal. The
// Redis TTL tracks the absolute expiry.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	data, err := Encode(sess)
	if err != nil {
		return err
	}

	ttl := time.Until(time.Unix(sess.ExpiresAt, 0))
	if ttl < minTTL {
		ttl = minTTL
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(sess.Token), data, ttl)
		pipe.SAdd(ctx, s.principalKey(sess.PrincipalID), sess.Token)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

// Get retrieves a session by token. Returns [redis.Nil] when the token is
// unknown or its TTL has elapsed.
func (s *Store) Get(ctx context.Context, token string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	sess, err := Decode(data)
	if err != nil {
		return nil, err
	}
	sess.Token = token

	return sess, nil
}

// Update re-persists a mutated session. Last-writer-wins: concurrent touches
// of LastActivity only ever extend validity, so no CAS is needed here.
func (s *Store) Update(ctx context.Context, sess *Session) error {
	data, err := Encode(sess)
	if err != nil {
		return err
	}

	ttl := time.Until(time.Unix(sess.ExpiresAt, 0))
	if ttl < minTTL {
		ttl = minTTL
	}

	if err := s.redis.Set(ctx, s.key(sess.Token), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Delete removes a session and its index entry. Idempotent: deleting a
// missing token is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	data, err := s.redis.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	sess, err := Decode(data)
	if err != nil {
		// Corrupt blob: drop the key anyway so it cannot linger.
		if delErr := s.redis.Del(ctx, s.key(token)).Err(); delErr != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, delErr)
		}
		return nil
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key(token))
		pipe.SRem(ctx, s.principalKey(sess.PrincipalID), token)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

// DeleteAllForPrincipal removes every indexed session of a principal.
//
// ATOMICITY NOTE: the read of the index set and the delete run as separate
// commands. A session created between the two phases survives this call and
// expires naturally; logout-all callers needing stronger guarantees can
// invoke the operation twice.
func (s *Store) DeleteAllForPrincipal(ctx context.Context, principalID string) error {
	principalKey := s.principalKey(principalID)

	tokens, err := s.redis.SMembers(ctx, principalKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, s.key(token))
	}
	keys = append(keys, principalKey)

	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

// ActiveTokens returns the indexed session tokens for a principal. Tokens
// whose sessions already expired may still appear until the next delete.
func (s *Store) ActiveTokens(ctx context.Context, principalID string) ([]string, error) {
	tokens, err := s.redis.SMembers(ctx, s.principalKey(principalID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return tokens, nil
}

// Ping returns a point-in-time backend availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return time.Since(start), nil
}
