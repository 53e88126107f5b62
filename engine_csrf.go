package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/veriport/authcore/internal"
)

// RotateCSRFToken replaces the CSRF token bound to the session and returns
// the new value. The previous token stops validating immediately. An expired
// session cannot be rotated back to life; it is destroyed and reported as
// expired, exactly as on validation.
func (e *Engine) RotateCSRFToken(ctx context.Context, token string) (string, error) {
	if e == nil || e.sessionStore == nil {
		return "", ErrEngineNotReady
	}
	sess, err := e.sessionStore.Get(ctx, token)
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	now := e.now()
	if e.sessionDead(sess, now) {
		e.destroyQuietly(ctx, sess.Token)
		e.metricInc(MetricSessionExpired)
		return "", ErrSessionExpired
	}

	csrf, err := internal.NewCSRFToken()
	if err != nil {
		return "", err
	}
	sess.CSRFToken = csrf
	sess.LastActivity = now.Unix()

	if err := e.sessionStore.Update(ctx, sess); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return csrf, nil
}

// ValidateCSRFToken checks a supplied token against the one bound to the
// session. State-changing handlers must call this before running any side
// effect. The comparison is constant time.
func (e *Engine) ValidateCSRFToken(ctx context.Context, sessionToken, suppliedToken string) error {
	if e == nil || e.sessionStore == nil {
		return ErrEngineNotReady
	}
	sess, err := e.sessionStore.Get(ctx, sessionToken)
	if errors.Is(err, redis.Nil) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if suppliedToken == "" || !internal.ConstantTimeEquals(sess.CSRFToken, suppliedToken) {
		e.metricInc(MetricCSRFMismatch)
		e.auditEmit(ctx, AuditEvent{
			EventType:   "csrf_mismatch",
			PrincipalID: sess.PrincipalID,
			SessionID:   sess.Token,
		})
		return ErrCSRFMismatch
	}
	return nil
}
