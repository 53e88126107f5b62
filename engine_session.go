package authcore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/veriport/authcore/internal"
	"github.com/veriport/authcore/session"
)

var zeroBinding [32]byte

// CreateSession issues a new session for an already-authenticated principal.
// It generates a fresh opaque token and CSRF token, binds the supplied
// client attributes, clears any pending lockout counter for the principal,
// and persists the record.
func (e *Engine) CreateSession(ctx context.Context, input CreateSessionInput) (*SessionInfo, error) {
	if e == nil || e.sessionStore == nil {
		return nil, ErrEngineNotReady
	}
	if input.PrincipalID == "" {
		return nil, fmt.Errorf("%w: principal id required", ErrSessionNotFound)
	}
	if !input.Role.Valid() {
		return nil, ErrRoleInvalid
	}

	token, err := internal.NewSessionToken()
	if err != nil {
		return nil, err
	}
	csrf, err := internal.NewCSRFToken()
	if err != nil {
		return nil, err
	}

	now := e.now()
	ttl := e.config.Session.TTL
	if input.RememberMe {
		ttl = e.config.Session.RememberMeTTL
	}

	sess := &session.Session{
		Token:           token.String(),
		PrincipalID:     input.PrincipalID,
		Email:           input.Email,
		Role:            string(input.Role),
		CSRFToken:       csrf,
		Verified:        input.Verified,
		ProfileComplete: input.ProfileComplete,
		RememberMe:      input.RememberMe,
		CreatedAt:       now.Unix(),
		LastActivity:    now.Unix(),
		ExpiresAt:       now.Add(ttl).Unix(),
	}
	if input.Client.IP != "" {
		sess.IPHash = internal.HashBindingValue(input.Client.IP)
	}
	if input.Client.UserAgent != "" {
		sess.UserAgentHash = internal.HashBindingValue(input.Client.UserAgent)
	}

	if err := e.sessionStore.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// A fresh authenticated session proves the principal can log in; any
	// partially accumulated failure count is stale. Both lockout keys are
	// cleared since login bookkeeping runs under the identifier.
	for _, key := range []string{input.PrincipalID, input.Email} {
		if key == "" {
			continue
		}
		if err := e.lockout.Reset(ctx, key); err != nil {
			e.auditEmit(ctx, AuditEvent{
				EventType:   "lockout_reset_failed",
				PrincipalID: input.PrincipalID,
				Error:       errString(err),
			})
		}
	}

	e.metricInc(MetricSessionCreated)
	e.auditEmit(ctx, AuditEvent{
		EventType:   "session_created",
		PrincipalID: input.PrincipalID,
		SessionID:   sess.Token,
		IP:          input.Client.IP,
		Success:     true,
	})

	return e.toInfo(sess), nil
}

// ValidateSession checks an inbound token and returns the trusted session
// projection. Rejection order: unknown token, expiry or idle timeout (which
// destroys the session), client binding, active principal lockout. On
// success the idle window slides: LastActivity is set to now and persisted.
func (e *Engine) ValidateSession(ctx context.Context, token string, client ClientContext) (*SessionInfo, error) {
	if e == nil || e.sessionStore == nil {
		return nil, ErrEngineNotReady
	}
	started := e.now()

	if _, err := internal.ParseSessionToken(token); err != nil {
		return nil, ErrSessionNotFound
	}

	sess, err := e.sessionStore.Get(ctx, token)
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	now := e.now()
	if e.sessionDead(sess, now) {
		e.destroyQuietly(ctx, sess.Token)
		e.metricInc(MetricSessionExpired)
		e.auditEmit(ctx, AuditEvent{
			EventType:   "session_expired",
			PrincipalID: sess.PrincipalID,
			SessionID:   sess.Token,
		})
		return nil, ErrSessionExpired
	}

	if err := e.checkClientBinding(sess, client); err != nil {
		e.metricInc(MetricClientMismatch)
		e.auditEmit(ctx, AuditEvent{
			EventType:   "client_mismatch",
			PrincipalID: sess.PrincipalID,
			SessionID:   sess.Token,
			IP:          client.IP,
		})
		return nil, err
	}

	locked, err := e.principalLocked(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if locked {
		return nil, ErrAccountLocked
	}

	sess.LastActivity = now.Unix()
	if err := e.sessionStore.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metricInc(MetricSessionValidated)
	e.metricObserve(MetricValidateLatency, e.now().Sub(started))
	return e.toInfo(sess), nil
}

// RefreshSession slides the idle window without altering the absolute
// expiry. An expired session is destroyed and reported as such.
func (e *Engine) RefreshSession(ctx context.Context, token string) error {
	if e == nil || e.sessionStore == nil {
		return ErrEngineNotReady
	}
	sess, err := e.sessionStore.Get(ctx, token)
	if errors.Is(err, redis.Nil) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	now := e.now()
	if e.sessionDead(sess, now) {
		e.destroyQuietly(ctx, sess.Token)
		e.metricInc(MetricSessionExpired)
		return ErrSessionExpired
	}

	sess.LastActivity = now.Unix()
	if err := e.sessionStore.Update(ctx, sess); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// DestroySession removes a session. It is idempotent and succeeds when the
// token is unknown, malformed, or already destroyed.
func (e *Engine) DestroySession(ctx context.Context, token string) error {
	if e == nil || e.sessionStore == nil {
		return ErrEngineNotReady
	}
	if token == "" {
		return nil
	}
	if err := e.sessionStore.Delete(ctx, token); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	e.metricInc(MetricSessionDestroyed)
	e.auditEmit(ctx, AuditEvent{
		EventType: "session_destroyed",
		SessionID: token,
		Success:   true,
	})
	return nil
}

// DestroyAllSessions removes every active session for the principal.
func (e *Engine) DestroyAllSessions(ctx context.Context, principalID string) error {
	if e == nil || e.sessionStore == nil {
		return ErrEngineNotReady
	}
	if err := e.sessionStore.DeleteAllForPrincipal(ctx, principalID); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	e.auditEmit(ctx, AuditEvent{
		EventType:   "sessions_destroyed_all",
		PrincipalID: principalID,
		Success:     true,
	})
	return nil
}

// UpdateSession mutates the session-safe fields named in update and slides
// the idle window. Token, principal, CSRF token, bindings, and expiry cannot
// be changed; a new session must be created for those.
func (e *Engine) UpdateSession(ctx context.Context, token string, update SessionUpdate) (*SessionInfo, error) {
	if e == nil || e.sessionStore == nil {
		return nil, ErrEngineNotReady
	}
	sess, err := e.sessionStore.Get(ctx, token)
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	now := e.now()
	if e.sessionDead(sess, now) {
		e.destroyQuietly(ctx, sess.Token)
		e.metricInc(MetricSessionExpired)
		return nil, ErrSessionExpired
	}

	if update.Role != nil {
		if !update.Role.Valid() {
			return nil, ErrRoleInvalid
		}
		sess.Role = string(*update.Role)
	}
	if update.Email != nil {
		sess.Email = *update.Email
	}
	if update.Verified != nil {
		sess.Verified = *update.Verified
	}
	if update.ProfileComplete != nil {
		sess.ProfileComplete = *update.ProfileComplete
	}
	sess.LastActivity = now.Unix()

	if err := e.sessionStore.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return e.toInfo(sess), nil
}

// ActiveSessionTokens lists the tokens currently indexed for a principal.
func (e *Engine) ActiveSessionTokens(ctx context.Context, principalID string) ([]string, error) {
	if e == nil || e.sessionStore == nil {
		return nil, ErrEngineNotReady
	}
	tokens, err := e.sessionStore.ActiveTokens(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return tokens, nil
}

// principalLocked probes the lockout guard under every key the session's
// principal can be locked by. Login bookkeeping is keyed by the login
// identifier, so an email-bound lock must deny the principal's existing
// sessions too.
func (e *Engine) principalLocked(ctx context.Context, sess *session.Session) (bool, error) {
	locked, err := e.lockout.IsLocked(ctx, sess.PrincipalID)
	if err != nil || locked {
		return locked, err
	}
	if sess.Email != "" && sess.Email != sess.PrincipalID {
		return e.lockout.IsLocked(ctx, sess.Email)
	}
	return false, nil
}

func (e *Engine) sessionDead(sess *session.Session, now time.Time) bool {
	if now.Unix() >= sess.ExpiresAt {
		return true
	}
	idle := now.Unix() - sess.LastActivity
	return idle > int64(e.config.Session.IdleTimeout/time.Second)
}

func (e *Engine) checkClientBinding(sess *session.Session, client ClientContext) error {
	if e.config.Security.EnforceIPBinding && sess.IPHash != zeroBinding {
		got := internal.HashBindingValue(client.IP)
		if !internal.ConstantTimeEqualBytes(got[:], sess.IPHash[:]) {
			return ErrClientMismatch
		}
	}
	if e.config.Security.EnforceUABinding && sess.UserAgentHash != zeroBinding {
		got := internal.HashBindingValue(client.UserAgent)
		if !internal.ConstantTimeEqualBytes(got[:], sess.UserAgentHash[:]) {
			return ErrClientMismatch
		}
	}
	return nil
}

func (e *Engine) destroyQuietly(ctx context.Context, token string) {
	if err := e.sessionStore.Delete(ctx, token); err != nil {
		e.auditEmit(ctx, AuditEvent{
			EventType: "session_destroy_failed",
			SessionID: token,
			Error:     errString(err),
		})
	}
}

func (e *Engine) toInfo(sess *session.Session) *SessionInfo {
	return &SessionInfo{
		Token:           sess.Token,
		PrincipalID:     sess.PrincipalID,
		Email:           sess.Email,
		Role:            Role(sess.Role),
		CSRFToken:       sess.CSRFToken,
		Verified:        sess.Verified,
		ProfileComplete: sess.ProfileComplete,
		RememberMe:      sess.RememberMe,
		CreatedAt:       time.Unix(sess.CreatedAt, 0),
		LastActivity:    time.Unix(sess.LastActivity, 0),
		ExpiresAt:       time.Unix(sess.ExpiresAt, 0),
	}
}
