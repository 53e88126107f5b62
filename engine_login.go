package authcore

import (
	"context"
	"fmt"
	"time"
)

// Login authenticates an identifier/password pair and issues a session.
//
// Unknown identifiers and wrong passwords are indistinguishable to the
// caller: both return [ErrInvalidCredentials], and a key derivation runs in
// both cases so response timing does not reveal whether the account exists.
// Failed attempts feed the lockout guard; an active lock rejects the attempt
// before the password is even looked at.
func (e *Engine) Login(ctx context.Context, identifier, pw string, client ClientContext, rememberMe bool) (*SessionInfo, error) {
	if e == nil || e.sessionStore == nil {
		return nil, ErrEngineNotReady
	}
	if e.credentials == nil {
		return nil, fmt.Errorf("%w: no credential provider configured", ErrEngineNotReady)
	}

	locked, err := e.lockout.IsLocked(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if locked {
		e.metricInc(MetricLoginLocked)
		e.auditEmit(ctx, AuditEvent{
			EventType:  "login_locked",
			Identifier: identifier,
			IP:         client.IP,
		})
		return nil, ErrAccountLocked
	}

	principal, err := e.credentials.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("credential lookup: %w", err)
	}

	if principal == nil {
		// Burn a derivation so a miss costs the same as a wrong password.
		_, _ = e.passwordCodec.Verify(pw, e.decoyRecord)
		return nil, e.loginFailed(ctx, identifier, client)
	}

	ok, err := e.passwordCodec.Verify(pw, principal.PasswordRecord)
	if err != nil || !ok {
		return nil, e.loginFailed(ctx, identifier, client)
	}

	if err := e.lockout.Reset(ctx, identifier); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	info, err := e.CreateSession(ctx, CreateSessionInput{
		PrincipalID:     principal.ID,
		Email:           principal.Email,
		Role:            principal.Role,
		Verified:        principal.Verified,
		ProfileComplete: principal.ProfileComplete,
		RememberMe:      rememberMe,
		Client:          client,
	})
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.auditEmit(ctx, AuditEvent{
		EventType:   "login_success",
		PrincipalID: principal.ID,
		Identifier:  identifier,
		SessionID:   info.Token,
		IP:          client.IP,
		Success:     true,
	})
	return info, nil
}

func (e *Engine) loginFailed(ctx context.Context, identifier string, client ClientContext) error {
	e.metricInc(MetricLoginFailure)

	status, lockErr := e.lockout.RecordFailure(ctx, identifier)
	if lockErr != nil {
		e.auditEmit(ctx, AuditEvent{
			EventType:  "lockout_record_failed",
			Identifier: identifier,
			Error:      errString(lockErr),
		})
		return ErrInvalidCredentials
	}

	e.auditEmit(ctx, AuditEvent{
		EventType:  "login_failure",
		Identifier: identifier,
		IP:         client.IP,
	})

	if status.Locked {
		e.metricInc(MetricLockoutTriggered)
		e.auditEmit(ctx, AuditEvent{
			EventType:  "lockout_triggered",
			Identifier: identifier,
			IP:         client.IP,
		})
		return ErrAccountLocked
	}
	return ErrInvalidCredentials
}

// RecordFailedAttempt feeds the lockout guard directly, for callers that
// authenticate outside Login. The returned status reports whether this
// failure opened a lock and how many attempts remain otherwise.
func (e *Engine) RecordFailedAttempt(ctx context.Context, identifier string) (LockoutStatus, error) {
	if e == nil || e.lockout == nil {
		return LockoutStatus{}, ErrEngineNotReady
	}
	status, err := e.lockout.RecordFailure(ctx, identifier)
	if err != nil {
		return LockoutStatus{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if status.Locked {
		e.metricInc(MetricLockoutTriggered)
	}
	return LockoutStatus{
		Locked:       status.Locked,
		AttemptsLeft: status.AttemptsLeft,
		LockedUntil:  status.LockedUntil,
	}, nil
}

// RecordLoginSuccess clears the failure counter and any active lock for the
// identifier.
func (e *Engine) RecordLoginSuccess(ctx context.Context, identifier string) error {
	if e == nil || e.lockout == nil {
		return ErrEngineNotReady
	}
	if err := e.lockout.Reset(ctx, identifier); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// IsLocked reports whether an active lockout denies logins for the
// identifier.
func (e *Engine) IsLocked(ctx context.Context, identifier string) (bool, error) {
	if e == nil || e.lockout == nil {
		return false, ErrEngineNotReady
	}
	locked, err := e.lockout.IsLocked(ctx, identifier)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return locked, nil
}

// LockedUntil reports when an active lockout ends; the zero time means no
// lock is active.
func (e *Engine) LockedUntil(ctx context.Context, identifier string) (time.Time, error) {
	if e == nil || e.lockout == nil {
		return time.Time{}, ErrEngineNotReady
	}
	until, err := e.lockout.LockedUntil(ctx, identifier)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return until, nil
}
