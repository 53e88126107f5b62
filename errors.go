package authcore

import "errors"

var (
	// ErrSessionNotFound is returned when a token is absent, unparseable, or
	// has no backing record.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when a session passed its absolute expiry
	// or idle timeout. The session is destroyed as a side effect.
	ErrSessionExpired = errors.New("session expired")
	// ErrClientMismatch is returned in strict binding mode when the inbound
	// client does not match the client the session was issued to.
	ErrClientMismatch = errors.New("client mismatch")
	// ErrAccountLocked is returned while a lockout window is active for the
	// principal or identifier.
	ErrAccountLocked = errors.New("account locked")
	// ErrCSRFMismatch is returned when a supplied CSRF token does not match
	// the one bound to the session.
	ErrCSRFMismatch = errors.New("csrf token mismatch")
	// ErrInvalidCredentials covers both unknown identifiers and wrong
	// passwords; callers never learn which.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDecryption is returned when an encrypted field fails parsing, key
	// derivation, or tag verification. The field is unreadable; no partial
	// plaintext is ever returned.
	ErrDecryption = errors.New("decryption failed")
	// ErrRateLimited is returned when a sliding-window rate limit rejects an
	// attempt.
	ErrRateLimited = errors.New("rate limited")
	// ErrPasswordPolicy is returned by operations that enforce the password
	// strength policy. Individual violations travel in [PolicyError].
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrRoleInvalid is returned when a role outside the known set is
	// supplied on session creation or update.
	ErrRoleInvalid = errors.New("invalid role")
	// ErrPIIDisabled is returned by EncryptField/DecryptField when no master
	// secret was configured.
	ErrPIIDisabled = errors.New("pii encryption not configured")
	// ErrClientTokensDisabled is returned by client-token operations when no
	// signing key was configured.
	ErrClientTokensDisabled = errors.New("client tokens not configured")
	// ErrEngineNotReady is returned when an Engine method is called on a nil
	// or incompletely built engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrStoreUnavailable wraps Redis transport failures so callers can
	// distinguish infrastructure faults from authentication outcomes.
	ErrStoreUnavailable = errors.New("backing store unavailable")
)

// PolicyError carries the individual strength-policy violations behind
// [ErrPasswordPolicy].
type PolicyError struct {
	Violations []string
}

func (e *PolicyError) Error() string {
	if e == nil || len(e.Violations) == 0 {
		return ErrPasswordPolicy.Error()
	}
	return ErrPasswordPolicy.Error() + ": " + e.Violations[0]
}

// Unwrap makes errors.Is(err, ErrPasswordPolicy) hold for policy errors.
func (e *PolicyError) Unwrap() error {
	return ErrPasswordPolicy
}
