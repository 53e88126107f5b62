package authcore

import "context"

// HashPassword validates pw against the strength policy and derives a
// credential record in salt:hash form. The record is safe to persist; the
// cleartext never is.
func (e *Engine) HashPassword(ctx context.Context, pw string) (string, error) {
	if e == nil || e.passwordCodec == nil {
		return "", ErrEngineNotReady
	}
	if violations := e.config.Password.Policy.Validate(pw); len(violations) > 0 {
		return "", &PolicyError{Violations: violations}
	}

	record, err := e.passwordCodec.Hash(pw)
	if err != nil {
		return "", err
	}
	e.metricInc(MetricPasswordHashed)
	return record, nil
}

// VerifyPassword re-derives the hash with the stored salt and compares in
// constant time. A malformed record verifies as false rather than erroring,
// so storage corruption cannot be distinguished from a wrong password by
// callers.
func (e *Engine) VerifyPassword(ctx context.Context, pw, record string) bool {
	if e == nil || e.passwordCodec == nil {
		return false
	}
	ok, err := e.passwordCodec.Verify(pw, record)
	if err != nil || !ok {
		e.metricInc(MetricPasswordVerifyFailed)
		return false
	}
	return true
}

// ValidatePasswordStrength reports every policy rule pw fails to meet. An
// empty slice means the password is acceptable.
func (e *Engine) ValidatePasswordStrength(pw string) []string {
	if e == nil {
		return []string{"engine not ready"}
	}
	return e.config.Password.Policy.Validate(pw)
}
