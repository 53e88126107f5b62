package authcore

import "time"

// SecurityReport summarizes the engine's effective security posture for
// startup logging and operational review. It contains no secrets.
type SecurityReport struct {
	SessionTTL        time.Duration
	RememberMeTTL     time.Duration
	IdleTimeout       time.Duration
	IPBindingEnforced bool
	UABindingEnforced bool

	LockoutThreshold int
	LockoutDuration  time.Duration

	KDF PasswordConfigReport

	PIIEncryptionActive bool
	ClientTokensActive  bool
	AuditActive         bool
	MetricsActive       bool
}

// PasswordConfigReport echoes the key-derivation cost parameters.
type PasswordConfigReport struct {
	Iterations int
	SaltLength int
	KeyLength  int
}

// SecurityReport returns the current posture summary.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	return SecurityReport{
		SessionTTL:        e.config.Session.TTL,
		RememberMeTTL:     e.config.Session.RememberMeTTL,
		IdleTimeout:       e.config.Session.IdleTimeout,
		IPBindingEnforced: e.config.Security.EnforceIPBinding,
		UABindingEnforced: e.config.Security.EnforceUABinding,
		LockoutThreshold:  e.config.Lockout.Threshold,
		LockoutDuration:   e.config.Lockout.LockDuration,
		KDF: PasswordConfigReport{
			Iterations: e.config.Password.Iterations,
			SaltLength: e.config.Password.SaltLength,
			KeyLength:  e.config.Password.KeyLength,
		},
		PIIEncryptionActive: e.piiCipher != nil,
		ClientTokensActive:  e.clientTokens != nil,
		AuditActive:         e.audit != nil,
		MetricsActive:       e.config.Metrics.Enabled,
	}
}
