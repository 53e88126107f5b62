package authcore

import (
	"errors"
	"time"

	"github.com/veriport/authcore/clienttoken"
	"github.com/veriport/authcore/password"
)

// Config is the root engine configuration. Instances are configured during
// initialization and treated as immutable afterwards.
type Config struct {
	Session     SessionConfig
	Lockout     LockoutConfig
	RateLimit   RateLimitConfig
	Password    PasswordConfig
	PII         PIIConfig
	Security    SecurityConfig
	ClientToken ClientTokenConfig
	Audit       AuditConfig
	Metrics     MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls session lifetimes and the Redis key layout.
type SessionConfig struct {
	// TTL is the absolute lifetime of a standard session.
	TTL time.Duration
	// RememberMeTTL is the absolute lifetime when RememberMe is requested.
	RememberMeTTL time.Duration
	// IdleTimeout rejects sessions whose last activity is older than this,
	// independent of absolute expiry.
	IdleTimeout time.Duration
	RedisPrefix string
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// LockoutConfig controls the failed-login attempt guard.
type LockoutConfig struct {
	// Threshold is the number of consecutive failures that opens a lock.
	Threshold int
	// Window bounds how long the failure counter survives without activity.
	Window time.Duration
	// LockDuration is how long a triggered lock denies login attempts.
	LockDuration time.Duration
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig controls the general-purpose sliding-window limiter.
type RateLimitConfig struct {
	RedisPrefix string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig selects key-derivation cost and strength policy.
type PasswordConfig struct {
	Iterations int
	SaltLength int
	KeyLength  int
	Policy     password.Policy
}

/*
====================================
PII CONFIG
====================================
*/

// PIIConfig enables authenticated field encryption. PII operations are
// disabled when MasterSecret is empty.
type PIIConfig struct {
	MasterSecret []byte
	// MaskVisibleChars is the default prefix/suffix length kept visible by
	// MaskForDisplay.
	MaskVisibleChars int
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig controls client binding on session validation.
type SecurityConfig struct {
	// EnforceIPBinding rejects validation when the inbound IP differs from
	// the IP bound at session creation.
	EnforceIPBinding bool
	// EnforceUABinding rejects validation when the inbound user agent
	// differs from the one bound at session creation.
	EnforceUABinding bool
}

/*
====================================
CLIENT TOKEN CONFIG
====================================
*/

// ClientTokenConfig enables signed, sanitized session projections for
// stateless edge checks. Disabled when PrivateKey is empty.
type ClientTokenConfig struct {
	TTL           time.Duration
	SigningMethod clienttoken.SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking the request path when the
	// buffer is saturated.
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls in-process metric collection.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the baseline configuration: 24h sessions, 30d
// remember-me sessions, 24h idle timeout, lockout after 5 failures for
// 15 minutes, and a 10000-iteration credential KDF.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			TTL:           24 * time.Hour,
			RememberMeTTL: 30 * 24 * time.Hour,
			IdleTimeout:   24 * time.Hour,
			RedisPrefix:   "vs",
		},
		Lockout: LockoutConfig{
			Threshold:    5,
			Window:       15 * time.Minute,
			LockDuration: 15 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			RedisPrefix: "rlw",
		},
		Password: PasswordConfig{
			Iterations: 10000,
			SaltLength: 16,
			KeyLength:  32,
			Policy:     password.DefaultPolicy(),
		},
		PII: PIIConfig{
			MaskVisibleChars: 2,
		},
		ClientToken: ClientTokenConfig{
			TTL:           5 * time.Minute,
			SigningMethod: clienttoken.MethodHS256,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.PII.MasterSecret = cloneBytes(cfg.PII.MasterSecret)
	out.ClientToken.PrivateKey = cloneBytes(cfg.ClientToken.PrivateKey)
	out.ClientToken.PublicKey = cloneBytes(cfg.ClientToken.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate rejects configurations that would weaken the security posture or
// cannot be served.
func (c *Config) Validate() error {
	if c.Session.TTL <= 0 {
		return errors.New("session TTL must be positive")
	}
	if c.Session.RememberMeTTL < c.Session.TTL {
		return errors.New("remember-me TTL must not be shorter than session TTL")
	}
	if c.Session.IdleTimeout <= 0 {
		return errors.New("session idle timeout must be positive")
	}
	if c.Session.RedisPrefix == "" {
		return errors.New("session redis prefix required")
	}
	if c.Lockout.Threshold < 1 {
		return errors.New("lockout threshold must be at least 1")
	}
	if c.Lockout.Window <= 0 || c.Lockout.LockDuration <= 0 {
		return errors.New("lockout window and lock duration must be positive")
	}
	if c.RateLimit.RedisPrefix == "" {
		return errors.New("rate limit redis prefix required")
	}
	if c.Password.Iterations < 1000 {
		return errors.New("password iterations below minimum")
	}
	if c.Password.SaltLength < 16 || c.Password.KeyLength < 16 {
		return errors.New("password salt and key length below minimum")
	}
	if c.Password.Policy.MinLength < 1 {
		return errors.New("password policy minimum length required")
	}
	if len(c.PII.MasterSecret) > 0 && len(c.PII.MasterSecret) < 16 {
		return errors.New("pii master secret too short")
	}
	if c.PII.MaskVisibleChars < 0 {
		return errors.New("mask visible chars must not be negative")
	}
	if len(c.ClientToken.PrivateKey) > 0 && c.ClientToken.TTL <= 0 {
		return errors.New("client token TTL must be positive")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 1 {
		return errors.New("audit buffer size must be at least 1")
	}
	return nil
}
