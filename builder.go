package authcore

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/veriport/authcore/clienttoken"
	"github.com/veriport/authcore/internal"
	internalaudit "github.com/veriport/authcore/internal/audit"
	"github.com/veriport/authcore/internal/limiters"
	internalmetrics "github.com/veriport/authcore/internal/metrics"
	"github.com/veriport/authcore/internal/rate"
	"github.com/veriport/authcore/password"
	"github.com/veriport/authcore/pii"
	"github.com/veriport/authcore/session"
)

// Builder assembles an [Engine]. A Builder is single-use: Build returns an
// error on the second call.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	credentials CredentialProvider
	auditSink   AuditSink
	clock       func() time.Time

	built bool
}

// New returns a Builder preloaded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing sessions, lockouts, and rate
// limits. Required.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithCredentialProvider sets the principal lookup used by Login. Optional;
// without it Login returns [ErrEngineNotReady] and the session, credential,
// and PII operations remain fully usable.
func (b *Builder) WithCredentialProvider(cp CredentialProvider) *Builder {
	b.credentials = cp
	return b
}

// WithAuditSink sets the destination for audit events. Implies nothing about
// Audit.Enabled; both must be set for events to flow.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles in-process metric collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles validate-path latency histograms.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithClock overrides the engine time source. Intended for tests.
func (b *Builder) WithClock(clock func() time.Time) *Builder {
	b.clock = clock
	return b
}

// Build validates the configuration and assembles the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	codec, err := password.NewCodec(password.Config{
		Iterations: cfg.Password.Iterations,
		SaltLength: cfg.Password.SaltLength,
		KeyLength:  cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	lockout := limiters.NewLockoutGuard(b.redis, limiters.LockoutConfig{
		Threshold:    cfg.Lockout.Threshold,
		Window:       cfg.Lockout.Window,
		LockDuration: cfg.Lockout.LockDuration,
	})

	engine := &Engine{
		config:        cfg,
		sessionStore:  session.NewStore(b.redis, cfg.Session.RedisPrefix),
		lockout:       lockout,
		rateLimiter:   rate.New(b.redis, cfg.RateLimit.RedisPrefix),
		passwordCodec: codec,
		credentials:   b.credentials,
		clock:         b.clock,
	}
	if engine.clock == nil {
		engine.clock = time.Now
	}

	decoy, err := internal.NewCSRFToken()
	if err != nil {
		return nil, err
	}
	if engine.decoyRecord, err = codec.Hash(decoy); err != nil {
		return nil, err
	}

	if len(cfg.PII.MasterSecret) > 0 {
		cipher, err := pii.NewCipher(cfg.PII.MasterSecret)
		if err != nil {
			return nil, err
		}
		engine.piiCipher = cipher
	}

	if len(cfg.ClientToken.PrivateKey) > 0 {
		manager, err := clienttoken.NewManager(clienttoken.Config{
			TTL:           cfg.ClientToken.TTL,
			SigningMethod: cfg.ClientToken.SigningMethod,
			PrivateKey:    cfg.ClientToken.PrivateKey,
			PublicKey:     cfg.ClientToken.PublicKey,
			Issuer:        cfg.ClientToken.Issuer,
			Leeway:        cfg.ClientToken.Leeway,
		})
		if err != nil {
			return nil, err
		}
		engine.clientTokens = manager
	}

	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	engine.metrics = internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Metrics.Enabled,
		EnableLatency: cfg.Metrics.EnableLatencyHistograms,
	})

	return engine, nil
}
