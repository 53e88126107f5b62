package authcore

import (
	"context"
	"time"

	"github.com/veriport/authcore/clienttoken"
	internalaudit "github.com/veriport/authcore/internal/audit"
	"github.com/veriport/authcore/internal/limiters"
	internalmetrics "github.com/veriport/authcore/internal/metrics"
	"github.com/veriport/authcore/internal/rate"
	"github.com/veriport/authcore/password"
	"github.com/veriport/authcore/pii"
	"github.com/veriport/authcore/session"
)

// Engine is the session and credential lifecycle manager. Construct it
// through [Builder.Build]; all methods are safe for concurrent use.
type Engine struct {
	config Config

	sessionStore  *session.Store
	lockout       *limiters.LockoutGuard
	rateLimiter   *rate.Limiter
	passwordCodec *password.Codec
	piiCipher     *pii.Cipher
	clientTokens  *clienttoken.Manager
	credentials   CredentialProvider

	audit   *internalaudit.Dispatcher
	metrics *internalmetrics.Metrics

	// decoyRecord is verified against when the identifier is unknown so
	// both miss and mismatch cost one key derivation.
	decoyRecord string

	clock func() time.Time
}

// Close flushes and stops the audit dispatcher. Engine methods must not be
// called after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were dropped due to a full
// buffer since startup.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all engine metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) now() time.Time {
	if e == nil || e.clock == nil {
		return time.Now()
	}
	return e.clock()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, d)
}

func (e *Engine) auditEmit(ctx context.Context, event AuditEvent) {
	if e == nil || e.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = e.now()
	}
	e.audit.Emit(ctx, event)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
