package authcore

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/veriport/authcore/internal/audit"
	internalmetrics "github.com/veriport/authcore/internal/metrics"
)

// Role is the coarse authorization level stored on a session.
type Role string

const (
	// RoleUser is the default role for authenticated principals.
	RoleUser Role = "user"
	// RoleModerator grants elevated review capabilities.
	RoleModerator Role = "moderator"
	// RoleAdmin grants full administrative capabilities.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// ClientContext carries the request-side client attributes a session may be
// bound to. Both fields are optional; empty values bind nothing.
type ClientContext struct {
	IP        string
	UserAgent string
}

// SessionInfo is returned to the collaborator that owns the session token.
// It is the only projection that includes the token and CSRF token.
type SessionInfo struct {
	Token       string
	PrincipalID string
	Email       string
	Role        Role

	CSRFToken string

	Verified        bool
	ProfileComplete bool
	RememberMe      bool

	CreatedAt    time.Time
	LastActivity time.Time
	ExpiresAt    time.Time
}

// ClientSession is the sanitized projection safe to hand to templates or
// browser-facing responses. It never includes the session or CSRF token.
type ClientSession struct {
	IsLoggedIn      bool   `json:"isLoggedIn"`
	UserID          string `json:"userId,omitempty"`
	Email           string `json:"email,omitempty"`
	Role            Role   `json:"role,omitempty"`
	Verified        bool   `json:"isVerified"`
	ProfileComplete bool   `json:"profileComplete"`
}

// Client converts the trusted projection into the sanitized one.
func (s *SessionInfo) Client() ClientSession {
	if s == nil {
		return ClientSession{}
	}
	return ClientSession{
		IsLoggedIn:      true,
		UserID:          s.PrincipalID,
		Email:           s.Email,
		Role:            s.Role,
		Verified:        s.Verified,
		ProfileComplete: s.ProfileComplete,
	}
}

// LockoutStatus reports the lockout state after a recorded failure or probe.
type LockoutStatus struct {
	Locked       bool
	AttemptsLeft int
	LockedUntil  time.Time
}

// SessionUpdate names the session-safe fields [Engine.UpdateSession] may
// mutate. Nil pointers leave the field unchanged.
type SessionUpdate struct {
	Role            *Role
	Email           *string
	Verified        *bool
	ProfileComplete *bool
}

// CreateSessionInput carries everything needed to issue a session after the
// caller has authenticated the principal.
type CreateSessionInput struct {
	PrincipalID     string
	Email           string
	Role            Role
	Verified        bool
	ProfileComplete bool
	RememberMe      bool
	Client          ClientContext
}

// Principal is the credential-bearing account record supplied by the
// [CredentialProvider]. PasswordRecord holds the salt:hash encoding produced
// by [Engine.HashPassword]; it never crosses back over the public surface.
type Principal struct {
	ID              string
	Email           string
	PasswordRecord  string
	Role            Role
	Verified        bool
	ProfileComplete bool
}

// CredentialProvider looks up principals during login. Implementations must
// return [ErrInvalidCredentials]-compatible misses by returning (nil, nil);
// the engine folds "not found" and "wrong password" into one error itself.
type CredentialProvider interface {
	GetByIdentifier(ctx context.Context, identifier string) (*Principal, error)
}

/*
====================================
AUDIT SURFACE
====================================
*/

// AuditEvent is the record delivered to an [AuditSink].
type AuditEvent = internalaudit.Event

// AuditSink receives audit events emitted by the engine.
type AuditSink = internalaudit.Sink

// NoOpSink drops all audit events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink buffers audit events in a channel for consumption by the host
// application.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes one JSON-encoded audit event per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink returns a ChannelSink with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a sink writing newline-delimited JSON to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

/*
====================================
METRICS SURFACE
====================================
*/

// MetricID identifies a single engine counter or histogram.
type MetricID = internalmetrics.MetricID

const (
	// MetricLoginSuccess counts successful Login calls.
	MetricLoginSuccess = internalmetrics.MetricLoginSuccess
	// MetricLoginFailure counts rejected Login calls.
	MetricLoginFailure = internalmetrics.MetricLoginFailure
	// MetricLoginLocked counts logins rejected by an active lockout.
	MetricLoginLocked = internalmetrics.MetricLoginLocked
	// MetricLockoutTriggered counts lockout windows opened.
	MetricLockoutTriggered = internalmetrics.MetricLockoutTriggered
	// MetricSessionCreated counts sessions issued.
	MetricSessionCreated = internalmetrics.MetricSessionCreated
	// MetricSessionValidated counts successful validations.
	MetricSessionValidated = internalmetrics.MetricSessionValidated
	// MetricSessionExpired counts validations rejected by expiry or idle
	// timeout.
	MetricSessionExpired = internalmetrics.MetricSessionExpired
	// MetricSessionDestroyed counts explicit session destructions.
	MetricSessionDestroyed = internalmetrics.MetricSessionDestroyed
	// MetricClientMismatch counts strict-binding rejections.
	MetricClientMismatch = internalmetrics.MetricClientMismatch
	// MetricCSRFMismatch counts CSRF validation failures.
	MetricCSRFMismatch = internalmetrics.MetricCSRFMismatch
	// MetricRateLimitHit counts sliding-window rejections.
	MetricRateLimitHit = internalmetrics.MetricRateLimitHit
	// MetricPasswordHashed counts HashPassword calls.
	MetricPasswordHashed = internalmetrics.MetricPasswordHashed
	// MetricPasswordVerifyFailed counts failed password verifications.
	MetricPasswordVerifyFailed = internalmetrics.MetricPasswordVerifyFailed
	// MetricFieldEncrypted counts EncryptField calls.
	MetricFieldEncrypted = internalmetrics.MetricFieldEncrypted
	// MetricDecryptFailure counts fail-closed decryptions.
	MetricDecryptFailure = internalmetrics.MetricDecryptFailure
	// MetricValidateLatency is the ValidateSession latency histogram.
	MetricValidateLatency = internalmetrics.MetricValidateLatency
)

// MetricsSnapshot is a point-in-time copy of all engine metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// MetricBucketBoundsMs lists the histogram bucket upper bounds in
// milliseconds; the final implicit bucket is +Inf.
func MetricBucketBoundsMs() []float64 {
	bounds := make([]float64, len(internalmetrics.BucketBoundsMs))
	copy(bounds, internalmetrics.BucketBoundsMs)
	return bounds
}
