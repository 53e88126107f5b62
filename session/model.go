package session

// Session is the server-side authentication record persisted by the [Store].
// It is mutated only by the engine; collaborators see a sanitized projection.
//
// Timestamps are Unix seconds. Validity requires LastActivity <= now and
// now < ExpiresAt; the idle window is enforced against LastActivity.
type Session struct {
	Token       string
	PrincipalID string
	Email       string

	Role string

	CSRFToken string

	IPHash        [32]byte
	UserAgentHash [32]byte

	Verified        bool
	ProfileComplete bool
	RememberMe      bool

	CreatedAt    int64
	LastActivity int64
	ExpiresAt    int64
}
