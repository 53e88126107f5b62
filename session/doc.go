// Package session provides Redis-backed session persistence and compact
// binary session encoding for authentication hot paths.
//
// # Binary encoding
//
// Sessions are stored in Redis as a compact versioned binary blob. The opaque
// token is the storage key and never appears inside the blob. The encoder is
// append-only: new versions add fields but never reinterpret old ones.
//
// # Architecture boundaries
//
// This package owns the [Store] (Redis operations) and the [Session] model.
// It does NOT decide whether a session is still valid — absolute expiry, the
// idle window, client binding, and lockout are enforced by the Engine. The
// Redis TTL is only a backstop against orphaned records.
//
// # What this package must NOT do
//
//   - Import authcore (no upward imports).
//   - Perform application-level authorization decisions.
//   - Store plaintext secrets or PII in [Session] fields.
package session
