// Package middleware exposes HTTP middleware adapters for session, CSRF, and
// request-rate enforcement built on top of authcore.Engine validation.
//
// # Guards
//
//   - [Guard] — validates the session token (Authorization header or
//     cookie) and injects the trusted projection into the request context.
//   - [RequireRole] — role allow-list on top of Guard.
//   - [CSRF] — anti-forgery token enforcement on unsafe methods.
//   - [Throttle] — per-client in-process token bucket.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// the engine.
//
// # What this package must NOT do
//
//   - Read or write session state directly (Engine handles I/O).
//   - Compare CSRF tokens itself (delegates to Engine.ValidateCSRFToken).
//   - Make authorization decisions beyond the configured role allow-list.
package middleware
