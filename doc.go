// Package authcore provides a Redis-backed session and credential lifecycle
// engine: opaque server-side sessions with sliding and absolute expiry, CSRF
// token binding, brute-force lockout tracking, sliding-window rate limiting,
// PBKDF2 password hashing, and authenticated encryption of PII fields.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (SessionInfo, ClientSession, LockoutStatus, MetricsSnapshot).
// All internal coordination — session encoding, lockout counters, rate-limit
// scripts, audit dispatch — lives under internal/ and is never exported.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or encoding details in its
//     public API.
//   - Return raw session tokens, credential records, or key material in any
//     client-visible projection.
//   - Distinguish "unknown principal" from "wrong password" in errors
//     surfaced to callers; both are [ErrInvalidCredentials].
//
// # Performance contract
//
// ValidateSession is the hot path and performs at most two Redis round-trips
// (lock probe and session read) plus one write for the activity touch.
// HashPassword, VerifyPassword, EncryptField, and DecryptField run a slow
// key-derivation function and may take hundreds of milliseconds; callers must
// not hold unrelated locks across them.
package authcore
