// Package rate provides the Redis-backed sliding-window primitive used for
// attempt budgeting across authcore.
//
// # Window semantics
//
// Each key maps to a sorted set of attempt timestamps (milliseconds). A check
// prunes entries older than the window, counts the remainder, and records the
// attempt only when it is allowed — all inside one Lua script, so concurrent
// checks against the same key serialize in Redis.
//
// # What this package must NOT do
//
//   - Implement domain-specific policies (those live in internal/limiters).
//   - Be imported outside the authcore module.
package rate
