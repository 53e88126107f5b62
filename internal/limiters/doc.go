// Package limiters provides the failed-login lockout guard.
//
// # Components
//
//   - [LockoutGuard] — per-identifier failure counter with a rolling window
//     and a temporary lock key once the threshold is reached.
//
// # Architecture boundaries
//
// The guard owns its Redis key namespace (lka:/lkl:). Policy thresholds come
// from [LockoutConfig] supplied at construction time.
//
// # What this package must NOT do
//
//   - Import authcore or any sibling internal package except internal/rate.
//   - Make policy decisions beyond counting — the Engine decides consequences.
package limiters
