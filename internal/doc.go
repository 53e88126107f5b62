// Package internal holds shared primitives used across authcore: opaque
// session tokens, CSRF token generation, constant-time comparison, and
// client binding hashes. Nothing here is part of the public API.
package internal
