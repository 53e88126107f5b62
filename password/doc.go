// Package password implements password hashing and verification with
// PBKDF2-SHA256 defaults, plus the strength policy applied at registration.
//
// # Output format
//
// Credential records are encoded as:
//
//	<hex(salt)>:<hex(derivedKey)>
//
// A fresh random salt is drawn for every record; the iteration count comes
// from the codec configuration.
//
// # Architecture boundaries
//
// This package owns derivation, verification, and strength validation only.
// Lockout and rate-limiting around login attempts are enforced by the Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive records.
//   - Import any other authcore package.
//   - Log plaintext passwords or derived keys at runtime.
package password
