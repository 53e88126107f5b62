// Package pii implements authenticated encryption for personally
// identifiable fields stored at rest.
//
// # Envelope format
//
// Each encrypted field is base64(salt ‖ nonce ‖ ciphertext+tag) where the
// 16-byte salt feeds PBKDF2 key derivation from the master secret and the
// 12-byte nonce is the explicit AES-GCM IV. Both are freshly random on every
// call.
//
// # What this package must NOT do
//
//   - Cache derived keys across calls — salt reuse would defeat the envelope.
//   - Return partial plaintext or the raw ciphertext on a failed decrypt.
//   - Import any other authcore package.
package pii
