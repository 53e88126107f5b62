// Package clienttoken signs short-lived JWT projections of authenticated
// sessions for downstream collaborators.
//
// A client token carries only the sanitized view of a session (principal,
// role, verification flags); the opaque session token and client binding
// hashes never leave the session store. Holding a client token therefore
// proves authentication at issue time but grants no session control.
//
// # What this package must NOT do
//
//   - Embed session tokens, CSRF tokens, or binding hashes in claims.
//   - Import any other authcore package.
package clienttoken
