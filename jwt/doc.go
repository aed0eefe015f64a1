// Package jwt implements the signed access token codec: short-lived,
// tamper-evident HS256 tokens carrying identity and role claims.
//
// # Architecture boundaries
//
// This package owns claim construction, signing, and verification. It never
// touches the session store: Verify is a pure local check so it can run on
// every request without I/O.
//
// # What this package must NOT do
//
//   - Access Redis or any I/O.
//   - Consult a revocation list (revocation lives at the refresh layer).
//   - Embed key material; the symmetric key is injected via [Config].
package jwt
