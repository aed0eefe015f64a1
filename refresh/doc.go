// Package refresh implements the refresh-token manager: creation,
// validation, rotate-on-use with replay detection, and single/bulk
// invalidation of opaque rotating refresh tokens.
//
// # Token format
//
// Opaque base64url strings carrying 256 bits of crypto/rand entropy. The
// token string is the record's primary key in the session store; rotation
// issues a new token and destroys the old record rather than mutating it.
//
// # Architecture boundaries
//
// This package owns the token lifecycle state machine and the replay/
// mismatch taxonomy. Storage atomicity guarantees live in the session store;
// access-token minting lives in the jwt codec.
//
// # What this package must NOT do
//
//   - Touch Redis keys directly (everything goes through [session.Store]).
//   - Mint or verify access tokens.
//   - Swallow store unavailability into "token absent".
package refresh
