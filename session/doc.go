// Package session implements the Redis-backed session store: opaque
// refresh-token records plus a per-user index of active tokens, with the
// atomic multi-key mutation primitives the rotation protocol depends on.
//
// # Key namespace
//
//	<prefix>:refresh:<token>        JSON record, TTL at the key
//	<prefix>:user-sessions:<userID> SET of token strings, no TTL
//
// # Architecture boundaries
//
// Records are owned here. The refresh manager reads and writes them only
// through this API; no other package touches the keys directly. Absence is
// reported as redis.Nil; transport failures wrap [ErrStoreUnavailable] and
// are never folded into absence.
//
// # What this package must NOT do
//
//   - Generate or interpret token strings (that is the refresh manager's job).
//   - Classify replay vs. expiry (storage treats both as absence).
//   - Hold mutable in-process state; every instance is safe for concurrent use.
package session
