// Package tokenward is an embeddable session and token authority: HMAC-signed
// short-lived access tokens, opaque rotating refresh tokens with a Redis-backed
// session store, and a pluggable credential check.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// tokenward is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (TokenPair, Identity, SessionInfo, MetricsSnapshot). The
// codec, store, and lifecycle layers live in jwt/, session/, and refresh/;
// everything else — token generation, audit dispatch — sits under internal/
// and is never exported.
//
// # What this package must NOT do
//
//   - Store or validate user profiles. Account storage stays on the host's
//     side of the [UserProvider] boundary.
//   - Embed default secrets. The signing key always comes from the host;
//     Build fails with [ErrSigningConfig] when it is missing or weak.
//   - Serve transport. No HTTP handlers, no middleware — hosts wire Engine
//     methods into their own stack.
//
// # Performance contract
//
// Authenticate is the hot path: a pure local signature-and-expiry check with
// no store round-trip and no allocation beyond the returned claims. Login and
// Refresh are allowed one Redis round-trip; rotation is a single Lua script
// execution, so concurrent rotations of the same token have exactly one
// winner.
package tokenward
