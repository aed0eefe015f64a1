package tokenward

import (
	"errors"

	"github.com/tokenward/tokenward/refresh"
	"github.com/tokenward/tokenward/session"
)

var (
	// ErrInvalidCredentials is returned by Login for an unknown user or a
	// failed password check; the two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailNotVerified is returned by Login when the account exists but the
	// email address has not been confirmed and the verified-email gate is on.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrUserNotFound is returned when a rotation succeeded but the user
	// provider no longer resolves the owning account.
	ErrUserNotFound = errors.New("user not found")
	// ErrEngineNotReady is returned when an Engine method is called before a
	// successful Build.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrSigningConfig wraps missing or malformed access-token key material
	// detected at Build time.
	ErrSigningConfig = errors.New("signing configuration invalid")
)

// Leaf taxonomy re-exposed at the root so callers can classify outcomes with
// errors.Is against a single package.
var (
	// ErrTokenAbsentOrExpired is a refresh validation miss, indistinguishable
	// from natural expiry by design.
	ErrTokenAbsentOrExpired = refresh.ErrTokenAbsentOrExpired
	// ErrReplayDetected marks rotation attempted on an already-rotated or
	// invalidated refresh token.
	ErrReplayDetected = refresh.ErrReplayDetected
	// ErrUserMismatch marks a rotation token owned by a different user than
	// claimed; the token is invalidated as a side effect.
	ErrUserMismatch = refresh.ErrOwnerMismatch
	// ErrStoreUnavailable is a backing store timeout or connection failure.
	// The only error kind a caller should retry, with backoff.
	ErrStoreUnavailable = session.ErrStoreUnavailable
)
