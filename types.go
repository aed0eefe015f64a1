package tokenward

import (
	"context"

	"github.com/tokenward/tokenward/jwt"
	"github.com/tokenward/tokenward/refresh"
)

// TokenPair is the result of login, token issuance, and refresh: a signed
// short-lived access token plus an opaque long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserRecord is the minimal account shape the engine needs from the host.
// Profile storage and validation stay on the host's side of the boundary.
type UserRecord struct {
	ID            string
	Email         string
	PasswordHash  string
	Roles         []string
	EmailVerified bool
}

// UserProvider resolves accounts from the host's user storage. Lookup errors
// are never surfaced verbatim by Login; they collapse into
// [ErrInvalidCredentials] so the response does not reveal account existence.
type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserRecord, error)
	GetByID(ctx context.Context, id string) (*UserRecord, error)
}

// CredentialVerifier is the black-box one-way password check. The default
// implementation is [password.Bcrypt]; the engine depends only on this
// contract.
type CredentialVerifier interface {
	Verify(plaintext, storedHash string) (bool, error)
}

// Identity is the tagged outcome of [Engine.Authenticate]: either an
// authenticated claim set or an explicit unauthenticated reason. The caller
// decides whether Unauthenticated means anonymous access or rejection —
// nothing is silently swallowed.
type Identity struct {
	Authenticated bool
	Claims        *jwt.AccessClaims
	Reason        error
}

// UserID returns the authenticated subject, or "" when unauthenticated.
func (id Identity) UserID() string {
	if !id.Authenticated || id.Claims == nil {
		return ""
	}
	return id.Claims.Subject
}

// SessionInfo describes one active refresh session for introspection.
type SessionInfo = refresh.SessionInfo
