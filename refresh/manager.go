package refresh

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tokenward/tokenward/internal"
	"github.com/tokenward/tokenward/session"
)

// ErrTokenAbsentOrExpired is the validation miss: the token has no live
// record, or the record's absolute TTL has passed. The two cases are
// indistinguishable by design.
var ErrTokenAbsentOrExpired = errors.New("refresh token absent or expired")

// ErrReplayDetected is returned by Rotate when the presented token has
// already been rotated away or invalidated. The data model treats this the
// same as absence; the distinct sentinel exists as an operational signal.
var ErrReplayDetected = errors.New("refresh token replay detected")

// ErrOwnerMismatch is returned by Rotate when the record belongs to a
// different user than claimed. Treated as a security event: the presented
// token is invalidated as a side effect.
var ErrOwnerMismatch = errors.New("refresh token owner mismatch")

const defaultTTL = 7 * 24 * time.Hour

// SessionInfo describes one active session for introspection. The token
// itself is never exposed.
type SessionInfo struct {
	UserID    string
	Device    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Manager implements the refresh-token lifecycle over a [session.Store]:
// ABSENT → ACTIVE → (ROTATED | REVOKED | EXPIRED), with all terminal states
// equivalent to ABSENT for validation.
//
// Manager holds no mutable in-process state and is safe to invoke
// concurrently from many request-handling goroutines.
type Manager struct {
	store *session.Store
	ttl   time.Duration
}

// NewManager creates a [Manager] issuing tokens with the given absolute TTL
// (zero selects the 7-day default).
func NewManager(store *session.Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Manager{store: store, ttl: ttl}
}

// TTL returns the absolute lifetime applied to newly created records.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create issues a new opaque refresh token for userID, persists its record
// with an absolute TTL, and indexes it under the user. The returned string
// is a bearer credential; the caller must treat it as such.
func (m *Manager) Create(ctx context.Context, userID, device string) (string, error) {
	token, err := internal.NewRefreshToken()
	if err != nil {
		return "", err
	}

	rec := session.NewRecord(userID, device, m.ttl)
	if err := m.store.Save(ctx, token, rec, m.ttl); err != nil {
		return "", err
	}

	return token, nil
}

// Validate returns the owning user ID if the token has a live, unexpired
// record, and [ErrTokenAbsentOrExpired] otherwise. It never mutates state.
func (m *Manager) Validate(ctx context.Context, token string) (string, error) {
	if internal.ValidateRefreshToken(token) != nil {
		return "", ErrTokenAbsentOrExpired
	}

	rec, err := m.store.Get(ctx, token)
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, session.ErrRecordCorrupt) {
			return "", ErrTokenAbsentOrExpired
		}
		return "", err
	}
	return rec.UserID, nil
}

// Rotate exchanges oldToken for a fresh token in one atomic step: the new
// record is written, the old one destroyed, and the user index updated, such
// that oldToken never validates again under any ordering of concurrent
// readers. Outcomes:
//
//   - success: the new token, with a fresh absolute TTL
//   - old record gone: [ErrReplayDetected] — either an attacker replaying a
//     rotated token or a retry of an already-spent one; callers surface the
//     signal operationally but answer clients indistinguishably from expiry
//   - record owned by someone other than expectedUserID: [ErrOwnerMismatch],
//     and the old token is invalidated anyway
//
// Of two rotations racing on the same oldToken exactly one succeeds; the
// loser observes the record already gone and gets [ErrReplayDetected].
func (m *Manager) Rotate(ctx context.Context, oldToken, expectedUserID, device string) (string, error) {
	if internal.ValidateRefreshToken(oldToken) != nil {
		return "", ErrReplayDetected
	}

	newToken, err := internal.NewRefreshToken()
	if err != nil {
		return "", err
	}

	rec := session.NewRecord(expectedUserID, device, m.ttl)
	_, err = m.store.Rotate(ctx, oldToken, newToken, rec, m.ttl)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrRecordExpired):
			return "", ErrTokenAbsentOrExpired
		case errors.Is(err, redis.Nil):
			return "", ErrReplayDetected
		case errors.Is(err, session.ErrOwnerMismatch):
			return "", ErrOwnerMismatch
		case errors.Is(err, session.ErrRecordCorrupt):
			return "", ErrReplayDetected
		default:
			return "", err
		}
	}

	return newToken, nil
}

// Invalidate destroys the token's record and index entry. Idempotent:
// invalidating an absent token is a no-op, not an error.
func (m *Manager) Invalidate(ctx context.Context, token string) error {
	if internal.ValidateRefreshToken(token) != nil {
		return nil
	}
	return m.store.Delete(ctx, token)
}

// InvalidateAllForUser destroys every live record for the user and clears
// the index set. Used after a password reset to force re-authentication on
// all devices. A second call is a no-op.
func (m *Manager) InvalidateAllForUser(ctx context.Context, userID string) error {
	return m.store.DeleteAllForUser(ctx, userID)
}

// Sessions lists the user's active sessions (device label and timestamps).
// Index entries whose records have just expired are skipped.
func (m *Manager) Sessions(ctx context.Context, userID string) ([]SessionInfo, error) {
	tokens, err := m.store.Members(ctx, userID)
	if err != nil {
		return nil, err
	}

	records, err := m.store.GetMany(ctx, tokens)
	if err != nil {
		return nil, err
	}

	infos := make([]SessionInfo, 0, len(records))
	for _, rec := range records {
		infos = append(infos, SessionInfo{
			UserID:    rec.UserID,
			Device:    rec.Device,
			CreatedAt: time.Unix(rec.CreatedAt, 0),
			ExpiresAt: time.Unix(rec.ExpiresAt, 0),
		})
	}
	return infos, nil
}
