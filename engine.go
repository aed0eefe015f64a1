package tokenward

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tokenward/tokenward/internal/audit"
	"github.com/tokenward/tokenward/jwt"
	"github.com/tokenward/tokenward/refresh"
	"github.com/tokenward/tokenward/session"
)

// Engine is the session and token authority. It owns the access-token codec,
// the Redis-backed refresh-token store, and the credential check, behind a
// transport-agnostic API: the host brings its own HTTP/gRPC layer, user
// storage, and signing key.
//
// All methods are safe for concurrent use. Construct an Engine through
// [Builder]; the zero value is not usable.
type Engine struct {
	config Config

	codec    *jwt.Codec
	store    *session.Store
	tokens   *refresh.Manager
	verifier CredentialVerifier
	users    UserProvider

	audit   *audit.Dispatcher
	metrics *Metrics
}

func (e *Engine) ready() error {
	if e == nil || e.codec == nil || e.tokens == nil || e.users == nil {
		return ErrEngineNotReady
	}
	return nil
}

// Login verifies email/password credentials and, on success, mints a fresh
// token pair. An unknown email and a wrong password are indistinguishable to
// the caller: both return [ErrInvalidCredentials]. When the verified-email
// gate is on, an unconfirmed account fails with [ErrEmailNotVerified] — only
// after the password check passed, so the error does not leak whether a
// password was correct for an arbitrary address.
func (e *Engine) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	user, err := e.users.GetByEmail(ctx, email)
	if err != nil || user == nil {
		e.metrics.Inc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", ErrInvalidCredentials,
			map[string]string{"email": email})
		return nil, ErrInvalidCredentials
	}

	ok, err := e.verifier.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		e.metrics.Inc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, ErrInvalidCredentials, nil)
		return nil, ErrInvalidCredentials
	}

	if e.config.RequireVerifiedEmail && !user.EmailVerified {
		e.metrics.Inc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, ErrEmailNotVerified, nil)
		return nil, ErrEmailNotVerified
	}

	pair, err := e.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	e.metrics.Inc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.ID, nil, nil)
	return pair, nil
}

// IssueTokensFor mints a token pair for an already-authenticated account.
// This is the entry point for flows that establish identity outside the
// password check — OAuth callbacks, SSO assertions, admin impersonation. No
// credential or email-verification gate applies; the caller vouches for the
// identity.
func (e *Engine) IssueTokensFor(ctx context.Context, user UserRecord) (*TokenPair, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, ErrUserNotFound
	}

	pair, err := e.issuePair(ctx, &user)
	if err != nil {
		return nil, err
	}

	e.emitAudit(ctx, auditEventTokensIssued, true, user.ID, nil, nil)
	return pair, nil
}

func (e *Engine) issuePair(ctx context.Context, user *UserRecord) (*TokenPair, error) {
	device := deviceInfoFromContext(ctx)

	refreshToken, err := e.tokens.Create(ctx, user.ID, device)
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			e.metrics.Inc(MetricStoreUnavailable)
			e.emitAudit(ctx, auditEventStoreUnavailable, false, user.ID, err, nil)
		}
		return nil, err
	}
	e.metrics.Inc(MetricSessionCreated)

	accessToken, err := e.codec.Issue(user.ID, user.Email, user.Roles, 0)
	if err != nil {
		// The refresh record is already live; tear it down rather than
		// leaving an orphan session.
		_ = e.tokens.Invalidate(ctx, refreshToken)
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	e.metrics.Inc(MetricAccessIssued)

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a live refresh token for a fresh token pair, consuming
// the presented token in the same atomic step. expectedUserID is the identity
// the caller believes it holds; a record owned by someone else fails with
// [ErrUserMismatch] and the presented token is invalidated either way.
//
// A token that was already rotated or revoked fails with [ErrReplayDetected].
// Clients retrying a refresh must use the newest token they received — the
// old one is spent the moment rotation succeeds.
func (e *Engine) Refresh(ctx context.Context, refreshToken, expectedUserID string) (*TokenPair, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	device := deviceInfoFromContext(ctx)

	newToken, err := e.tokens.Rotate(ctx, refreshToken, expectedUserID, device)
	if err != nil {
		e.metrics.Inc(MetricRefreshFailure)

		switch {
		case errors.Is(err, ErrReplayDetected):
			e.metrics.Inc(MetricReplayDetected)
			e.emitAudit(ctx, auditEventReplayDetected, false, expectedUserID, err, nil)
		case errors.Is(err, ErrUserMismatch):
			e.metrics.Inc(MetricUserMismatch)
			e.emitAudit(ctx, auditEventUserMismatch, false, expectedUserID, err, nil)
		case errors.Is(err, ErrStoreUnavailable):
			e.metrics.Inc(MetricStoreUnavailable)
			e.emitAudit(ctx, auditEventStoreUnavailable, false, expectedUserID, err, nil)
		default:
			e.emitAudit(ctx, auditEventRefreshFailure, false, expectedUserID, err, nil)
		}
		return nil, err
	}

	user, err := e.users.GetByID(ctx, expectedUserID)
	if err != nil || user == nil {
		// Rotation already consumed the old token; revoke the new one so the
		// orphaned account keeps no live session.
		_ = e.tokens.Invalidate(ctx, newToken)
		e.metrics.Inc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshFailure, false, expectedUserID, ErrUserNotFound, nil)
		return nil, ErrUserNotFound
	}

	accessToken, err := e.codec.Issue(user.ID, user.Email, user.Roles, 0)
	if err != nil {
		_ = e.tokens.Invalidate(ctx, newToken)
		e.metrics.Inc(MetricRefreshFailure)
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	e.metrics.Inc(MetricRefreshSuccess)
	e.metrics.Inc(MetricAccessIssued)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, user.ID, nil, nil)

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newToken,
	}, nil
}

// Authenticate verifies an access token and returns a tagged [Identity]. The
// check is purely local — signature and expiry against the configured key —
// with no store round trip, so it is safe to run on every request.
func (e *Engine) Authenticate(tokenStr string) Identity {
	if err := e.ready(); err != nil {
		return Identity{Reason: err}
	}

	start := time.Now()
	claims, err := e.codec.Verify(tokenStr)
	e.metrics.Observe(MetricAuthenticateLatency, time.Since(start))

	if err != nil {
		e.metrics.Inc(MetricAccessRejected)
		return Identity{Reason: err}
	}

	return Identity{Authenticated: true, Claims: claims}
}

// ValidateRefresh reports which user owns a live refresh token without
// consuming it. Returns [ErrTokenAbsentOrExpired] when the token has no live
// record; absence and expiry are indistinguishable by design.
func (e *Engine) ValidateRefresh(ctx context.Context, refreshToken string) (string, error) {
	if err := e.ready(); err != nil {
		return "", err
	}
	userID, err := e.tokens.Validate(ctx, refreshToken)
	if err != nil && errors.Is(err, ErrStoreUnavailable) {
		e.metrics.Inc(MetricStoreUnavailable)
	}
	return userID, err
}

// Logout invalidates a single refresh token. Idempotent: logging out an
// already-absent token succeeds quietly.
func (e *Engine) Logout(ctx context.Context, refreshToken string) error {
	if err := e.ready(); err != nil {
		return err
	}

	if err := e.tokens.Invalidate(ctx, refreshToken); err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			e.metrics.Inc(MetricStoreUnavailable)
			e.emitAudit(ctx, auditEventStoreUnavailable, false, "", err, nil)
		}
		return err
	}

	e.metrics.Inc(MetricSessionInvalidated)
	e.emitAudit(ctx, auditEventLogout, true, "", nil, nil)
	return nil
}

// LogoutAll invalidates every refresh token the user holds, across all
// devices. The standard follow-up to a password reset or a replay/mismatch
// alarm. A second call is a no-op.
func (e *Engine) LogoutAll(ctx context.Context, userID string) error {
	if err := e.ready(); err != nil {
		return err
	}

	if err := e.tokens.InvalidateAllForUser(ctx, userID); err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			e.metrics.Inc(MetricStoreUnavailable)
			e.emitAudit(ctx, auditEventStoreUnavailable, false, userID, err, nil)
		}
		return err
	}

	e.metrics.Inc(MetricLogoutAll)
	e.emitAudit(ctx, auditEventLogoutAll, true, userID, nil, nil)
	return nil
}

// Sessions lists the user's active sessions for introspection UIs. Token
// strings are never included.
func (e *Engine) Sessions(ctx context.Context, userID string) ([]SessionInfo, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.tokens.Sessions(ctx, userID)
}

// ActiveSessionCount returns the number of live refresh tokens the user holds.
func (e *Engine) ActiveSessionCount(ctx context.Context, userID string) (int, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	return e.store.ActiveSessionCount(ctx, userID)
}

// Ping checks backing-store reachability and returns the round-trip latency.
func (e *Engine) Ping(ctx context.Context) (time.Duration, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	return e.store.Ping(ctx)
}

// MetricsSnapshot returns a point-in-time copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// AuditDropped returns the number of audit events lost to backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// Close flushes the audit dispatcher and releases engine-owned resources.
// The Redis client is host-owned and is not closed. Idempotent.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}
