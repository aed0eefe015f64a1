package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrNoSigningKey is returned by NewCodec when no symmetric key is configured.
var ErrNoSigningKey = errors.New("no signing key configured")

// ErrSigningKeyTooShort is returned by NewCodec for keys under 256 bits.
var ErrSigningKeyTooShort = errors.New("signing key shorter than 256 bits")

// ErrTokenExpired is returned by Verify when the token's expiry has passed.
var ErrTokenExpired = errors.New("token expired")

// ErrTokenMalformed is returned by Verify for structurally invalid tokens.
var ErrTokenMalformed = errors.New("token malformed")

// ErrBadSignature is returned by Verify when the signature does not match.
var ErrBadSignature = errors.New("token signature mismatch")

const minKeyBytes = 32

// Config defines the codec's signing parameters. The key and TTL are always
// supplied by the host; nothing here has an embedded default secret.
type Config struct {
	SigningKey []byte
	AccessTTL  time.Duration
	Issuer     string
	Leeway     time.Duration
}

// AccessClaims is the claim set carried by every access token. Subject is the
// user ID; ID (jti) is a fresh random UUID for traceability, not revocation.
type AccessClaims struct {
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Codec mints and verifies short-lived HS256 access tokens. Verification is
// a pure local check: no store access, safe on every request.
//
// Codec instances are configured once and treated as immutable afterwards.
type Codec struct {
	config Config
}

// NewCodec validates the signing configuration and returns a ready codec.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, ErrNoSigningKey
	}
	if len(cfg.SigningKey) < minKeyBytes {
		return nil, ErrSigningKeyTooShort
	}
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("invalid access TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	return &Codec{config: cfg}, nil
}

// Issue builds and signs an access token for the given identity. ttl
// overrides the configured access TTL when positive; pass zero for the
// default. Access tokens are non-renewable: a new one is minted from a valid
// refresh token, never by extending an old one.
func (c *Codec) Issue(userID, email string, roles []string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = c.config.AccessTTL
	}

	now := time.Now()
	claims := AccessClaims{
		Email: email,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
			Issuer:    c.config.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.config.SigningKey)
}

// Verify checks signature integrity and expiry and returns the decoded
// claims. Failures map to the three sentinel kinds: [ErrTokenExpired],
// [ErrBadSignature], [ErrTokenMalformed]. No revocation list is consulted —
// access tokens are intentionally short-lived and stateless; revocation
// granularity lives at the refresh-token layer.
func (c *Codec) Verify(tokenStr string) (*AccessClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		return c.config.SigningKey, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrBadSignature
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			return nil, ErrTokenMalformed
		}
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
