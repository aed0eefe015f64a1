package internal

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

const refreshTokenRawSize = 32

// NewRefreshToken returns a fresh opaque refresh token: 32 bytes from
// crypto/rand, base64url without padding. 256 bits of entropy, well above
// the 128-bit floor the rotation protocol assumes.
func NewRefreshToken() (string, error) {
	var raw [refreshTokenRawSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}

// ValidateRefreshToken checks the structural shape of an opaque token before
// it is used as a store key. It does not touch Redis.
func ValidateRefreshToken(token string) error {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return err
	}
	if len(raw) != refreshTokenRawSize {
		return errors.New("invalid refresh token size")
	}
	return nil
}
