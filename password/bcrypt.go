package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	minCost     = 10
	maxCost     = 16
	defaultCost = 12

	minPassBytes = 8
)

// Config holds the verifier's cost factor. Zero selects the default of 12
// rounds.
type Config struct {
	Cost int
}

// Bcrypt is a slow, salted one-way credential verifier. The engine depends
// only on its boolean contract; the algorithm is swappable behind the
// CredentialVerifier interface.
//
// Bcrypt instances are configured once and treated as immutable afterwards.
type Bcrypt struct {
	cost int
}

// NewBcrypt validates the cost factor and returns a ready verifier.
func NewBcrypt(cfg Config) (*Bcrypt, error) {
	cost := cfg.Cost
	if cost == 0 {
		cost = defaultCost
	}
	if cost < minCost || cost > maxCost {
		return nil, errors.New("bcrypt cost out of range")
	}
	return &Bcrypt{cost: cost}, nil
}

// Hash derives a salted hash of password for storage. Password bytes are
// used exactly as provided (no Unicode normalization).
func (b *Bcrypt) Hash(password string) (string, error) {
	if len(password) < minPassBytes {
		return "", errors.New("password must be at least 8 bytes")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches the stored hash. A mismatch is
// (false, nil); an error means the stored hash is unusable.
func (b *Bcrypt) Verify(password, storedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
