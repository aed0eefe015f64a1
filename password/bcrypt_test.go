package password

import (
	"strings"
	"testing"
)

func TestHashVerifyRoundTrip(t *testing.T) {
	verifier, err := NewBcrypt(Config{Cost: 10})
	if err != nil {
		t.Fatalf("NewBcrypt failed: %v", err)
	}

	hash, err := verifier.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash == "correct-horse" {
		t.Fatal("hash must not equal the plaintext")
	}

	ok, err := verifier.Verify("correct-horse", hash)
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}

	ok, err = verifier.Verify("wrong-password", hash)
	if err != nil {
		t.Fatalf("mismatch must not be an error: %v", err)
	}
	if ok {
		t.Fatal("expected mismatch")
	}
}

func TestHashesAreSalted(t *testing.T) {
	verifier, err := NewBcrypt(Config{Cost: 10})
	if err != nil {
		t.Fatalf("NewBcrypt failed: %v", err)
	}

	a, err := verifier.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	b, err := verifier.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestHashRejectsShortPassword(t *testing.T) {
	verifier, err := NewBcrypt(Config{Cost: 10})
	if err != nil {
		t.Fatalf("NewBcrypt failed: %v", err)
	}
	if _, err := verifier.Hash("short"); err == nil {
		t.Fatal("expected short password to be rejected")
	}
}

func TestVerifyUnusableHash(t *testing.T) {
	verifier, err := NewBcrypt(Config{Cost: 10})
	if err != nil {
		t.Fatalf("NewBcrypt failed: %v", err)
	}

	ok, err := verifier.Verify("correct-horse", "not-a-bcrypt-hash")
	if ok {
		t.Fatal("garbage hash must never match")
	}
	if err == nil {
		t.Fatal("expected an error for an unusable stored hash")
	}
}

func TestCostBounds(t *testing.T) {
	if _, err := NewBcrypt(Config{Cost: 9}); err == nil {
		t.Fatal("expected cost below 10 to be rejected")
	}
	if _, err := NewBcrypt(Config{Cost: 17}); err == nil {
		t.Fatal("expected cost above 16 to be rejected")
	}
	if _, err := NewBcrypt(Config{}); err != nil {
		t.Fatalf("expected zero cost to select the default, got %v", err)
	}
}

func TestVerifyLongPassword(t *testing.T) {
	verifier, err := NewBcrypt(Config{Cost: 10})
	if err != nil {
		t.Fatalf("NewBcrypt failed: %v", err)
	}

	// bcrypt cannot represent more than 72 bytes; the library rejects longer
	// inputs outright rather than silently truncating.
	long := strings.Repeat("x", 80)
	if _, err := verifier.Hash(long); err == nil {
		t.Fatal("expected >72 byte password to be rejected")
	}
}
