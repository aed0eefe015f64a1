package jwt

import (
	"errors"
	"testing"
	"time"
)

// FuzzVerify asserts that arbitrary input never panics the verifier and only
// ever produces the three sentinel error kinds.
func FuzzVerify(f *testing.F) {
	codec, err := NewCodec(Config{
		SigningKey: []byte("0123456789abcdef0123456789abcdef"),
		AccessTTL:  time.Minute,
	})
	if err != nil {
		f.Fatalf("NewCodec failed: %v", err)
	}

	valid, err := codec.Issue("user-42", "alice@example.com", []string{"user"}, 0)
	if err != nil {
		f.Fatalf("Issue failed: %v", err)
	}

	f.Add(valid)
	f.Add("")
	f.Add("a.b.c")
	f.Add("eyJhbGciOiJub25lIn0..")

	f.Fuzz(func(t *testing.T, input string) {
		claims, err := codec.Verify(input)
		if err == nil {
			if claims == nil {
				t.Fatal("nil claims with nil error")
			}
			return
		}
		if !errors.Is(err, ErrTokenExpired) &&
			!errors.Is(err, ErrBadSignature) &&
			!errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("unexpected error kind: %v", err)
		}
	})
}
