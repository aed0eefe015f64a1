package internal

import (
	"strings"
	"testing"
)

func TestNewRefreshTokenShape(t *testing.T) {
	token, err := NewRefreshToken()
	if err != nil {
		t.Fatalf("NewRefreshToken failed: %v", err)
	}
	if len(token) != 43 {
		t.Fatalf("expected 43-char token (32 raw bytes), got %d", len(token))
	}
	if strings.ContainsAny(token, "+/=") {
		t.Fatalf("expected base64url alphabet, got %q", token)
	}
	if err := ValidateRefreshToken(token); err != nil {
		t.Fatalf("fresh token failed validation: %v", err)
	}
}

func TestValidateRefreshTokenRejectsBadShapes(t *testing.T) {
	for _, token := range []string{
		"",
		"short",
		strings.Repeat("A", 44),
		"has spaces " + strings.Repeat("A", 32),
		strings.Repeat("+", 43),
	} {
		if err := ValidateRefreshToken(token); err == nil {
			t.Fatalf("expected %q to be rejected", token)
		}
	}
}
