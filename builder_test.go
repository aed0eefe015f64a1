package tokenward

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testRedis(t *testing.T) redis.UniversalClient {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis failed to start: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestBuildRequiresRedis(t *testing.T) {
	_, err := New().
		WithConfig(testConfig()).
		WithUserProvider(newFakeProvider()).
		Build()
	if err == nil {
		t.Fatal("expected build to fail without redis")
	}
}

func TestBuildRequiresUserProvider(t *testing.T) {
	_, err := New().
		WithConfig(testConfig()).
		WithRedis(testRedis(t)).
		Build()
	if err == nil {
		t.Fatal("expected build to fail without a user provider")
	}
}

func TestBuildRejectsMissingSigningKey(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.SigningKey = nil

	_, err := New().
		WithConfig(cfg).
		WithRedis(testRedis(t)).
		WithUserProvider(newFakeProvider()).
		Build()
	if !errors.Is(err, ErrSigningConfig) {
		t.Fatalf("expected ErrSigningConfig, got %v", err)
	}
}

func TestBuildRejectsShortSigningKey(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.SigningKey = []byte("weak")

	_, err := New().
		WithConfig(cfg).
		WithRedis(testRedis(t)).
		WithUserProvider(newFakeProvider()).
		Build()
	if !errors.Is(err, ErrSigningConfig) {
		t.Fatalf("expected ErrSigningConfig, got %v", err)
	}
}

func TestBuildAppliesDefaults(t *testing.T) {
	cfg := Config{
		JWT: JWTConfig{SigningKey: testSigningKey()},
	}

	engine, err := New().
		WithConfig(cfg).
		WithRedis(testRedis(t)).
		WithUserProvider(newFakeProvider()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	def := defaultConfig()
	if engine.config.JWT.AccessTTL != def.JWT.AccessTTL {
		t.Fatalf("expected default access TTL, got %v", engine.config.JWT.AccessTTL)
	}
	if engine.config.Session.RedisPrefix != def.Session.RedisPrefix {
		t.Fatalf("expected default prefix, got %q", engine.config.Session.RedisPrefix)
	}
	if engine.config.Session.RefreshTTL != def.Session.RefreshTTL {
		t.Fatalf("expected default refresh TTL, got %v", engine.config.Session.RefreshTTL)
	}
	if engine.tokens.TTL() != def.Session.RefreshTTL {
		t.Fatalf("expected manager TTL wired from config, got %v", engine.tokens.TTL())
	}
}

func TestBuildClonesSigningKey(t *testing.T) {
	key := testSigningKey()
	cfg := testConfig()
	cfg.JWT.SigningKey = key

	engine, err := New().
		WithConfig(cfg).
		WithRedis(testRedis(t)).
		WithUserProvider(newFakeProvider()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	// Mutating the caller's slice after Build must not affect the engine.
	for i := range key {
		key[i] = 0
	}
	provider := engine.users.(*fakeProvider)
	seedUser(t, provider, "user-42", "alice@example.com", "correct-horse", true)

	pair, err := engine.Login(context.Background(), "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if !engine.Authenticate(pair.AccessToken).Authenticated {
		t.Fatal("expected token signed with the cloned key to verify")
	}
}

func TestCustomCredentialVerifier(t *testing.T) {
	provider := newFakeProvider()
	provider.put(UserRecord{
		ID:            "user-42",
		Email:         "alice@example.com",
		PasswordHash:  "opaque-legacy-hash",
		EmailVerified: true,
	})

	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(testRedis(t)).
		WithUserProvider(provider).
		WithCredentialVerifier(staticVerifier{accept: "legacy-pass"}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := engine.Login(context.Background(), "alice@example.com", "legacy-pass"); err != nil {
		t.Fatalf("expected custom verifier to accept: %v", err)
	}
	if _, err := engine.Login(context.Background(), "alice@example.com", "other"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

type staticVerifier struct {
	accept string
}

func (v staticVerifier) Verify(plaintext, _ string) (bool, error) {
	return plaintext == v.accept, nil
}

func TestPingReportsStoreHealth(t *testing.T) {
	provider := newFakeProvider()
	engine, mr := newTestEngine(t, testConfig(), provider)

	latency, err := engine.Ping(context.Background())
	if err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if latency < 0 || latency > time.Second {
		t.Fatalf("implausible ping latency: %v", latency)
	}

	mr.Close()
	if _, err := engine.Ping(context.Background()); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
