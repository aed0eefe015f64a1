package tokenward

import (
	"errors"
	"time"
)

// Config defines the engine's tunables. Instances are cloned at Build and
// treated as immutable afterwards.
type Config struct {
	JWT      JWTConfig
	Session  SessionConfig
	Password PasswordConfig
	Audit    AuditConfig
	Metrics  MetricsConfig

	// RequireVerifiedEmail gates Login on a confirmed email address.
	RequireVerifiedEmail bool
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig carries the access-token codec parameters. SigningKey must be a
// symmetric key of at least 256 bits, supplied by the host — never embedded.
type JWTConfig struct {
	AccessTTL  time.Duration
	SigningKey []byte
	Issuer     string
	Leeway     time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig carries the refresh-token store parameters. RefreshTTL is
// absolute from record creation, not sliding. StoreTimeout bounds every
// Redis call; a timeout surfaces as [ErrStoreUnavailable].
type SessionConfig struct {
	RedisPrefix  string
	RefreshTTL   time.Duration
	StoreTimeout time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig tunes the default bcrypt credential verifier. Ignored when
// a custom [CredentialVerifier] is injected.
type PasswordConfig struct {
	Cost int
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process counters and the Authenticate
// latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL: 24 * time.Hour,
			Issuer:    "tokenward",
			Leeway:    30 * time.Second,
		},
		Session: SessionConfig{
			RedisPrefix:  "auth",
			RefreshTTL:   7 * 24 * time.Hour,
			StoreTimeout: 3 * time.Second,
		},
		Password: PasswordConfig{
			Cost: 12,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		RequireVerifiedEmail: true,
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if len(cfg.JWT.SigningKey) > 0 {
		out.JWT.SigningKey = make([]byte, len(cfg.JWT.SigningKey))
		copy(out.JWT.SigningKey, cfg.JWT.SigningKey)
	}
	return out
}

func normalizeConfig(cfg *Config) error {
	def := defaultConfig()

	if cfg.JWT.AccessTTL <= 0 {
		cfg.JWT.AccessTTL = def.JWT.AccessTTL
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = def.JWT.Issuer
	}
	if cfg.JWT.Leeway < 0 {
		return errors.New("negative JWT leeway")
	}
	if cfg.Session.RedisPrefix == "" {
		cfg.Session.RedisPrefix = def.Session.RedisPrefix
	}
	if cfg.Session.RefreshTTL <= 0 {
		cfg.Session.RefreshTTL = def.Session.RefreshTTL
	}
	if cfg.Session.StoreTimeout <= 0 {
		cfg.Session.StoreTimeout = def.Session.StoreTimeout
	}
	if cfg.Password.Cost == 0 {
		cfg.Password.Cost = def.Password.Cost
	}
	if cfg.Audit.BufferSize <= 0 {
		cfg.Audit.BufferSize = def.Audit.BufferSize
	}
	return nil
}
