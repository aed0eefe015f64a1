package tokenward

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tokenward/tokenward/internal/audit"
	"github.com/tokenward/tokenward/jwt"
	"github.com/tokenward/tokenward/password"
	"github.com/tokenward/tokenward/refresh"
	"github.com/tokenward/tokenward/session"
)

// Builder assembles an [Engine] from host-supplied dependencies. Required:
// a Redis client, a [UserProvider], and a signing key in the config. Optional:
// a custom [CredentialVerifier] (bcrypt by default) and an [AuditSink].
//
// Builder is not safe for concurrent use; build once, share the Engine.
type Builder struct {
	config    Config
	hasConfig bool
	redis     redis.UniversalClient
	users     UserProvider
	verifier  CredentialVerifier
	auditSink AuditSink
}

// New starts a Builder with default configuration.
func New() *Builder {
	return &Builder{}
}

// WithConfig replaces the default configuration. Zero-valued fields fall back
// to their defaults at Build.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	b.hasConfig = true
	return b
}

// WithRedis supplies the Redis client backing the session store. The client's
// lifecycle stays with the host; [Engine.Close] does not close it.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserProvider supplies the host's account lookup.
func (b *Builder) WithUserProvider(users UserProvider) *Builder {
	b.users = users
	return b
}

// WithCredentialVerifier replaces the default bcrypt password check. Use this
// to plug in argon2 or a legacy scheme during migration.
func (b *Builder) WithCredentialVerifier(v CredentialVerifier) *Builder {
	b.verifier = v
	return b
}

// WithAuditSink enables audit dispatch to the given sink. The sink runs on the
// dispatcher goroutine, never on the request path.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration, wires the components, and returns a
// ready Engine. Signing-key problems surface wrapped in [ErrSigningConfig] so
// hosts can distinguish deployment mistakes from runtime failures.
func (b *Builder) Build() (*Engine, error) {
	cfg := defaultConfig()
	if b.hasConfig {
		cfg = cloneConfig(b.config)
	}
	if err := normalizeConfig(&cfg); err != nil {
		return nil, err
	}

	if b.redis == nil {
		return nil, errors.New("redis client is required")
	}
	if b.users == nil {
		return nil, errors.New("user provider is required")
	}

	codec, err := jwt.NewCodec(jwt.Config{
		SigningKey: cfg.JWT.SigningKey,
		AccessTTL:  cfg.JWT.AccessTTL,
		Issuer:     cfg.JWT.Issuer,
		Leeway:     cfg.JWT.Leeway,
	})
	if err != nil {
		if errors.Is(err, jwt.ErrNoSigningKey) || errors.Is(err, jwt.ErrSigningKeyTooShort) {
			return nil, fmt.Errorf("%w: %v", ErrSigningConfig, err)
		}
		return nil, err
	}

	verifier := b.verifier
	if verifier == nil {
		verifier, err = password.NewBcrypt(password.Config{Cost: cfg.Password.Cost})
		if err != nil {
			return nil, err
		}
	}

	store := session.NewStore(b.redis, cfg.Session.RedisPrefix, cfg.Session.StoreTimeout)

	var dispatcher *audit.Dispatcher
	if cfg.Audit.Enabled {
		dispatcher = audit.NewDispatcher(audit.Config{
			Enabled:    true,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink)
	}

	return &Engine{
		config:   cfg,
		codec:    codec,
		store:    store,
		tokens:   refresh.NewManager(store, cfg.Session.RefreshTTL),
		verifier: verifier,
		users:    b.users,
		audit:    dispatcher,
		metrics:  NewMetrics(cfg.Metrics),
	}, nil
}
