package portalauth

import (
	"errors"
	"time"

	internalaudit "github.com/opencivic/portalauth/internal/audit"
	"github.com/opencivic/portalauth/internal/lockout"
	internalmetrics "github.com/opencivic/portalauth/internal/metrics"
	"github.com/opencivic/portalauth/password"
	"github.com/opencivic/portalauth/token"
)

// Builder assembles an [Engine]. Construction is allocation-only until
// Build, which validates the configuration and fails fast on operator
// mistakes. The account store comes from the caller, typically
// redisstore.NewAccountStore, or any other [AccountStore] implementation.
type Builder struct {
	config     Config
	store      AccountStore
	revocation TokenRevocationStore
	auditSink  AuditSink
	built      bool
}

// New returns a Builder preloaded with the stock portal configuration.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithSigningSecret sets the token signing secret without replacing the rest
// of the configuration.
func (b *Builder) WithSigningSecret(secret []byte) *Builder {
	b.config.Token.SigningSecret = cloneBytes(secret)
	return b
}

// WithAccountStore sets the account store. Required.
func (b *Builder) WithAccountStore(store AccountStore) *Builder {
	b.store = store
	return b
}

// WithRevocationStore overrides the default no-op revocation store.
func (b *Builder) WithRevocationStore(store TokenRevocationStore) *Builder {
	b.revocation = store
	return b
}

// WithAuditSink sets the destination for audit events. Nil with auditing
// enabled means events are dropped silently.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock injects the engine clock. Tests use this to drive lockout and
// expiry deterministically.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.config.Now = now
	return b
}

// Build validates the configuration and assembles the engine. A Builder can
// build once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.store == nil {
		return nil, errors.New("account store required")
	}
	revocation := b.revocation
	if revocation == nil {
		revocation = NoopRevocationStore{}
	}

	hasher, err := password.NewHasher(password.Params{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	codec, err := token.NewCodec(token.Config{
		Secret: cfg.Token.SigningSecret,
		TTL:    cfg.Token.TTL,
		Issuer: cfg.Token.Issuer,
		Now:    cfg.Now,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:     cfg,
		store:      b.store,
		revocation: revocation,
		codec:      codec,
		hasher:     hasher,
		policy: lockout.Policy{
			MaxAttempts:     cfg.Lockout.MaxAttempts,
			LockoutDuration: cfg.Lockout.LockoutDuration,
			AttemptWindow:   cfg.Lockout.AttemptWindow,
		},
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
		metrics: internalmetrics.New(internalmetrics.Config{Enabled: cfg.Metrics.Enabled}),
		now:     cfg.Now,
	}

	b.built = true
	return engine, nil
}
