package portalauth

import (
	"errors"
	"time"
)

// Config is the engine's complete configuration. Instances are set before
// [Builder.Build] and treated as immutable afterwards.
type Config struct {
	Token    TokenConfig
	Password PasswordConfig
	Lockout  LockoutConfig
	Secret   SecretPolicyConfig
	Store    StoreConfig
	Audit    AuditConfig
	Metrics  MetricsConfig

	// Now is the single clock the engine reads. Nil means time.Now. Tests
	// inject a fixed or stepping clock here; no other component acquires
	// wall time on its own.
	Now func() time.Time
}

// TokenConfig configures the session-token codec. The signing secret is
// explicit configuration threaded into the codec constructor, never
// process-global state.
type TokenConfig struct {
	SigningSecret []byte
	TTL           time.Duration
	Issuer        string
}

// PasswordConfig fixes the argon2id cost profile for credential hashing.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// LockoutConfig parameterizes the failed-attempt governor.
type LockoutConfig struct {
	MaxAttempts     int
	LockoutDuration time.Duration
	AttemptWindow   time.Duration
}

// SecretPolicyConfig is the strength policy for user-chosen secrets.
type SecretPolicyConfig struct {
	MinLength     int
	RequireDigit  bool
	RequireSymbol bool
}

// StoreConfig bounds the conditional-update retry loop. When a login's
// fetch-evaluate-update cycle keeps losing to concurrent writes it fails as
// [ErrServiceUnavailable] after MaxUpdateRetries additional rounds, rather
// than silently dropping a failure-counter increment.
type StoreConfig struct {
	MaxUpdateRetries int
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			TTL:    24 * time.Hour,
			Issuer: "portalauth",
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Lockout: LockoutConfig{
			MaxAttempts:     5,
			LockoutDuration: 15 * time.Minute,
			AttemptWindow:   15 * time.Minute,
		},
		Secret: SecretPolicyConfig{
			MinLength:     8,
			RequireDigit:  true,
			RequireSymbol: true,
		},
		Store: StoreConfig{
			MaxUpdateRetries: 3,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate rejects configurations the engine cannot run safely with.
// Misconfiguration fails here, at construction, so it can never be mistaken
// for a credential failure at request time.
func (c Config) Validate() error {
	if len(c.Token.SigningSecret) < 32 {
		return errors.New("config: token signing secret must be at least 32 bytes")
	}
	if c.Token.TTL <= 0 {
		return errors.New("config: token TTL must be positive")
	}
	if c.Lockout.MaxAttempts < 1 {
		return errors.New("config: lockout max attempts must be >= 1")
	}
	if c.Lockout.LockoutDuration <= 0 {
		return errors.New("config: lockout duration must be positive")
	}
	if c.Lockout.AttemptWindow <= 0 {
		return errors.New("config: attempt window must be positive")
	}
	if c.Secret.MinLength < 1 {
		return errors.New("config: secret minimum length must be >= 1")
	}
	if c.Store.MaxUpdateRetries < 1 {
		return errors.New("config: store update retries must be >= 1")
	}
	return nil
}

func cloneConfig(c Config) Config {
	out := c
	out.Token.SigningSecret = cloneBytes(c.Token.SigningSecret)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
