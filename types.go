package portalauth

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/opencivic/portalauth/internal/audit"
	internalmetrics "github.com/opencivic/portalauth/internal/metrics"
)

// RoleClass is the portal's role enumeration.
type RoleClass string

const (
	// RoleResident is the default role for portal accounts.
	RoleResident RoleClass = "resident"
	// RoleAdmin marks municipal staff accounts allowed to force-reset
	// resident credentials.
	RoleAdmin RoleClass = "admin"
)

// CredentialStatus tracks which credential an account authenticates with.
type CredentialStatus string

const (
	// CredentialDefault means the account still uses the system-issued
	// credential derived from its date of birth; CredentialHash is empty.
	CredentialDefault CredentialStatus = "default"
	// CredentialActive means the account has set its own secret;
	// CredentialHash holds the argon2id encoding (salt embedded).
	CredentialActive CredentialStatus = "active"
)

// RouteHint tells the caller where to send the user after a successful
// login.
type RouteHint string

const (
	// RoutePasswordSetup directs to the mandatory password-set flow, with
	// the issued token attached.
	RoutePasswordSetup RouteHint = "password-setup"
	// RouteDashboard directs to the normal portal dashboard.
	RouteDashboard RouteHint = "dashboard"
)

// Account is one portal identity as persisted by the [AccountStore].
//
// Invariants the engine maintains: CredentialStatus is CredentialDefault
// exactly when CredentialHash is empty; a FailedAttempts count at or above
// the lockout threshold implies LockedUntil is set strictly after the
// attempt that caused it. Zero time values mean "not set". LockedUntil in
// the past is equivalent to unlocked: expiry is evaluated lazily on the
// next attempt, never swept by a background process.
type Account struct {
	ID          string
	Username    string // unique, stored lowercase
	DisplayName string
	Role        RoleClass

	CredentialStatus CredentialStatus
	CredentialHash   string
	DateOfBirth      time.Time

	FailedAttempts int
	LastAttemptAt  time.Time
	LockedUntil    time.Time

	// Version is the optimistic-concurrency counter. Update succeeds only
	// when the stored version still equals the fetched one; the store bumps
	// it on every successful write.
	Version uint64
}

// AccountStore is the boundary to the external user-record store. The
// engine is the only writer of the credential and throttle fields.
//
// Contract: FindByUsername and FindByID return [ErrAccountNotFound] for
// missing records; Update returns [ErrVersionConflict] when the record
// changed since the fetch; any backend failure surfaces as (a wrap of)
// [ErrStoreUnavailable]. Implementations must not invent their own error
// values for these cases.
type AccountStore interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	// Update is a conditional write keyed on account.Version. On success
	// the stored version advances; the passed struct is not mutated.
	Update(ctx context.Context, account *Account) error
	// Create inserts a new account. Used by the out-of-scope registration
	// process and by tests; returns [ErrDuplicateUsername] on a taken
	// handle.
	Create(ctx context.Context, account *Account) error
}

// TokenRevocationStore is a conscious extension point: issued tokens are
// bearer credentials valid until natural expiry, and the default
// implementation is [NoopRevocationStore]. Deployments that need logout or
// single-use password-set tokens plug in a real implementation (see
// redisstore.RevocationStore).
type TokenRevocationStore interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

// NoopRevocationStore never revokes anything.
type NoopRevocationStore struct{}

func (NoopRevocationStore) IsRevoked(context.Context, string) (bool, error) { return false, nil }

func (NoopRevocationStore) Revoke(context.Context, string, time.Duration) error { return nil }

// LoginResult is returned by [Engine.Login] on success.
type LoginResult struct {
	Token            string
	CredentialStatus CredentialStatus
	Route            RouteHint
}

// SetPasswordResult carries the fresh token issued by [Engine.SetPassword];
// its credential-status claim reflects the new active state.
type SetPasswordResult struct {
	Token string
}

// ForceResetResult is returned by [Engine.AdminForceReset].
type ForceResetResult struct {
	TargetUsername string
}

// SessionClaims is the verified claim set handed to collaborators by
// [Engine.Validate].
type SessionClaims struct {
	TokenID          string
	AccountID        string
	Username         string
	DisplayName      string
	Role             RoleClass
	CredentialStatus CredentialStatus
	IssuedAt         time.Time
	ExpiresAt        time.Time
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit
// dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// io.Writer, one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a counter in the in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	MetricLoginSuccess        = internalmetrics.LoginSuccess
	MetricLoginFailure        = internalmetrics.LoginFailure
	MetricLoginLocked         = internalmetrics.LoginLocked
	MetricPasswordSetSuccess  = internalmetrics.PasswordSetSuccess
	MetricPasswordSetRejected = internalmetrics.PasswordSetRejected
	MetricAdminResetSuccess   = internalmetrics.AdminResetSuccess
	MetricTokenRejected       = internalmetrics.TokenRejected
	MetricStoreConflictRetry  = internalmetrics.StoreConflictRetry
	MetricStoreRetryExhausted = internalmetrics.StoreRetryExhausted
)

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot = internalmetrics.Snapshot
