package portalauth

import (
	"context"
	"log"
	"time"

	internalaudit "github.com/opencivic/portalauth/internal/audit"
	"github.com/opencivic/portalauth/internal/flows"
	"github.com/opencivic/portalauth/internal/lockout"
	internalmetrics "github.com/opencivic/portalauth/internal/metrics"
	"github.com/opencivic/portalauth/password"
	"github.com/opencivic/portalauth/token"
)

// Engine is the authentication service facade. Construct it through
// [Builder.Build]; after that all methods are safe for concurrent use.
type Engine struct {
	config     Config
	store      AccountStore
	revocation TokenRevocationStore
	codec      *token.Codec
	hasher     *password.Hasher
	policy     lockout.Policy
	audit      *internalaudit.Dispatcher
	metrics    *internalmetrics.Metrics
	now        func() time.Time
}

// Close flushes and stops the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded under buffer
// pressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return internalmetrics.Snapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// Validate verifies a session token for a collaborator (an HTTP middleware,
// the document-request workflow, the chat assistant) and returns its claims.
// All verification failures, including revocation, collapse to
// [ErrInvalidToken].
func (e *Engine) Validate(ctx context.Context, tokenStr string) (*SessionClaims, error) {
	if e == nil || e.codec == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.codec.Verify(tokenStr)
	if err != nil {
		e.metricInc(internalmetrics.TokenRejected)
		return nil, ErrInvalidToken
	}

	revoked, err := e.revocation.IsRevoked(ctx, claims.TokenID())
	if err != nil {
		return nil, ErrServiceUnavailable
	}
	if revoked {
		e.metricInc(internalmetrics.TokenRejected)
		return nil, ErrInvalidToken
	}

	return &SessionClaims{
		TokenID:          claims.TokenID(),
		AccountID:        claims.AccountID(),
		Username:         claims.Username,
		DisplayName:      claims.DisplayName,
		Role:             RoleClass(claims.Role),
		CredentialStatus: CredentialStatus(claims.CredentialStatus),
		IssuedAt:         claims.IssuedAt.Time,
		ExpiresAt:        claims.ExpiresAt.Time,
	}, nil
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil {
		return
	}
	e.metrics.Inc(id)
}

// clock returns the injected clock, defaulting to time.Now.
func (e *Engine) clock() func() time.Time {
	if e != nil && e.now != nil {
		return e.now
	}
	return time.Now
}

func (e *Engine) warnf(format string, args ...any) {
	log.Printf(format, args...)
}

// toFlowRecord mirrors an account into the flow-local shape.
func toFlowRecord(a *Account) flows.AccountRecord {
	return flows.AccountRecord{
		ID:               a.ID,
		Username:         a.Username,
		DisplayName:      a.DisplayName,
		Role:             string(a.Role),
		CredentialStatus: string(a.CredentialStatus),
		CredentialHash:   a.CredentialHash,
		DateOfBirth:      a.DateOfBirth,
		Throttle: lockout.State{
			FailedAttempts: a.FailedAttempts,
			LastAttemptAt:  a.LastAttemptAt,
			LockedUntil:    a.LockedUntil,
		},
		Version: a.Version,
	}
}

func fromFlowRecord(rec flows.AccountRecord) Account {
	return Account{
		ID:               rec.ID,
		Username:         rec.Username,
		DisplayName:      rec.DisplayName,
		Role:             RoleClass(rec.Role),
		CredentialStatus: CredentialStatus(rec.CredentialStatus),
		CredentialHash:   rec.CredentialHash,
		DateOfBirth:      rec.DateOfBirth,
		FailedAttempts:   rec.Throttle.FailedAttempts,
		LastAttemptAt:    rec.Throttle.LastAttemptAt,
		LockedUntil:      rec.Throttle.LockedUntil,
		Version:          rec.Version,
	}
}

func (e *Engine) findByUsername(ctx context.Context, username string) (flows.AccountRecord, error) {
	a, err := e.store.FindByUsername(ctx, username)
	if err != nil {
		return flows.AccountRecord{}, err
	}
	return toFlowRecord(a), nil
}

func (e *Engine) findByID(ctx context.Context, id string) (flows.AccountRecord, error) {
	a, err := e.store.FindByID(ctx, id)
	if err != nil {
		return flows.AccountRecord{}, err
	}
	return toFlowRecord(a), nil
}

func (e *Engine) updateAccount(ctx context.Context, rec flows.AccountRecord) error {
	a := fromFlowRecord(rec)
	return e.store.Update(ctx, &a)
}

func (e *Engine) issueToken(rec flows.AccountRecord) (string, error) {
	return e.codec.Issue(token.ClaimsFor(
		rec.ID,
		rec.Username,
		rec.DisplayName,
		rec.Role,
		rec.CredentialStatus,
	))
}

func (e *Engine) parseToken(tokenStr string) (flows.TokenClaims, error) {
	claims, err := e.codec.Verify(tokenStr)
	if err != nil {
		return flows.TokenClaims{}, err
	}
	return flows.TokenClaims{
		TokenID:          claims.TokenID(),
		AccountID:        claims.AccountID(),
		Username:         claims.Username,
		DisplayName:      claims.DisplayName,
		Role:             claims.Role,
		CredentialStatus: claims.CredentialStatus,
	}, nil
}

func (e *Engine) sentinels() flows.Sentinels {
	return flows.Sentinels{
		EngineNotReady:     ErrEngineNotReady,
		InvalidCredentials: ErrInvalidCredentials,
		InvalidToken:       ErrInvalidToken,
		AccountNotFound:    ErrAccountNotFound,
		Forbidden:          ErrForbidden,
		WeakSecret:         ErrWeakSecret,
		ServiceUnavailable: ErrServiceUnavailable,
		StoreNotFound:      ErrAccountNotFound,
		StoreConflict:      ErrVersionConflict,
	}
}

func (e *Engine) validateSecret(secret string) error {
	ok := flows.CheckSecretPolicy(secret, flows.SecretPolicy{
		MinLength:     e.config.Secret.MinLength,
		RequireDigit:  e.config.Secret.RequireDigit,
		RequireSymbol: e.config.Secret.RequireSymbol,
	})
	if !ok {
		return ErrWeakSecret
	}
	return nil
}
