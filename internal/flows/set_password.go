package flows

import (
	"context"
	"errors"
	"time"
)

// SetPasswordResult carries the replacement token issued after a successful
// password set.
type SetPasswordResult struct {
	Token string
}

// SetPasswordMetrics carries metric IDs needed by the set-password flow.
type SetPasswordMetrics struct {
	Success             int
	Rejected            int
	TokenRejected       int
	StoreConflictRetry  int
	StoreRetryExhausted int
}

// SetPasswordEvents carries audit event names used by the set-password flow.
type SetPasswordEvents struct {
	Success string
	Failure string
}

// SetPasswordDeps captures set-password dependencies.
type SetPasswordDeps struct {
	Now              func() time.Time
	MaxUpdateRetries int

	ParseToken     func(string) (TokenClaims, error)
	IsTokenRevoked func(context.Context, string) (bool, error)
	ValidateSecret func(string) error
	HashSecret     func(string) (string, error)

	FindByID      func(context.Context, string) (AccountRecord, error)
	UpdateAccount func(context.Context, AccountRecord) error
	IssueToken    func(AccountRecord) (string, error)

	MetricInc func(int)
	EmitAudit EmitFunc
	Warn      func(string, ...any)

	Metrics SetPasswordMetrics
	Events  SetPasswordEvents
	Errors  Sentinels
}

// RunSetPassword verifies the presented token, applies the secret policy,
// and atomically moves the account from its current credential to the new
// hash with status "active". The incoming token is not invalidated here; it
// merely becomes stale (its status claim keeps whatever it said at
// issuance), which is why a fresh token is issued and returned.
func RunSetPassword(ctx context.Context, tokenStr, newSecret string, deps SetPasswordDeps) (*SetPasswordResult, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopEmit
	}
	if deps.Warn == nil {
		deps.Warn = noopWarn
	}
	if deps.ParseToken == nil ||
		deps.IsTokenRevoked == nil ||
		deps.ValidateSecret == nil ||
		deps.HashSecret == nil ||
		deps.FindByID == nil ||
		deps.UpdateAccount == nil ||
		deps.IssueToken == nil {
		return nil, deps.Errors.EngineNotReady
	}

	claims, err := deps.ParseToken(tokenStr)
	if err != nil {
		// Expired and malformed collapse to one category for the caller;
		// the distinguishing detail goes to the audit trail.
		deps.MetricInc(deps.Metrics.TokenRejected)
		deps.EmitAudit(ctx, deps.Events.Failure, false, "", "", deps.Errors.InvalidToken, func() map[string]string {
			return map[string]string{"reason": "token_rejected", "detail": err.Error()}
		})
		return nil, deps.Errors.InvalidToken
	}

	revoked, err := deps.IsTokenRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, deps.Errors.ServiceUnavailable
	}
	if revoked {
		deps.MetricInc(deps.Metrics.TokenRejected)
		deps.EmitAudit(ctx, deps.Events.Failure, false, claims.AccountID, claims.AccountID, deps.Errors.InvalidToken, func() map[string]string {
			return map[string]string{"reason": "token_revoked"}
		})
		return nil, deps.Errors.InvalidToken
	}

	if err := deps.ValidateSecret(newSecret); err != nil {
		deps.MetricInc(deps.Metrics.Rejected)
		deps.EmitAudit(ctx, deps.Events.Failure, false, claims.AccountID, claims.AccountID, err, func() map[string]string {
			return map[string]string{"reason": "policy_rejected"}
		})
		return nil, err
	}

	// Hash once, outside the retry loop; the result is reusable verbatim on
	// a conflict retry.
	hash, err := deps.HashSecret(newSecret)
	if err != nil {
		return nil, err
	}

	retries := deps.MaxUpdateRetries
	if retries <= 0 {
		retries = 3
	}

	for attempt := 0; attempt <= retries; attempt++ {
		rec, err := deps.FindByID(ctx, claims.AccountID)
		if err != nil {
			if errors.Is(err, deps.Errors.StoreNotFound) {
				deps.EmitAudit(ctx, deps.Events.Failure, false, claims.AccountID, claims.AccountID, deps.Errors.AccountNotFound, func() map[string]string {
					return map[string]string{"reason": "account_missing"}
				})
				return nil, deps.Errors.AccountNotFound
			}
			return nil, deps.Errors.ServiceUnavailable
		}

		rec.CredentialHash = hash
		rec.CredentialStatus = CredentialActive

		if err := deps.UpdateAccount(ctx, rec); err != nil {
			if errors.Is(err, deps.Errors.StoreConflict) {
				deps.MetricInc(deps.Metrics.StoreConflictRetry)
				continue
			}
			return nil, deps.Errors.ServiceUnavailable
		}

		tok, err := deps.IssueToken(rec)
		if err != nil {
			return nil, err
		}

		deps.MetricInc(deps.Metrics.Success)
		deps.EmitAudit(ctx, deps.Events.Success, true, rec.ID, rec.ID, nil, func() map[string]string {
			return map[string]string{"identifier": rec.Username}
		})
		return &SetPasswordResult{Token: tok}, nil
	}

	deps.MetricInc(deps.Metrics.StoreRetryExhausted)
	return nil, deps.Errors.ServiceUnavailable
}
