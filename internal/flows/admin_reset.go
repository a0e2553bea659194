package flows

import (
	"context"
	"errors"
)

// AdminResetResult names the account that was forced back to its default
// credential.
type AdminResetResult struct {
	TargetUsername string
}

// AdminResetMetrics carries metric IDs needed by the admin-reset flow.
type AdminResetMetrics struct {
	Success             int
	TokenRejected       int
	StoreConflictRetry  int
	StoreRetryExhausted int
}

// AdminResetEvents carries audit event names used by the admin-reset flow.
type AdminResetEvents struct {
	Success   string
	Forbidden string
	Failure   string
}

// AdminResetDeps captures admin-force-reset dependencies.
type AdminResetDeps struct {
	MaxUpdateRetries int
	AdminRole        string

	ParseToken     func(string) (TokenClaims, error)
	IsTokenRevoked func(context.Context, string) (bool, error)

	FindByID      func(context.Context, string) (AccountRecord, error)
	UpdateAccount func(context.Context, AccountRecord) error

	MetricInc func(int)
	EmitAudit EmitFunc

	Metrics AdminResetMetrics
	Events  AdminResetEvents
	Errors  Sentinels
}

// RunAdminForceReset clears the target's stored credential and returns it to
// the default-credential state. Lockout counters are deliberately left
// untouched: a forced reset changes what the account authenticates with, not
// whether it may attempt to.
func RunAdminForceReset(ctx context.Context, actingToken, targetAccountID string, deps AdminResetDeps) (*AdminResetResult, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopEmit
	}
	if deps.ParseToken == nil ||
		deps.IsTokenRevoked == nil ||
		deps.FindByID == nil ||
		deps.UpdateAccount == nil {
		return nil, deps.Errors.EngineNotReady
	}

	claims, err := deps.ParseToken(actingToken)
	if err != nil {
		deps.MetricInc(deps.Metrics.TokenRejected)
		deps.EmitAudit(ctx, deps.Events.Failure, false, "", targetAccountID, deps.Errors.InvalidToken, func() map[string]string {
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
		deps.EmitAudit(ctx, deps.Events.Failure, false, claims.AccountID, targetAccountID, deps.Errors.InvalidToken, func() map[string]string {
			return map[string]string{"reason": "token_revoked"}
		})
		return nil, deps.Errors.InvalidToken
	}

	if claims.Role != deps.AdminRole {
		deps.EmitAudit(ctx, deps.Events.Forbidden, false, claims.AccountID, targetAccountID, deps.Errors.Forbidden, func() map[string]string {
			return map[string]string{"actor_role": claims.Role}
		})
		return nil, deps.Errors.Forbidden
	}

	retries := deps.MaxUpdateRetries
	if retries <= 0 {
		retries = 3
	}

	for attempt := 0; attempt <= retries; attempt++ {
		rec, err := deps.FindByID(ctx, targetAccountID)
		if err != nil {
			if errors.Is(err, deps.Errors.StoreNotFound) {
				deps.EmitAudit(ctx, deps.Events.Failure, false, claims.AccountID, targetAccountID, deps.Errors.AccountNotFound, func() map[string]string {
					return map[string]string{"reason": "account_missing"}
				})
				return nil, deps.Errors.AccountNotFound
			}
			return nil, deps.Errors.ServiceUnavailable
		}

		rec.CredentialHash = ""
		rec.CredentialStatus = CredentialDefault

		if err := deps.UpdateAccount(ctx, rec); err != nil {
			if errors.Is(err, deps.Errors.StoreConflict) {
				deps.MetricInc(deps.Metrics.StoreConflictRetry)
				continue
			}
			return nil, deps.Errors.ServiceUnavailable
		}

		deps.MetricInc(deps.Metrics.Success)
		deps.EmitAudit(ctx, deps.Events.Success, true, claims.AccountID, rec.ID, nil, func() map[string]string {
			return map[string]string{"target_identifier": rec.Username, "action": "force_default_credential"}
		})
		return &AdminResetResult{TargetUsername: rec.Username}, nil
	}

	deps.MetricInc(deps.Metrics.StoreRetryExhausted)
	return nil, deps.Errors.ServiceUnavailable
}
