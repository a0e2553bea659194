package portalauth

import (
	"context"

	"github.com/opencivic/portalauth/internal/flows"
	internalmetrics "github.com/opencivic/portalauth/internal/metrics"
)

// AdminForceReset clears the target account's stored credential and returns
// it to the default-credential state, so the resident's next login uses the
// date-of-birth derivation again and routes into the password-set flow. The
// acting token must carry [RoleAdmin] or [ErrForbidden] is returned. Lockout
// counters on the target are left untouched. The action is recorded in the
// audit trail naming both the acting administrator and the target.
func (e *Engine) AdminForceReset(ctx context.Context, actingToken, targetAccountID string) (*ForceResetResult, error) {
	result, err := flows.RunAdminForceReset(ctx, actingToken, targetAccountID, e.adminResetFlowDeps())
	if err != nil {
		return nil, err
	}
	return &ForceResetResult{TargetUsername: result.TargetUsername}, nil
}

func (e *Engine) adminResetFlowDeps() flows.AdminResetDeps {
	if e == nil {
		return flows.AdminResetDeps{Errors: flows.Sentinels{EngineNotReady: ErrEngineNotReady}}
	}

	return flows.AdminResetDeps{
		MaxUpdateRetries: e.config.Store.MaxUpdateRetries,
		AdminRole:        string(RoleAdmin),

		ParseToken:     e.parseToken,
		IsTokenRevoked: e.revocation.IsRevoked,

		FindByID:      e.findByID,
		UpdateAccount: e.updateAccount,

		MetricInc: func(id int) { e.metricInc(MetricID(id)) },
		EmitAudit: e.emitAudit,

		Metrics: flows.AdminResetMetrics{
			Success:             int(internalmetrics.AdminResetSuccess),
			TokenRejected:       int(internalmetrics.TokenRejected),
			StoreConflictRetry:  int(internalmetrics.StoreConflictRetry),
			StoreRetryExhausted: int(internalmetrics.StoreRetryExhausted),
		},
		Events: flows.AdminResetEvents{
			Success:   auditEventForceReset,
			Forbidden: auditEventForceResetDenied,
			Failure:   auditEventForceResetFail,
		},
		Errors: e.sentinels(),
	}
}
