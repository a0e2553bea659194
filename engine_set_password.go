package portalauth

import (
	"context"

	"github.com/opencivic/portalauth/internal/flows"
	internalmetrics "github.com/opencivic/portalauth/internal/metrics"
)

// SetPassword replaces the account's credential with newSecret, moving it to
// the active state. The presented token must verify; every verification
// failure (expired, malformed, revoked) collapses to [ErrInvalidToken].
// The secret must satisfy the strength policy or [ErrWeakSecret] is
// returned. On success a fresh token reflecting the active status is issued;
// the incoming token is not invalidated and stays usable until natural
// expiry (see [TokenRevocationStore] for the extension point).
func (e *Engine) SetPassword(ctx context.Context, tokenStr, newSecret string) (*SetPasswordResult, error) {
	result, err := flows.RunSetPassword(ctx, tokenStr, newSecret, e.setPasswordFlowDeps())
	if err != nil {
		return nil, err
	}
	return &SetPasswordResult{Token: result.Token}, nil
}

func (e *Engine) setPasswordFlowDeps() flows.SetPasswordDeps {
	if e == nil {
		return flows.SetPasswordDeps{Errors: flows.Sentinels{EngineNotReady: ErrEngineNotReady}}
	}

	return flows.SetPasswordDeps{
		Now:              e.clock(),
		MaxUpdateRetries: e.config.Store.MaxUpdateRetries,

		ParseToken:     e.parseToken,
		IsTokenRevoked: e.revocation.IsRevoked,
		ValidateSecret: e.validateSecret,
		HashSecret:     e.hasher.Hash,

		FindByID:      e.findByID,
		UpdateAccount: e.updateAccount,
		IssueToken:    e.issueToken,

		MetricInc: func(id int) { e.metricInc(MetricID(id)) },
		EmitAudit: e.emitAudit,
		Warn:      e.warnf,

		Metrics: flows.SetPasswordMetrics{
			Success:             int(internalmetrics.PasswordSetSuccess),
			Rejected:            int(internalmetrics.PasswordSetRejected),
			TokenRejected:       int(internalmetrics.TokenRejected),
			StoreConflictRetry:  int(internalmetrics.StoreConflictRetry),
			StoreRetryExhausted: int(internalmetrics.StoreRetryExhausted),
		},
		Events: flows.SetPasswordEvents{
			Success: auditEventPasswordSet,
			Failure: auditEventPasswordSetFail,
		},
		Errors: e.sentinels(),
	}
}
