package portalauth

import (
	"context"

	"github.com/opencivic/portalauth/internal/defaultcred"
	"github.com/opencivic/portalauth/internal/flows"
	internalmetrics "github.com/opencivic/portalauth/internal/metrics"
)

// Login verifies one authentication attempt for username. While the account
// is on its default credential the presented secret is checked against the
// derivation from the account's date of birth; afterwards, against the
// stored hash. The returned result carries the session token and a routing
// hint: accounts still on the default credential are directed to the
// mandatory password-set flow.
//
// Failures: [ErrInvalidCredentials] for an unknown username or wrong secret
// (indistinguishable by design), a [LockedError] wrapping [ErrAccountLocked]
// while the lockout window is active, [ErrServiceUnavailable] when the store
// fails or the conditional-update retry budget is exhausted.
func (e *Engine) Login(ctx context.Context, username, secret string) (*LoginResult, error) {
	result, err := flows.RunLogin(ctx, username, secret, e.loginFlowDeps())
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:            result.Token,
		CredentialStatus: CredentialStatus(result.CredentialStatus),
		Route:            RouteHint(result.Route),
	}, nil
}

func (e *Engine) loginFlowDeps() flows.LoginDeps {
	if e == nil {
		return flows.LoginDeps{Errors: flows.Sentinels{EngineNotReady: ErrEngineNotReady}}
	}

	return flows.LoginDeps{
		Now:              e.clock(),
		Policy:           e.policy,
		MaxUpdateRetries: e.config.Store.MaxUpdateRetries,

		FindByUsername: e.findByUsername,
		UpdateAccount:  e.updateAccount,

		MatchDefaultSecret: defaultcred.Match,
		VerifySecret:       e.hasher.Verify,
		IssueToken:         e.issueToken,

		LockedError: newLockedError,

		MetricInc: func(id int) { e.metricInc(MetricID(id)) },
		EmitAudit: e.emitAudit,
		Warn:      e.warnf,

		Metrics: flows.LoginMetrics{
			LoginSuccess:        int(internalmetrics.LoginSuccess),
			LoginFailure:        int(internalmetrics.LoginFailure),
			LoginLocked:         int(internalmetrics.LoginLocked),
			StoreConflictRetry:  int(internalmetrics.StoreConflictRetry),
			StoreRetryExhausted: int(internalmetrics.StoreRetryExhausted),
		},
		Events: flows.LoginEvents{
			LoginSuccess: auditEventLoginSuccess,
			LoginFailure: auditEventLoginFailure,
			LoginLocked:  auditEventLoginLocked,
		},
		Errors: e.sentinels(),
	}
}
