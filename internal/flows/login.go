package flows

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/opencivic/portalauth/internal/lockout"
)

// LoginResult is the flow-local login response shape.
type LoginResult struct {
	Token            string
	CredentialStatus string
	Route            string
}

// LoginMetrics carries metric IDs needed by the login flow.
type LoginMetrics struct {
	LoginSuccess        int
	LoginFailure        int
	LoginLocked         int
	StoreConflictRetry  int
	StoreRetryExhausted int
}

// LoginEvents carries audit event names used by the login flow.
type LoginEvents struct {
	LoginSuccess string
	LoginFailure string
	LoginLocked  string
}

// LoginDeps captures login dependencies.
type LoginDeps struct {
	Now              func() time.Time
	Policy           lockout.Policy
	MaxUpdateRetries int

	FindByUsername func(context.Context, string) (AccountRecord, error)
	UpdateAccount  func(context.Context, AccountRecord) error

	MatchDefaultSecret func(dob time.Time, secret string) bool
	VerifySecret       func(secret, hash string) (bool, error)
	IssueToken         func(AccountRecord) (string, error)

	// LockedError builds the host's typed lockout error from the remaining
	// duration.
	LockedError func(remaining time.Duration) error

	MetricInc func(int)
	EmitAudit EmitFunc
	Warn      func(string, ...any)

	Metrics LoginMetrics
	Events  LoginEvents
	Errors  Sentinels
}

// RunLogin executes one authentication attempt: lock check, sliding-window
// admission, credential verification against either the derived default
// secret or the stored hash, throttle-state persistence, and token issuance.
//
// The fetch-evaluate-update cycle restarts from the fetch on a store version
// conflict, bounded by MaxUpdateRetries, so a concurrent attempt can never
// silently swallow a failure-counter increment.
func RunLogin(ctx context.Context, username, secret string, deps LoginDeps) (*LoginResult, error) {
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
	if deps.FindByUsername == nil ||
		deps.UpdateAccount == nil ||
		deps.MatchDefaultSecret == nil ||
		deps.VerifySecret == nil ||
		deps.IssueToken == nil ||
		deps.LockedError == nil {
		return nil, deps.Errors.EngineNotReady
	}

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || secret == "" {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, "", "", deps.Errors.InvalidCredentials, func() map[string]string {
			return map[string]string{"reason": "empty_input"}
		})
		return nil, deps.Errors.InvalidCredentials
	}

	retries := deps.MaxUpdateRetries
	if retries <= 0 {
		retries = 3
	}

	for attempt := 0; attempt <= retries; attempt++ {
		rec, err := deps.FindByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, deps.Errors.StoreNotFound) {
				// Same error shape as a wrong secret: no username
				// enumeration through this surface.
				deps.MetricInc(deps.Metrics.LoginFailure)
				deps.EmitAudit(ctx, deps.Events.LoginFailure, false, "", "", deps.Errors.InvalidCredentials, func() map[string]string {
					return map[string]string{"identifier": username, "reason": "account_unknown"}
				})
				return nil, deps.Errors.InvalidCredentials
			}
			return nil, deps.Errors.ServiceUnavailable
		}

		now := deps.Now()
		if deps.Policy.IsLocked(rec.Throttle, now) {
			remaining := deps.Policy.Remaining(rec.Throttle, now)
			deps.MetricInc(deps.Metrics.LoginLocked)
			deps.EmitAudit(ctx, deps.Events.LoginLocked, false, rec.ID, rec.ID, deps.Errors.InvalidCredentials, func() map[string]string {
				return map[string]string{"identifier": username, "remaining": remaining.String()}
			})
			return nil, deps.LockedError(remaining)
		}

		state := deps.Policy.AdmitAttempt(rec.Throttle, now)

		var match bool
		if rec.CredentialStatus == CredentialDefault {
			match = deps.MatchDefaultSecret(rec.DateOfBirth, secret)
		} else {
			ok, verr := deps.VerifySecret(secret, rec.CredentialHash)
			if verr != nil {
				// Unreadable stored hash counts as a mismatch; the defect
				// itself is operational and must surface in logs.
				deps.Warn("portalauth: stored credential hash unreadable for account %s: %v", rec.ID, verr)
			}
			match = verr == nil && ok
		}

		if !match {
			state = deps.Policy.RecordFailure(state, now)
			rec.Throttle = state
			if err := deps.UpdateAccount(ctx, rec); err != nil {
				if errors.Is(err, deps.Errors.StoreConflict) {
					deps.MetricInc(deps.Metrics.StoreConflictRetry)
					continue
				}
				return nil, deps.Errors.ServiceUnavailable
			}

			if deps.Policy.IsLocked(state, now) {
				remaining := deps.Policy.Remaining(state, now)
				deps.MetricInc(deps.Metrics.LoginLocked)
				deps.EmitAudit(ctx, deps.Events.LoginLocked, false, rec.ID, rec.ID, deps.Errors.InvalidCredentials, func() map[string]string {
					return map[string]string{"identifier": username, "reason": "threshold_crossed", "remaining": remaining.String()}
				})
				return nil, deps.LockedError(remaining)
			}

			deps.MetricInc(deps.Metrics.LoginFailure)
			deps.EmitAudit(ctx, deps.Events.LoginFailure, false, rec.ID, rec.ID, deps.Errors.InvalidCredentials, func() map[string]string {
				return map[string]string{"identifier": username, "reason": "secret_mismatch"}
			})
			return nil, deps.Errors.InvalidCredentials
		}

		rec.Throttle = deps.Policy.RecordSuccess(state)
		if err := deps.UpdateAccount(ctx, rec); err != nil {
			if errors.Is(err, deps.Errors.StoreConflict) {
				deps.MetricInc(deps.Metrics.StoreConflictRetry)
				continue
			}
			return nil, deps.Errors.ServiceUnavailable
		}

		tok, err := deps.IssueToken(rec)
		if err != nil {
			// Signing failure is an operational defect; never report it as
			// a credential problem.
			return nil, err
		}

		deps.MetricInc(deps.Metrics.LoginSuccess)
		deps.EmitAudit(ctx, deps.Events.LoginSuccess, true, rec.ID, rec.ID, nil, func() map[string]string {
			return map[string]string{"identifier": username, "credential_status": rec.CredentialStatus}
		})

		route := RouteDashboard
		if rec.CredentialStatus == CredentialDefault {
			route = RoutePasswordSetup
		}
		return &LoginResult{
			Token:            tok,
			CredentialStatus: rec.CredentialStatus,
			Route:            route,
		}, nil
	}

	deps.MetricInc(deps.Metrics.StoreRetryExhausted)
	return nil, deps.Errors.ServiceUnavailable
}
