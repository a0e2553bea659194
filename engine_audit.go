package portalauth

import (
	"context"
	"errors"

	internalaudit "github.com/opencivic/portalauth/internal/audit"
)

const (
	auditEventLoginSuccess     = "login_success"
	auditEventLoginFailure     = "login_failure"
	auditEventLoginLocked      = "login_locked"
	auditEventPasswordSet      = "password_set"
	auditEventPasswordSetFail  = "password_set_failure"
	auditEventForceReset       = "admin_force_reset"
	auditEventForceResetDenied = "admin_force_reset_forbidden"
	auditEventForceResetFail   = "admin_force_reset_failure"
)

// auditErrorCode is the stable machine-readable code recorded on failed
// events, decoupled from error message wording.
type auditErrorCode string

const (
	auditErrInvalidCredentials auditErrorCode = "invalid_credentials"
	auditErrAccountLocked      auditErrorCode = "account_locked"
	auditErrInvalidToken       auditErrorCode = "invalid_token"
	auditErrAccountNotFound    auditErrorCode = "account_not_found"
	auditErrForbidden          auditErrorCode = "forbidden"
	auditErrWeakSecret         auditErrorCode = "weak_secret"
	auditErrUnavailable        auditErrorCode = "unavailable"
	auditErrInternal           auditErrorCode = "internal"
)

func auditCodeForError(err error) auditErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAccountLocked):
		return auditErrAccountLocked
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrInvalidToken):
		return auditErrInvalidToken
	case errors.Is(err, ErrAccountNotFound):
		return auditErrAccountNotFound
	case errors.Is(err, ErrForbidden):
		return auditErrForbidden
	case errors.Is(err, ErrWeakSecret):
		return auditErrWeakSecret
	case errors.Is(err, ErrServiceUnavailable), errors.Is(err, ErrStoreUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}

// emitAudit is the EmitFunc handed to every flow. The metadata builder runs
// only when a dispatcher is active.
func (e *Engine) emitAudit(ctx context.Context, event string, success bool, actorID, accountID string, failure error, meta func() map[string]string) {
	if e == nil || e.audit == nil || event == "" {
		return
	}

	ev := internalaudit.Event{
		Timestamp: e.clock()(),
		EventType: event,
		ActorID:   actorID,
		AccountID: accountID,
		Success:   success,
	}
	if failure != nil {
		ev.Error = string(auditCodeForError(failure))
	}
	if meta != nil {
		ev.Metadata = meta()
	}

	e.audit.Emit(ctx, ev)
}
