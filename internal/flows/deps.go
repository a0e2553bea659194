package flows

import (
	"context"
	"time"

	"github.com/opencivic/portalauth/internal/lockout"
)

// Credential status values mirrored from the host package. The root package
// guarantees these strings match its own CredentialStatus constants.
const (
	CredentialDefault = "default"
	CredentialActive  = "active"
)

// Routing hints returned by the login flow.
const (
	RoutePasswordSetup = "password-setup"
	RouteDashboard     = "dashboard"
)

// AccountRecord is the flow-local mirror of the host account model.
type AccountRecord struct {
	ID               string
	Username         string
	DisplayName      string
	Role             string
	CredentialStatus string
	CredentialHash   string
	DateOfBirth      time.Time
	Throttle         lockout.State
	Version          uint64
}

// TokenClaims is the flow-local mirror of verified session-token claims.
type TokenClaims struct {
	TokenID          string
	AccountID        string
	Username         string
	DisplayName      string
	Role             string
	CredentialStatus string
}

// Sentinels carries the host-level sentinel errors flows return and match
// against. StoreNotFound and StoreConflict are matched (errors.Is) on values
// coming back from the store dependencies; the rest are returned verbatim.
type Sentinels struct {
	EngineNotReady     error
	InvalidCredentials error
	InvalidToken       error
	AccountNotFound    error
	Forbidden          error
	WeakSecret         error
	ServiceUnavailable error
	StoreNotFound      error
	StoreConflict      error
}

// EmitFunc is the audit emission callback shared by all flows. The metadata
// builder is only invoked when auditing is active.
type EmitFunc func(ctx context.Context, event string, success bool, actorID, accountID string, failure error, meta func() map[string]string)

func noopEmit(context.Context, string, bool, string, string, error, func() map[string]string) {
}

func noopMetric(int) {}

func noopWarn(string, ...any) {}
