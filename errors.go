package portalauth

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// secret. The two cases are deliberately indistinguishable to the
	// caller so this surface cannot be used for username enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked is returned while the lockout window is active.
	// Returned values are of type [LockedError] and carry the remaining
	// duration, which is safe to disclose.
	ErrAccountLocked = errors.New("account locked")
	// ErrInvalidToken covers expired, malformed, badly signed, and revoked
	// tokens alike; the distinguishing detail reaches the audit trail only.
	ErrInvalidToken = errors.New("invalid token")
	// ErrAccountNotFound is returned when a token- or ID-addressed account
	// no longer exists.
	ErrAccountNotFound = errors.New("account not found")
	// ErrForbidden is returned when the acting token lacks the admin role.
	ErrForbidden = errors.New("forbidden")
	// ErrWeakSecret is returned when a new secret fails the strength
	// policy (minimum length, digit, symbol).
	ErrWeakSecret = errors.New("secret does not meet policy")
	// ErrServiceUnavailable is returned when the account store times out,
	// fails, or exhausts the conditional-update retry budget. It is never
	// collapsed into a credential error.
	ErrServiceUnavailable = errors.New("authentication service unavailable")
	// ErrEngineNotReady is returned when the engine was not constructed
	// through [Builder.Build].
	ErrEngineNotReady = errors.New("engine not initialized")

	// Store contract sentinels. AccountStore implementations return these
	// (possibly wrapped) so the engine can branch on them.

	// ErrVersionConflict reports a conditional update that lost to a
	// concurrent write.
	ErrVersionConflict = errors.New("account version conflict")
	// ErrDuplicateUsername reports a create with an already-taken handle.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrStoreUnavailable reports an unreachable or failing backing store.
	ErrStoreUnavailable = errors.New("account store unavailable")
)

// LockedError is the concrete error returned for locked accounts. It wraps
// [ErrAccountLocked] for errors.Is matching and reports the remaining lock
// time rounded up to whole minutes, which is specific enough to act on
// without exposing attempt counters.
type LockedError struct {
	Remaining time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account locked, try again in %d minutes", e.RemainingMinutes())
}

func (e *LockedError) Unwrap() error { return ErrAccountLocked }

// RemainingMinutes reports the remaining lock time in whole minutes,
// rounding up so "try again in N minutes" is never an under-promise.
func (e *LockedError) RemainingMinutes() int {
	if e.Remaining <= 0 {
		return 0
	}
	return int((e.Remaining + time.Minute - 1) / time.Minute)
}

func newLockedError(remaining time.Duration) error {
	return &LockedError{Remaining: remaining}
}
