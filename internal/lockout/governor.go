// Package lockout implements the failed-attempt throttling state machine.
//
// The package is pure: it performs no I/O and reads no clocks. Callers pass
// the current time into every transition, which keeps the logic
// deterministically testable and leaves lock expiry lazily evaluated: a lock
// is never swept by a timer, it simply stops mattering once now reaches
// LockedUntil.
package lockout

import "time"

// Policy holds the three throttling constants. The zero value is not usable;
// construct via DefaultPolicy or from engine configuration.
type Policy struct {
	// MaxAttempts is the number of consecutive failures that trigger a lock.
	MaxAttempts int
	// LockoutDuration is how long an account stays locked once triggered.
	LockoutDuration time.Duration
	// AttemptWindow is the sliding window: a failure older than this no
	// longer counts against the account.
	AttemptWindow time.Duration
}

// DefaultPolicy returns the stock portal policy: 5 attempts, 15 minute lock,
// 15 minute counting window.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     5,
		LockoutDuration: 15 * time.Minute,
		AttemptWindow:   15 * time.Minute,
	}
}

// State is the per-account throttle state persisted on the account record.
// Zero times mean "never" / "not set".
type State struct {
	FailedAttempts int
	LastAttemptAt  time.Time
	LockedUntil    time.Time
}

// IsLocked reports whether the account may not attempt authentication at now.
// The comparison is strict: an attempt arriving exactly at LockedUntil is
// admitted.
func (p Policy) IsLocked(s State, now time.Time) bool {
	if s.LockedUntil.IsZero() {
		return false
	}
	return now.Before(s.LockedUntil)
}

// Remaining returns how much lock time is left at now, or zero when unlocked.
func (p Policy) Remaining(s State, now time.Time) time.Duration {
	if !p.IsLocked(s, now) {
		return 0
	}
	return s.LockedUntil.Sub(now)
}

// AdmitAttempt applies sliding-window forgiveness before an attempt is
// evaluated: when the previous failure is older than AttemptWindow the
// counter and lock fields are cleared, so a stale history never inflates the
// next failure. The returned state is what the attempt must be evaluated
// against.
func (p Policy) AdmitAttempt(s State, now time.Time) State {
	if s.LastAttemptAt.IsZero() {
		return s
	}
	if now.Sub(s.LastAttemptAt) > p.AttemptWindow {
		return State{}
	}
	return s
}

// RecordFailure counts one failed attempt at now. Crossing MaxAttempts sets
// LockedUntil strictly after now.
func (p Policy) RecordFailure(s State, now time.Time) State {
	s.FailedAttempts++
	s.LastAttemptAt = now
	if s.FailedAttempts >= p.MaxAttempts {
		s.LockedUntil = now.Add(p.LockoutDuration)
	}
	return s
}

// RecordSuccess clears all throttle state after a successful authentication.
func (p Policy) RecordSuccess(s State) State {
	return State{}
}
