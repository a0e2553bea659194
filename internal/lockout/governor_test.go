package lockout

import (
	"testing"
	"time"
)

var t0 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestIsLocked_StrictBoundary(t *testing.T) {
	p := DefaultPolicy()
	s := State{FailedAttempts: 5, LastAttemptAt: t0, LockedUntil: t0.Add(15 * time.Minute)}

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before expiry", t0.Add(14 * time.Minute), true},
		{"exactly at expiry", t0.Add(15 * time.Minute), false},
		{"after expiry", t0.Add(16 * time.Minute), false},
		{"one nanosecond before", t0.Add(15*time.Minute - time.Nanosecond), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.IsLocked(s, tc.now); got != tc.want {
				t.Fatalf("IsLocked at %v = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

func TestIsLocked_ZeroLockedUntil(t *testing.T) {
	p := DefaultPolicy()
	if p.IsLocked(State{FailedAttempts: 3, LastAttemptAt: t0}, t0) {
		t.Fatal("state without LockedUntil must not be locked")
	}
}

func TestRemaining(t *testing.T) {
	p := DefaultPolicy()
	s := State{FailedAttempts: 5, LastAttemptAt: t0, LockedUntil: t0.Add(15 * time.Minute)}

	if got := p.Remaining(s, t0.Add(5*time.Minute)); got != 10*time.Minute {
		t.Fatalf("Remaining = %v, want 10m", got)
	}
	if got := p.Remaining(s, t0.Add(20*time.Minute)); got != 0 {
		t.Fatalf("Remaining after expiry = %v, want 0", got)
	}
}

func TestAdmitAttempt_WindowReset(t *testing.T) {
	p := DefaultPolicy()
	s := State{FailedAttempts: 4, LastAttemptAt: t0, LockedUntil: time.Time{}}

	// Inside the window: state unchanged.
	got := p.AdmitAttempt(s, t0.Add(15*time.Minute))
	if got != s {
		t.Fatalf("state changed inside window: %+v", got)
	}

	// Outside the window: everything cleared.
	got = p.AdmitAttempt(s, t0.Add(15*time.Minute+time.Second))
	if got != (State{}) {
		t.Fatalf("state not cleared outside window: %+v", got)
	}
}

func TestAdmitAttempt_NoHistory(t *testing.T) {
	p := DefaultPolicy()
	if got := p.AdmitAttempt(State{}, t0); got != (State{}) {
		t.Fatalf("fresh state mutated: %+v", got)
	}
}

func TestRecordFailure_CountsAndLocks(t *testing.T) {
	p := DefaultPolicy()
	var s State
	now := t0
	for i := 1; i < p.MaxAttempts; i++ {
		s = p.RecordFailure(s, now)
		if s.FailedAttempts != i {
			t.Fatalf("attempt %d: count = %d", i, s.FailedAttempts)
		}
		if !s.LockedUntil.IsZero() {
			t.Fatalf("attempt %d: locked before threshold", i)
		}
		now = now.Add(time.Minute)
	}

	s = p.RecordFailure(s, now)
	if s.FailedAttempts != p.MaxAttempts {
		t.Fatalf("count = %d, want %d", s.FailedAttempts, p.MaxAttempts)
	}
	want := now.Add(p.LockoutDuration)
	if !s.LockedUntil.Equal(want) {
		t.Fatalf("LockedUntil = %v, want %v", s.LockedUntil, want)
	}
	if !s.LockedUntil.After(now) {
		t.Fatal("LockedUntil must be strictly after the triggering attempt")
	}
}

func TestRecordFailure_AfterWindowResetStartsAtOne(t *testing.T) {
	p := DefaultPolicy()
	s := State{FailedAttempts: 4, LastAttemptAt: t0}

	now := t0.Add(p.AttemptWindow + time.Minute)
	s = p.RecordFailure(p.AdmitAttempt(s, now), now)
	if s.FailedAttempts != 1 {
		t.Fatalf("count after window reset = %d, want 1", s.FailedAttempts)
	}
	if !s.LockedUntil.IsZero() {
		t.Fatal("single post-reset failure must not lock")
	}
}

func TestRecordSuccess_ClearsEverything(t *testing.T) {
	p := DefaultPolicy()
	s := State{FailedAttempts: 5, LastAttemptAt: t0, LockedUntil: t0.Add(time.Hour)}
	if got := p.RecordSuccess(s); got != (State{}) {
		t.Fatalf("RecordSuccess left state: %+v", got)
	}
}
