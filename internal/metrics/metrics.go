// Package metrics provides lock-free counters for engine observability.
//
// Counters are incremented atomically and are allocation-free on the write
// path. Export is the caller's concern: the engine exposes point-in-time
// snapshots and nothing else.
package metrics

import "sync/atomic"

// MetricID identifies one counter.
type MetricID int

const (
	LoginSuccess MetricID = iota
	LoginFailure
	LoginLocked
	PasswordSetSuccess
	PasswordSetRejected
	AdminResetSuccess
	TokenRejected
	StoreConflictRetry
	StoreRetryExhausted

	// Count is the number of defined metric IDs.
	Count
)

// Config controls whether metric recording is active. Disabled metrics make
// every operation a no-op.
type Config struct {
	Enabled bool
}

// Metrics holds the counter slots. A nil *Metrics is safe to use.
type Metrics struct {
	counters [Count]atomic.Uint64
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

// New returns a Metrics instance, or nil when disabled.
func New(cfg Config) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	return &Metrics{}
}

// Inc increments one counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || id < 0 || id >= Count {
		return
	}
	m.counters[id].Add(1)
}

// Snapshot copies all counters.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{Counters: make(map[MetricID]uint64, Count)}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < Count; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
