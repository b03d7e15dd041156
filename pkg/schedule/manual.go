package schedule

import (
	"sync"
	"time"
)

// Manual records scheduled callbacks instead of running them on a clock.
// Tests and dry runs inspect Delays and fire callbacks with RunPending.
type Manual struct {
	mu      sync.Mutex
	Delays  []time.Duration
	pending []func()
}

// After records d and queues fn.
func (m *Manual) After(d time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Delays = append(m.Delays, d)
	m.pending = append(m.pending, fn)
}

// Pending returns the number of callbacks not yet run.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// RunPending runs the callbacks queued so far, in scheduling order, and
// returns how many ran. Callbacks they schedule are left for the next call.
func (m *Manual) RunPending() int {
	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}
