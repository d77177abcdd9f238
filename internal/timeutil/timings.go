package timeutil

import (
	"sort"
	"sync"
	"time"
)

// Timings accumulates named durations measured with a Clock.
type Timings struct {
	mu    sync.Mutex
	clock Clock
	total map[string]time.Duration
}

// NewTimings returns an empty Timings. A nil clock selects RealClock.
func NewTimings(clock Clock) *Timings {
	if clock == nil {
		clock = RealClock{}
	}
	return &Timings{clock: clock, total: make(map[string]time.Duration)}
}

// Start begins timing name and returns the function that stops it. The
// measured duration is added to any earlier measurement of the same name.
//
//	defer timings.Start("objects/edges")()
func (t *Timings) Start(name string) func() {
	start := t.clock.Now()
	return func() {
		d := t.clock.Since(start)
		t.mu.Lock()
		t.total[name] += d
		t.mu.Unlock()
	}
}

// Get returns the accumulated duration of name.
func (t *Timings) Get(name string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total[name]
}

// Names returns the recorded timer names in lexical order.
func (t *Timings) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	names := make([]string, 0, len(t.total))
	for name := range t.total {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of every accumulated duration.
func (t *Timings) Snapshot() map[string]time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]time.Duration, len(t.total))
	for k, v := range t.total {
		out[k] = v
	}
	return out
}
