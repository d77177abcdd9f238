package timeutil

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestRealClock_Now(t *testing.T) {
	clock := RealClock{}
	before := time.Now()
	now := clock.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("Now() = %v, expected between %v and %v", now, before, after)
	}
}

func TestRealClock_Since(t *testing.T) {
	clock := RealClock{}
	past := time.Now().Add(-time.Second)
	d := clock.Since(past)

	if d < time.Second {
		t.Errorf("Since() returned %v, expected >= 1s", d)
	}
}

func TestMockClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	if !clock.Now().Equal(start) {
		t.Errorf("Now() = %v, want %v", clock.Now(), start)
	}
	if got := clock.Since(start); got != 0 {
		t.Errorf("Since() without step = %v, want 0", got)
	}
}

func TestMockClock_Step(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)
	clock.SetStep(time.Millisecond)

	first := clock.Now()
	second := clock.Now()
	if second.Sub(first) != time.Millisecond {
		t.Errorf("step = %v, want 1ms", second.Sub(first))
	}
	if got := clock.Since(first); got != 2*time.Millisecond {
		t.Errorf("Since() = %v, want 2ms", got)
	}
}

func TestTimings(t *testing.T) {
	clock := NewMockClock(time.Unix(0, 0))
	clock.SetStep(3 * time.Millisecond)
	timings := NewTimings(clock)

	// Each Start reads Now once, so every measurement spans one step.
	timings.Start("objects/edges")()
	timings.Start("objects/edges")()

	clock.SetStep(time.Millisecond)
	func() {
		defer timings.Start("objects/attach")()
	}()

	want := map[string]time.Duration{
		"objects/edges":  6 * time.Millisecond,
		"objects/attach": time.Millisecond,
	}
	if diff := cmp.Diff(want, timings.Snapshot()); diff != "" {
		t.Errorf("Snapshot() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"objects/attach", "objects/edges"}, timings.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	if got := timings.Get("objects/edges"); got != 6*time.Millisecond {
		t.Errorf("Get() = %v, want 6ms", got)
	}
	if got := timings.Get("objects/missing"); got != 0 {
		t.Errorf("Get() of unknown timer = %v, want 0", got)
	}
}

func TestTimings_NilClock(t *testing.T) {
	timings := NewTimings(nil)
	timings.Start("x")()
	if _, ok := timings.Snapshot()["x"]; !ok {
		t.Error("expected timer x to be recorded")
	}
}
