package economy

import (
	"sync/atomic"
	"testing"
	"time"
)

// ─── Scheduler Tests ────────────────────────────────────────────────────────

func TestScheduler_TicksWhileRunning(t *testing.T) {
	var ticks atomic.Int64
	s := NewScheduler(5*time.Millisecond, func() { ticks.Add(1) })

	s.Start()
	if !s.Running() {
		t.Fatal("scheduler not running after Start")
	}

	deadline := time.After(2 * time.Second)
	for ticks.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d ticks before deadline", ticks.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	s.Stop()
}

func TestScheduler_StopCancelsFutureTicks(t *testing.T) {
	var ticks atomic.Int64
	s := NewScheduler(5*time.Millisecond, func() { ticks.Add(1) })

	s.Start()
	time.Sleep(20 * time.Millisecond)
	s.Stop()
	if s.Running() {
		t.Fatal("scheduler still running after Stop")
	}

	// Allow any already-dispatched tick to drain, then confirm quiescence.
	time.Sleep(15 * time.Millisecond)
	settled := ticks.Load()
	time.Sleep(30 * time.Millisecond)
	if got := ticks.Load(); got != settled {
		t.Errorf("ticks advanced from %d to %d after Stop", settled, got)
	}
}

func TestScheduler_StartIdempotent(t *testing.T) {
	var ticks atomic.Int64
	s := NewScheduler(time.Hour, func() { ticks.Add(1) })

	s.Start()
	s.Start()
	s.Stop()
	s.Stop() // double Stop must not panic

	if s.Running() {
		t.Error("running after Stop")
	}
}

func TestScheduler_ZeroPeriodNeverArms(t *testing.T) {
	s := NewScheduler(0, func() { t.Error("tick fired with zero period") })
	s.Start()
	if s.Running() {
		t.Error("scheduler armed with zero period")
	}
	s.Stop()
}
