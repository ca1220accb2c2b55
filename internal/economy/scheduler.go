package economy

import (
	"sync"
	"time"
)

// ─── Accrual Scheduler ──────────────────────────────────────────────────────
// Drives foreground passive accrual. Two states: Idle (no timer armed) and
// Running (a repeating interval armed). The timer is re-armed after every
// tick rather than computed as free-running drift accumulation, so
// suspending the host simply stops future ticks without owing "missed"
// ticks — the background reconciliation protocol covers the gap instead.

// Scheduler fires the tick callback once per elapsed period while running.
type Scheduler struct {
	mu      sync.Mutex
	period  time.Duration
	tick    func()
	stop    chan struct{}
	running bool
}

// NewScheduler creates an idle scheduler. tick is invoked from the
// scheduler goroutine; the callback is responsible for its own locking.
func NewScheduler(period time.Duration, tick func()) *Scheduler {
	return &Scheduler{period: period, tick: tick}
}

// Running reports whether the interval is currently armed.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start transitions Idle → Running. No-op when already running.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.period <= 0 {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	go s.loop(s.stop)
}

// Stop transitions Running → Idle. The loop exits promptly; a tick already
// dispatched is guarded by the engine's own state check, so no credit is
// applied after the transition.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stop)
	s.stop = nil
}

func (s *Scheduler) loop(stop chan struct{}) {
	timer := time.NewTimer(s.period)
	defer timer.Stop()
	for {
		select {
		case <-stop:
			return
		case <-timer.C:
			s.tick()
			timer.Reset(s.period)
		}
	}
}
