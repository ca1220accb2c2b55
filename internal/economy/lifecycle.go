package economy

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hearth-app/hearth/internal/domain"
)

// ─── Background Reconciliation Protocol ─────────────────────────────────────
// The host notifies the engine of exactly two lifecycle transitions. On
// entering background a suspend snapshot is captured and a dirty-exit
// marker persisted; on returning to foreground the elapsed gap is credited
// exactly once and the marker cleared. A process killed while backgrounded
// leaves the marker behind, and the next cold start reconciles the gap from
// persisted state instead.

// Subscribe registers a listener for reconciliation events.
// Listeners are invoked outside the engine lock, after the credit applied.
func (e *Engine) Subscribe(fn domain.EventListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// EnteredBackground captures a suspend snapshot, stops foreground accrual,
// and persists the dirty-exit marker. Repeated calls without an
// intervening foreground are no-ops.
func (e *Engine) EnteredBackground() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.suspend != nil || e.closed {
		return
	}
	balance, lifetime, profile := e.ledger.counters()
	e.suspend = &domain.SuspendSnapshot{
		Timestamp:             e.now(),
		Balance:               balance,
		LifetimeEarned:        lifetime,
		ProfileLifetimeEarned: profile,
		AccrualRate:           e.rate,
	}
	e.scheduler.Stop()
	e.enqueueSaveLocked()
}

// EnteredForeground consumes the suspend snapshot: it credits
// floor(elapsed/tickPeriod) × snapshot rate exactly once, clears the
// dirty-exit marker, re-arms the scheduler, and emits a reconciliation
// event. A second call without an intervening background credits nothing
// and reports false.
func (e *Engine) EnteredForeground() (domain.ReconciliationEvent, bool) {
	e.mu.Lock()
	snap := e.suspend
	if snap == nil || e.closed {
		e.mu.Unlock()
		return domain.ReconciliationEvent{}, false
	}
	e.suspend = nil

	now := e.now()
	elapsed := now.Sub(snap.Timestamp)
	owed := owedCredit(elapsed, e.cfg.TickPeriod, snap.AccrualRate)
	if owed > 0 {
		e.ledger.Credit(owed)
		CreditsTotal.WithLabelValues(string(domain.TxReconcile)).Add(float64(owed))
	}
	ReconciliationsTotal.Inc()
	e.syncSchedulerLocked()
	e.updateGaugesLocked()
	e.enqueueSaveLocked()

	ev := domain.ReconciliationEvent{
		ID:       uuid.NewString(),
		Credited: owed,
		Away:     elapsed,
		Greeting: greetingFor(elapsed, now),
		At:       now,
	}
	listeners := append([]domain.EventListener(nil), e.listeners...)
	e.mu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
	return ev, true
}

// Restore loads persisted state at cold start. The accrual rate is
// recomputed from the owned-upgrades ledger rather than trusted from disk.
// A leftover dirty-exit marker means the previous session was killed while
// backgrounded: the gap since the suspend snapshot (or, failing that, the
// last persisted write) is reconciled once, then the marker is cleared.
func (e *Engine) Restore() error {
	if e.store == nil {
		return nil
	}
	snap, err := e.store.Load()
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if snap == nil {
		return nil
	}

	e.mu.Lock()
	e.ledger.restore(snap.Balance, snap.LifetimeEarned, snap.ProfileLifetimeEarned)
	e.owned = make(map[string]int64, len(snap.OwnedUpgrades))
	for id, count := range snap.OwnedUpgrades {
		if count > 0 {
			e.owned[id] = count
		}
	}
	e.inventory = make(map[string]bool, len(snap.Inventory))
	for id, owned := range snap.Inventory {
		if owned {
			e.inventory[id] = true
		}
	}
	e.catalog.restore(snap.Catalog)
	e.recomputeRateLocked()

	var ev *domain.ReconciliationEvent
	if snap.DirtyExit {
		since := snap.SavedAt
		rate := e.rate
		if snap.Suspend != nil {
			since = snap.Suspend.Timestamp
			rate = snap.Suspend.AccrualRate
		}
		now := e.now()
		var owed int64
		if !since.IsZero() {
			owed = owedCredit(now.Sub(since), e.cfg.TickPeriod, rate)
		}
		if owed > 0 {
			e.ledger.Credit(owed)
			CreditsTotal.WithLabelValues(string(domain.TxReconcile)).Add(float64(owed))
		}
		ReconciliationsTotal.Inc()
		ev = &domain.ReconciliationEvent{
			ID:        uuid.NewString(),
			Credited:  owed,
			Away:      now.Sub(since),
			Greeting:  greetingFor(now.Sub(since), now),
			DirtyExit: true,
			At:        now,
		}
	}
	e.suspend = nil
	e.syncSchedulerLocked()
	e.updateGaugesLocked()
	e.enqueueSaveLocked() // persists the cleared marker
	listeners := append([]domain.EventListener(nil), e.listeners...)
	e.mu.Unlock()

	if ev != nil {
		for _, fn := range listeners {
			fn(*ev)
		}
	}
	return nil
}

// owedCredit computes the reconciliation credit for an elapsed gap.
func owedCredit(elapsed, period time.Duration, rate int64) int64 {
	if elapsed <= 0 || period <= 0 || rate <= 0 {
		return 0
	}
	return int64(elapsed/period) * rate
}

// ─── Greetings ──────────────────────────────────────────────────────────────
// Human-facing welcome-back lines, bucketed by how long the host was away.
// Selection is varied by the resume timestamp so repeat resumes don't show
// the same line every time.

var (
	napGreetings = []string{
		"Back already? The fire barely dimmed.",
		"That was quick — the kettle is still warm.",
	}
	shortGreetings = []string{
		"Welcome back. The hearth kept busy.",
		"Good to see you again so soon.",
		"The embers saved up a little something.",
	}
	longGreetings = []string{
		"You were missed — the hearth kept the lights on.",
		"A fine haul piled up while you were out.",
		"The lanterns worked the whole time you were away.",
	}
	overnightGreetings = []string{
		"Good morning! The hearth burned all night for you.",
		"Rise and shine — overnight earnings are in.",
		"A long rest, and a long ledger of credits.",
	}
)

func greetingFor(away time.Duration, at time.Time) string {
	var pool []string
	switch {
	case away < time.Minute:
		pool = napGreetings
	case away < time.Hour:
		pool = shortGreetings
	case away < 8*time.Hour:
		pool = longGreetings
	default:
		pool = overnightGreetings
	}
	idx := int(at.Unix()) % len(pool)
	if idx < 0 {
		idx += len(pool)
	}
	return pool[idx]
}
