package economy

import (
	"testing"
	"time"

	"github.com/hearth-app/hearth/internal/domain"
)

// ─── Reconciliation Tests ───────────────────────────────────────────────────

func TestOwedCredit(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		period  time.Duration
		rate    int64
		want    int64
	}{
		{"exact_multiple", 125 * time.Second, time.Second, 1, 125},
		{"floors_partial_tick", 2500 * time.Millisecond, time.Second, 4, 8},
		{"under_one_period", 900 * time.Millisecond, time.Second, 10, 0},
		{"zero_rate", time.Hour, time.Second, 0, 0},
		{"zero_elapsed", 0, time.Second, 5, 0},
		{"negative_elapsed", -time.Minute, time.Second, 5, 0},
		{"zero_period", time.Minute, 0, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := owedCredit(tt.elapsed, tt.period, tt.rate)
			if got != tt.want {
				t.Errorf("owedCredit(%v, %v, %d) = %d, want %d",
					tt.elapsed, tt.period, tt.rate, got, tt.want)
			}
		})
	}
}

func TestReconciliation_CreditsExactlyOnce(t *testing.T) {
	e, clock := newTestEngine(nil)
	e.Credit(50, domain.TxReward)
	e.PurchaseUpgrade("first") // rate 1

	e.EnteredBackground()
	clock.Advance(90 * time.Second)

	ev, ok := e.EnteredForeground()
	if !ok {
		t.Fatal("resume did not reconcile")
	}
	if ev.Credited != 90 {
		t.Errorf("Credited = %d, want 90", ev.Credited)
	}
	if ev.Greeting == "" {
		t.Error("event carries no greeting")
	}
	if got := e.Wallet().Balance; got != 90 {
		t.Errorf("Balance = %d, want 90", got)
	}

	// Second foreground without an intervening background: nothing credited.
	if _, ok := e.EnteredForeground(); ok {
		t.Error("second resume reconciled again")
	}
	if got := e.Wallet().Balance; got != 90 {
		t.Errorf("Balance = %d after double resume, want 90", got)
	}
}

func TestReconciliation_UsesSnapshotRate(t *testing.T) {
	e, clock := newTestEngine(nil)
	e.Credit(150, domain.TxReward)
	e.PurchaseUpgrade("first") // rate 1

	e.EnteredBackground()

	// Rate raised after the snapshot; the gap is still paid at the
	// snapshot rate.
	e.PurchaseUpgrade("second") // rate 6 in foreground terms
	clock.Advance(10 * time.Second)

	ev, _ := e.EnteredForeground()
	if ev.Credited != 10 {
		t.Errorf("Credited = %d, want 10 (snapshot rate 1)", ev.Credited)
	}
}

func TestEnteredBackground_Idempotent(t *testing.T) {
	e, clock := newTestEngine(nil)
	e.Credit(50, domain.TxReward)
	e.PurchaseUpgrade("first")

	e.EnteredBackground()
	clock.Advance(30 * time.Second)
	e.EnteredBackground() // must not move the snapshot timestamp
	clock.Advance(30 * time.Second)

	ev, _ := e.EnteredForeground()
	if ev.Credited != 60 {
		t.Errorf("Credited = %d, want 60 from the first snapshot", ev.Credited)
	}
}

func TestReconciliation_NotifiesListeners(t *testing.T) {
	e, clock := newTestEngine(nil)
	e.Credit(50, domain.TxReward)
	e.PurchaseUpgrade("first")

	events := make(chan domain.ReconciliationEvent, 1)
	e.Subscribe(func(ev domain.ReconciliationEvent) { events <- ev })

	e.EnteredBackground()
	clock.Advance(5 * time.Second)
	e.EnteredForeground()

	select {
	case ev := <-events:
		if ev.Credited != 5 {
			t.Errorf("listener saw Credited = %d, want 5", ev.Credited)
		}
		if ev.ID == "" {
			t.Error("event without id")
		}
	default:
		t.Fatal("listener not notified")
	}
}

func TestReconciliation_ZeroRateEmitsNoCreditEvent(t *testing.T) {
	e, clock := newTestEngine(nil)

	e.EnteredBackground()
	clock.Advance(time.Hour)
	ev, ok := e.EnteredForeground()
	if !ok {
		t.Fatal("resume did not consume snapshot")
	}
	if ev.Credited != 0 {
		t.Errorf("Credited = %d at rate 0, want 0", ev.Credited)
	}
}

// ─── Dirty-Exit Recovery Tests ──────────────────────────────────────────────

func TestRestore_DirtyExitReconcilesOnce(t *testing.T) {
	store := &memStore{}
	e, clock := newTestEngine(store)
	e.Credit(50, domain.TxReward)
	e.PurchaseUpgrade("first") // rate 1, balance 0
	e.EnteredBackground()

	// Simulate the process being killed while backgrounded: the last
	// persisted snapshot carries the dirty-exit marker.
	e.mu.Lock()
	store.Save(e.snapshotLocked())
	e.mu.Unlock()

	clock.Advance(200 * time.Second)

	revived, _ := newTestEngine(store)
	revived.now = clock.Now
	var got *domain.ReconciliationEvent
	revived.Subscribe(func(ev domain.ReconciliationEvent) { got = &ev })

	if err := revived.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got == nil {
		t.Fatal("no recovery event emitted")
	}
	if !got.DirtyExit {
		t.Error("recovery event not flagged as dirty exit")
	}
	if got.Credited != 200 {
		t.Errorf("recovered credit = %d, want 200", got.Credited)
	}
	if balance := revived.Wallet().Balance; balance != 200 {
		t.Errorf("Balance = %d, want 200", balance)
	}

	// The same gap must never be reconciled twice: flush the cleaned
	// snapshot, then a fresh restore credits nothing further.
	revived.Start()
	revived.Close()

	again, _ := newTestEngine(store)
	again.now = clock.Now
	if err := again.Restore(); err != nil {
		t.Fatalf("second Restore: %v", err)
	}
	if balance := again.Wallet().Balance; balance != 200 {
		t.Errorf("Balance after second restore = %d, credited twice", balance)
	}
}

func TestRestore_CleanSnapshotNoReconciliation(t *testing.T) {
	store := &memStore{}
	e, clock := newTestEngine(store)
	e.Credit(75, domain.TxReward)
	e.mu.Lock()
	store.Save(e.snapshotLocked())
	e.mu.Unlock()

	clock.Advance(time.Hour)

	revived, _ := newTestEngine(store)
	revived.now = clock.Now
	called := false
	revived.Subscribe(func(domain.ReconciliationEvent) { called = true })

	if err := revived.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if called {
		t.Error("clean snapshot triggered a recovery event")
	}
	if got := revived.Wallet().Balance; got != 75 {
		t.Errorf("Balance = %d, want 75", got)
	}
}

// Restore after Start must arm accrual when the restored rate is positive,
// without waiting for a purchase or lifecycle transition.
func TestRestore_AfterStartArmsScheduler(t *testing.T) {
	store := &memStore{}
	seed, _ := newTestEngine(store)
	seed.Credit(50, domain.TxReward)
	seed.PurchaseUpgrade("first")
	seed.mu.Lock()
	store.Save(seed.snapshotLocked())
	seed.mu.Unlock()

	revived, _ := newTestEngine(store)
	revived.Start()
	defer revived.Close()
	if err := revived.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if revived.AccrualRate() != 1 {
		t.Fatalf("restored rate = %d, want 1", revived.AccrualRate())
	}
	if !revived.scheduler.Running() {
		t.Error("scheduler idle after restore with a positive rate")
	}
}

func TestRestore_EmptyStoreIsColdFirstStart(t *testing.T) {
	e, _ := newTestEngine(&memStore{})
	if err := e.Restore(); err != nil {
		t.Fatalf("Restore on empty store: %v", err)
	}
	if w := e.Wallet(); w.Balance != 0 || w.AccrualRate != 0 {
		t.Errorf("wallet = %+v, want zeroed", w)
	}
}

// ─── Greeting Tests ─────────────────────────────────────────────────────────

func TestGreetingFor_Buckets(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		away time.Duration
		pool []string
	}{
		{"nap", 20 * time.Second, napGreetings},
		{"short", 30 * time.Minute, shortGreetings},
		{"long", 3 * time.Hour, longGreetings},
		{"overnight", 12 * time.Hour, overnightGreetings},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := greetingFor(tt.away, at)
			if !containsTag(tt.pool, got) {
				t.Errorf("greetingFor(%v) = %q, not from the %s pool", tt.away, got, tt.name)
			}
		})
	}
}

func TestGreetingFor_Deterministic(t *testing.T) {
	at := time.Unix(1_900_000_000, 0)
	a := greetingFor(2*time.Hour, at)
	b := greetingFor(2*time.Hour, at)
	if a != b {
		t.Errorf("greeting not deterministic for fixed time: %q vs %q", a, b)
	}
}
