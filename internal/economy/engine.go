package economy

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hearth-app/hearth/internal/domain"
)

// ─── Transaction Engine ─────────────────────────────────────────────────────
// Purchase/upgrade operations combining ledger debits with catalog and
// ownership credits, all-or-nothing. The engine is the single serialization
// point: scheduler ticks, lifecycle transitions, and user actions all take
// the same mutex, so a reconciliation always completes before any
// subsequent purchase sees the balance.

// Config controls engine behavior.
type Config struct {
	TickPeriod       time.Duration          // passive accrual interval (default 1s)
	AutosaveInterval time.Duration          // periodic snapshot interval (default 30s, 0 disables)
	Upgrades         []domain.UpgradeRecord // static upgrade table (default DefaultUpgrades)
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		TickPeriod:       time.Second,
		AutosaveInterval: 30 * time.Second,
		Upgrades:         DefaultUpgrades,
	}
}

// DefaultUpgrades is the built-in passive-income upgrade table.
var DefaultUpgrades = []domain.UpgradeRecord{
	{ID: "ember", Name: "Glowing Ember", Cost: 50, Increment: 1},
	{ID: "candle", Name: "Tallow Candle", Cost: 225, Increment: 5},
	{ID: "lantern", Name: "Storm Lantern", Cost: 900, Increment: 22},
	{ID: "hearthstone", Name: "Hearthstone", Cost: 3500, Increment: 95},
	{ID: "sunwheel", Name: "Sun Wheel", Cost: 14000, Increment: 420},
}

// UpgradeStatus pairs an upgrade definition with its owned count.
type UpgradeStatus struct {
	domain.UpgradeRecord
	Owned int64 `json:"owned"`
}

// Engine owns the full economy state. All mutations are serialized on mu.
type Engine struct {
	mu sync.Mutex

	cfg     Config
	ledger  *Ledger
	catalog *Registry
	store   domain.Store

	upgrades     map[string]domain.UpgradeRecord
	upgradeOrder []string
	owned        map[string]int64
	inventory    map[string]bool
	rate         int64 // derived: Σ increment × owned, never persisted authoritatively

	suspend   *domain.SuspendSnapshot
	scheduler *Scheduler
	listeners []domain.EventListener

	saveCh       chan saveRequest
	saveMu       sync.Mutex // serializes store writes against Reset
	saveGen      uint64     // guarded by mu; bumped by Reset to invalidate queued snapshots
	autosaveStop chan struct{}
	saverDone    sync.WaitGroup
	started      bool
	closed       bool

	now func() time.Time // injectable clock for tests
}

// New creates an engine with zeroed state. store may be nil (no persistence,
// used by headless tests). Call Restore before Start on a cold boot.
func New(cfg Config, store domain.Store) *Engine {
	if cfg.TickPeriod <= 0 {
		cfg.TickPeriod = time.Second
	}
	if len(cfg.Upgrades) == 0 {
		cfg.Upgrades = DefaultUpgrades
	}

	e := &Engine{
		cfg:       cfg,
		ledger:    NewLedger(),
		catalog:   NewRegistry(),
		store:     store,
		upgrades:  make(map[string]domain.UpgradeRecord, len(cfg.Upgrades)),
		owned:     make(map[string]int64),
		inventory: make(map[string]bool),
		now:       time.Now,
	}
	for _, u := range cfg.Upgrades {
		if _, ok := e.upgrades[u.ID]; ok {
			continue
		}
		e.upgrades[u.ID] = u
		e.upgradeOrder = append(e.upgradeOrder, u.ID)
	}
	e.scheduler = NewScheduler(cfg.TickPeriod, e.creditTick)
	if store != nil {
		e.saveCh = make(chan saveRequest, 1)
	}
	return e
}

// Start arms the accrual scheduler (when the derived rate is positive) and
// launches the background saver and autosave loops.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.closed {
		return
	}
	e.started = true
	if e.store != nil {
		e.saverDone.Add(1)
		go e.saver()
		if e.cfg.AutosaveInterval > 0 {
			e.autosaveStop = make(chan struct{})
			go e.autosave(e.autosaveStop)
		}
	}
	e.syncSchedulerLocked()
}

// Close stops the scheduler and saver and writes a final snapshot.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.scheduler.Stop()
	if e.autosaveStop != nil {
		close(e.autosaveStop)
		e.autosaveStop = nil
	}
	started := e.started
	var final domain.EngineSnapshot
	if e.store != nil {
		final = e.snapshotLocked()
	}
	e.mu.Unlock()

	if e.store == nil {
		return
	}
	if started {
		close(e.saveCh)
		e.saverDone.Wait()
	}
	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	if err := e.store.Save(final); err != nil {
		SnapshotFailures.Inc()
		log.Printf("economy: final snapshot failed: %v", err)
	}
}

// ─── Credits ────────────────────────────────────────────────────────────────

// Credit applies a direct credit (manual taps, mini-game rewards, daily
// bonuses). Callers are responsible for any throttling.
func (e *Engine) Credit(amount int64, tx domain.TransactionType) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ledger.Credit(amount); err != nil {
		return err
	}
	CreditsTotal.WithLabelValues(string(tx)).Add(float64(amount))
	e.updateGaugesLocked()
	e.enqueueSaveLocked()
	return nil
}

// Tap credits a manual tap.
func (e *Engine) Tap(amount int64) error {
	return e.Credit(amount, domain.TxTap)
}

// creditTick applies one foreground accrual tick. Invoked from the
// scheduler goroutine; late ticks dispatched during a state transition are
// discarded by the guard below.
func (e *Engine) creditTick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.rate <= 0 || e.suspend != nil {
		return
	}
	e.ledger.Credit(e.rate)
	CreditsTotal.WithLabelValues(string(domain.TxTick)).Add(float64(e.rate))
	e.updateGaugesLocked()
}

// ─── Purchases ──────────────────────────────────────────────────────────────

// PurchaseUpgrade debits the upgrade cost and, on success, increments the
// owned count and raises the accrual rate by the upgrade's increment.
// On debit failure nothing changes.
func (e *Engine) PurchaseUpgrade(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.upgrades[id]
	if !ok {
		return domain.ErrUnknownUpgrade
	}
	if err := e.ledger.Debit(rec.Cost); err != nil {
		PurchaseFailures.Inc()
		return err
	}
	e.owned[id]++
	e.rate += rec.Increment
	DebitsTotal.Add(float64(rec.Cost))
	PurchasesTotal.WithLabelValues("upgrade").Inc()
	e.syncSchedulerLocked()
	e.updateGaugesLocked()
	e.enqueueSaveLocked()
	return nil
}

// PurchaseItem debits the catalog entry's cost and marks it owned.
// Buying an already-owned item is a no-op success — it is never re-charged.
func (e *Engine) PurchaseItem(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.catalog.Lookup(id)
	if !ok {
		return domain.ErrUnknownItem
	}
	if e.inventory[id] {
		return nil
	}
	if err := e.ledger.Debit(entry.Cost); err != nil {
		PurchaseFailures.Inc()
		return err
	}
	e.inventory[id] = true
	DebitsTotal.Add(float64(entry.Cost))
	PurchasesTotal.WithLabelValues("item").Inc()
	e.updateGaugesLocked()
	e.enqueueSaveLocked()
	return nil
}

// GrantItem unlocks a catalog entry without charging (reward path).
// Returns whether a new unlock occurred, so reward flows can distinguish
// "newly granted" from "already had it" without double-counting.
func (e *Engine) GrantItem(id string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.catalog.Lookup(id); !ok {
		return false, domain.ErrUnknownItem
	}
	if e.inventory[id] {
		return false, nil
	}
	e.inventory[id] = true
	e.enqueueSaveLocked()
	return true, nil
}

// ─── Catalog ────────────────────────────────────────────────────────────────

// RegisterItem registers a catalog entry and persists the addition.
func (e *Engine) RegisterItem(seed string, opts *RegisterOptions) (domain.CatalogEntry, error) {
	entry, err := e.catalog.Register(seed, opts)
	if err != nil {
		return domain.CatalogEntry{}, err
	}
	e.mu.Lock()
	e.enqueueSaveLocked()
	e.mu.Unlock()
	return entry, nil
}

// LookupItem returns a catalog entry by id.
func (e *Engine) LookupItem(id string) (domain.CatalogEntry, bool) {
	return e.catalog.Lookup(id)
}

// CatalogEntries enumerates the catalog in registration order.
func (e *Engine) CatalogEntries() []domain.CatalogEntry {
	return e.catalog.Entries()
}

// ─── Read Access ────────────────────────────────────────────────────────────

// Wallet returns a consistent view of the ledger counters and derived rate.
func (e *Engine) Wallet() domain.WalletSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	balance, lifetime, profile := e.ledger.counters()
	return domain.WalletSnapshot{
		Balance:               balance,
		LifetimeEarned:        lifetime,
		ProfileLifetimeEarned: profile,
		AccrualRate:           e.rate,
	}
}

// AccrualRate returns the derived passive income per tick.
func (e *Engine) AccrualRate() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rate
}

// Upgrades returns the upgrade table with owned counts, in table order.
func (e *Engine) Upgrades() []UpgradeStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]UpgradeStatus, 0, len(e.upgradeOrder))
	for _, id := range e.upgradeOrder {
		out = append(out, UpgradeStatus{UpgradeRecord: e.upgrades[id], Owned: e.owned[id]})
	}
	return out
}

// Inventory returns a copy of the owned-item flags. Only entries present
// and true are usable elsewhere.
func (e *Engine) Inventory() map[string]bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]bool, len(e.inventory))
	for id, owned := range e.inventory {
		if owned {
			out[id] = true
		}
	}
	return out
}

// Owns reports whether a catalog entry is owned.
func (e *Engine) Owns(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inventory[id]
}

// ─── Reset ──────────────────────────────────────────────────────────────────

// Reset clears all in-memory and persisted state. The scheduler drops to
// Idle. This is the only operation allowed to decrease lifetime counters.
// Snapshots enqueued before the reset are invalidated, and an in-flight
// store write is waited out, so a stale snapshot can never land after Clear
// and resurrect the pre-reset economy on the next restart.
func (e *Engine) Reset() error {
	e.mu.Lock()
	e.ledger.reset()
	e.catalog.reset()
	e.owned = make(map[string]int64)
	e.inventory = make(map[string]bool)
	e.rate = 0
	e.suspend = nil
	e.saveGen++
	if e.saveCh != nil {
		select {
		case <-e.saveCh:
		default:
		}
	}
	e.syncSchedulerLocked()
	e.updateGaugesLocked()
	store := e.store
	e.mu.Unlock()

	if store == nil {
		return nil
	}
	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	if err := store.Clear(); err != nil {
		return fmt.Errorf("clear persisted state: %w", err)
	}
	return nil
}

// ResetProfileCounter wipes only the profile-display lifetime counter,
// leaving the economy audit counter untouched.
func (e *Engine) ResetProfileCounter() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ledger.resetProfile()
	e.enqueueSaveLocked()
}

// ─── Internal State Plumbing ────────────────────────────────────────────────

// recomputeRateLocked re-derives the accrual rate from the owned-upgrades
// ledger. The persisted rate value is never trusted.
func (e *Engine) recomputeRateLocked() {
	var rate int64
	for id, count := range e.owned {
		rec, ok := e.upgrades[id]
		if !ok || count <= 0 {
			continue
		}
		rate += rec.Increment * count
	}
	e.rate = rate
}

// syncSchedulerLocked arms or disarms the accrual interval to match the
// current rate and lifecycle state.
func (e *Engine) syncSchedulerLocked() {
	if !e.started || e.closed {
		return
	}
	if e.rate > 0 && e.suspend == nil {
		e.scheduler.Start()
	} else {
		e.scheduler.Stop()
	}
}

func (e *Engine) updateGaugesLocked() {
	BalanceGauge.Set(float64(e.ledger.Balance()))
	AccrualRateGauge.Set(float64(e.rate))
}

// snapshotLocked assembles the full persisted state. The dirty-exit marker
// is exactly the presence of an unconsumed suspend snapshot.
func (e *Engine) snapshotLocked() domain.EngineSnapshot {
	balance, lifetime, profile := e.ledger.counters()
	snap := domain.EngineSnapshot{
		Balance:               balance,
		LifetimeEarned:        lifetime,
		ProfileLifetimeEarned: profile,
		AccrualRate:           e.rate,
		OwnedUpgrades:         make(map[string]int64, len(e.owned)),
		Inventory:             make(map[string]bool, len(e.inventory)),
		Catalog:               e.catalog.Entries(),
		DirtyExit:             e.suspend != nil,
		SavedAt:               e.now(),
	}
	for id, count := range e.owned {
		snap.OwnedUpgrades[id] = count
	}
	for id, owned := range e.inventory {
		snap.Inventory[id] = owned
	}
	if e.suspend != nil {
		s := *e.suspend
		snap.Suspend = &s
	}
	return snap
}

// ─── Background Saver ───────────────────────────────────────────────────────
// Persistence is fire-and-forget: mutations enqueue the latest snapshot and
// never wait on disk. The saver retries each failed write once.

// saveRequest pairs a snapshot with the generation it was captured under.
type saveRequest struct {
	snap domain.EngineSnapshot
	gen  uint64
}

// enqueueSaveLocked queues the current snapshot, replacing any stale
// queued snapshot (latest wins).
func (e *Engine) enqueueSaveLocked() {
	if e.store == nil || e.closed {
		return
	}
	req := saveRequest{snap: e.snapshotLocked(), gen: e.saveGen}
	for {
		select {
		case e.saveCh <- req:
			return
		default:
		}
		select {
		case <-e.saveCh:
		default:
		}
	}
}

func (e *Engine) saver() {
	defer e.saverDone.Done()
	for req := range e.saveCh {
		err := e.writeSnapshot(req)
		if err == nil {
			continue
		}
		SnapshotFailures.Inc()
		log.Printf("economy: snapshot write failed, retrying once: %v", err)
		time.Sleep(250 * time.Millisecond)
		if err := e.writeSnapshot(req); err != nil {
			SnapshotFailures.Inc()
			log.Printf("economy: snapshot retry failed: %v", err)
		}
	}
}

// writeSnapshot persists one queued snapshot unless a reset has invalidated
// it since capture. Reset acquires the same write lock before clearing the
// store, so it waits out any write already in progress.
func (e *Engine) writeSnapshot(req saveRequest) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	e.mu.Lock()
	stale := req.gen != e.saveGen
	e.mu.Unlock()
	if stale {
		return nil
	}
	if err := e.store.Save(req.snap); err != nil {
		return err
	}
	SnapshotsTotal.Inc()
	return nil
}

func (e *Engine) autosave(stop chan struct{}) {
	ticker := time.NewTicker(e.cfg.AutosaveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.mu.Lock()
			e.enqueueSaveLocked()
			e.mu.Unlock()
		}
	}
}
