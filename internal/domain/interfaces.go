package domain

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; the economy layer depends on them.

// Store abstracts the opaque key-value persistence gateway.
// Save is best-effort: failures are logged and retried opportunistically,
// and must never block in-memory ledger mutations.
type Store interface {
	// Save persists the full engine snapshot atomically.
	Save(snap EngineSnapshot) error

	// Load restores the last persisted snapshot.
	// Returns nil when no prior state exists (cold first start).
	Load() (*EngineSnapshot, error)

	// Clear deletes all persisted state (full engine reset).
	Clear() error
}

// EventListener receives reconciliation events after a background gap
// has been credited. Listeners are invoked outside the engine lock.
type EventListener func(ev ReconciliationEvent)
