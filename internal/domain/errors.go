package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.
// All are recoverable and returned as values; none is ever fatal.

var (
	// Ledger errors
	ErrInvalidAmount       = errors.New("amount must be non-negative")
	ErrInsufficientBalance = errors.New("insufficient balance")

	// Catalog errors
	ErrInvalidIdentity = errors.New("no identity derivable from seed")
	ErrUnknownItem     = errors.New("item not found in catalog")
	ErrUnknownUpgrade  = errors.New("upgrade not found")

	// Persistence errors (best-effort; logged, never escalated)
	ErrPersistenceWrite = errors.New("persistence write failed")
)
