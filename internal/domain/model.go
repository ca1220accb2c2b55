// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ─── Catalog Types ──────────────────────────────────────────────────────────

// CatalogEntry is a purchasable item discovered at runtime.
// ID is derived deterministically from the normalized Seed, so registering
// the same logical item twice always resolves to the same entry.
type CatalogEntry struct {
	ID       string   `json:"id"`
	Seed     string   `json:"seed"`
	Cost     int64    `json:"cost"`
	Tags     []string `json:"tags,omitempty"`
	ImageRef string   `json:"image_ref,omitempty"`
}

// UpgradeRecord is a static passive-income upgrade definition.
// Increment is the amount added to the accrual rate per owned unit.
type UpgradeRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Cost      int64  `json:"cost"`
	Increment int64  `json:"increment"`
}

// ─── Wallet Types ───────────────────────────────────────────────────────────

// WalletSnapshot is a read-only view of the ledger counters.
type WalletSnapshot struct {
	Balance               int64 `json:"balance"`
	LifetimeEarned        int64 `json:"lifetime_earned"`
	ProfileLifetimeEarned int64 `json:"profile_lifetime_earned"`
	AccrualRate           int64 `json:"accrual_rate"`
}

// TransactionType is the business reason for a ledger mutation.
type TransactionType string

const (
	TxTick      TransactionType = "TICK"
	TxTap       TransactionType = "TAP"
	TxReward    TransactionType = "REWARD"
	TxReconcile TransactionType = "RECONCILE"
	TxPurchase  TransactionType = "PURCHASE"
)

// ─── Lifecycle Types ────────────────────────────────────────────────────────

// SuspendSnapshot captures ledger state at the moment the host entered
// background. It is consumed exactly once by the next foreground resume.
type SuspendSnapshot struct {
	Timestamp             time.Time `json:"timestamp"`
	Balance               int64     `json:"balance"`
	LifetimeEarned        int64     `json:"lifetime_earned"`
	ProfileLifetimeEarned int64     `json:"profile_lifetime_earned"`
	AccrualRate           int64     `json:"accrual_rate"`
}

// ReconciliationEvent is emitted after a background gap has been credited.
type ReconciliationEvent struct {
	ID        string        `json:"id"`
	Credited  int64         `json:"credited"`
	Away      time.Duration `json:"away"`
	Greeting  string        `json:"greeting"`
	DirtyExit bool          `json:"dirty_exit"`
	At        time.Time     `json:"at"`
}

// ─── Persistence Types ──────────────────────────────────────────────────────

// EngineSnapshot is the full persisted engine state.
// Every field is optional on load; absent values default to zero/empty.
// AccrualRate is stored for diagnostics only — on restore it is recomputed
// from OwnedUpgrades and never trusted from disk.
type EngineSnapshot struct {
	Balance               int64            `json:"balance"`
	LifetimeEarned        int64            `json:"lifetime_earned"`
	ProfileLifetimeEarned int64            `json:"profile_lifetime_earned"`
	AccrualRate           int64            `json:"accrual_rate"`
	OwnedUpgrades         map[string]int64 `json:"owned_upgrades,omitempty"`
	Inventory             map[string]bool  `json:"inventory,omitempty"`
	Catalog               []CatalogEntry   `json:"catalog,omitempty"`
	DirtyExit             bool             `json:"dirty_exit"`
	Suspend               *SuspendSnapshot `json:"suspend,omitempty"`
	SavedAt               time.Time        `json:"saved_at"`
}

// ─── Utilities ──────────────────────────────────────────────────────────────

// SHA256Hex computes SHA-256 hash and returns hex string.
func SHA256Hex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// HumanCredits formats a credit amount into a short human-readable string.
func HumanCredits(c int64) string {
	const (
		K = 1_000
		M = K * 1_000
		B = M * 1_000
	)
	switch {
	case c >= B:
		return fmt.Sprintf("%.1fB", float64(c)/float64(B))
	case c >= M:
		return fmt.Sprintf("%.1fM", float64(c)/float64(M))
	case c >= 10*K:
		return fmt.Sprintf("%.1fK", float64(c)/float64(K))
	default:
		return fmt.Sprintf("%d", c)
	}
}
