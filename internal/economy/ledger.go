package economy

import (
	"sync"

	"github.com/hearth-app/hearth/internal/domain"
)

// ─── Ledger ─────────────────────────────────────────────────────────────────
// The spendable balance and the two monotonic lifetime counters.
//
// Invariants:
//   - Balance never goes below zero; Debit is the sole spending primitive.
//   - LifetimeEarned and ProfileLifetimeEarned never decrease except via an
//     explicit reset. ProfileLifetimeEarned tracks the same credits
//     independently so the profile display can be wiped without disturbing
//     the economy's own audit trail.

// Ledger owns the balance counters. Safe for concurrent use.
type Ledger struct {
	mu                    sync.Mutex
	balance               int64
	lifetimeEarned        int64
	profileLifetimeEarned int64
}

// NewLedger creates a zeroed ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Credit adds amount to the balance and both lifetime counters atomically —
// all three or none. Negative amounts are rejected with ErrInvalidAmount
// and leave state untouched.
func (l *Ledger) Credit(amount int64) error {
	if amount < 0 {
		return domain.ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balance += amount
	l.lifetimeEarned += amount
	l.profileLifetimeEarned += amount
	return nil
}

// Debit subtracts amount from the balance if covered. On insufficient
// balance it returns ErrInsufficientBalance and leaves state untouched.
// Lifetime counters are never decremented by spending.
func (l *Ledger) Debit(amount int64) error {
	if amount < 0 {
		return domain.ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balance < amount {
		return domain.ErrInsufficientBalance
	}
	l.balance -= amount
	return nil
}

// Balance returns the current spendable balance.
func (l *Ledger) Balance() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// LifetimeEarned returns the cumulative total of all credits ever applied.
func (l *Ledger) LifetimeEarned() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lifetimeEarned
}

// ProfileLifetimeEarned returns the profile-display lifetime counter.
func (l *Ledger) ProfileLifetimeEarned() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.profileLifetimeEarned
}

// counters returns all three counters in one consistent read.
func (l *Ledger) counters() (balance, lifetime, profile int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance, l.lifetimeEarned, l.profileLifetimeEarned
}

// restore overwrites the counters from persisted state.
// Negative persisted values are clamped to zero.
func (l *Ledger) restore(balance, lifetime, profile int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balance = clampNonNegative(balance)
	l.lifetimeEarned = clampNonNegative(lifetime)
	l.profileLifetimeEarned = clampNonNegative(profile)
}

// resetProfile wipes only the profile-display counter.
func (l *Ledger) resetProfile() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.profileLifetimeEarned = 0
}

// reset zeroes all counters (full engine reset only).
func (l *Ledger) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balance = 0
	l.lifetimeEarned = 0
	l.profileLifetimeEarned = 0
}

func clampNonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
