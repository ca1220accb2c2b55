// Package economy implements the idle-accrual resource engine: the cost
// model, catalog registry, ledger, transaction engine, accrual scheduler,
// and background reconciliation protocol.
//
// All state mutation funnels through a single mutex-guarded Engine, so no
// two credit/debit operations ever interleave.
package economy

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// ─── Cost Model ─────────────────────────────────────────────────────────────

// Cost distribution parameters. Costs cluster around the midpoint with a
// long tail for rare seeds.
const (
	CostMin = 10
	CostMax = 5000

	costMid    = 250.0
	costSpread = 60.0
)

// Cost maps an identity seed to a deterministic currency cost.
// The same seed always yields the same cost, across processes and restarts.
// Degenerate (empty) seeds fall back to the distribution midpoint.
func Cost(seed string) int64 {
	u := seedUnit(NormalizeSeed(seed))

	// Logistic quantile: monotonic in u, clusters around costMid, long
	// tails toward both clamps.
	const eps = 1e-9
	u = math.Min(math.Max(u, eps), 1-eps)
	c := costMid + costSpread*math.Log(u/(1-u))

	if c < CostMin {
		c = CostMin
	}
	if c > CostMax {
		c = CostMax
	}
	return int64(math.Round(c))
}

// seedUnit hashes a normalized seed into [0,1).
// Empty seeds map to exactly 0.5 (the distribution midpoint).
func seedUnit(normalized string) float64 {
	if normalized == "" {
		return 0.5
	}
	sum := sha256.Sum256([]byte(normalized))
	v := binary.BigEndian.Uint64(sum[:8])
	return float64(v) / (1 << 64)
}
