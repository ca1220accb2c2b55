package economy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Economy Metrics ────────────────────────────────────────────────────────

// CreditsTotal tracks credited amounts by source.
var CreditsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "hearth",
	Subsystem: "economy",
	Name:      "credits_total",
	Help:      "Total credits applied to the balance, by source.",
}, []string{"source"})

// DebitsTotal tracks total debited amounts.
var DebitsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "hearth",
	Subsystem: "economy",
	Name:      "debits_total",
	Help:      "Total credits spent via successful debits.",
})

// PurchasesTotal tracks successful purchases by kind.
var PurchasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "hearth",
	Subsystem: "economy",
	Name:      "purchases_total",
	Help:      "Total successful purchases, by kind.",
}, []string{"kind"})

// PurchaseFailures tracks rejected purchases (insufficient balance).
var PurchaseFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "hearth",
	Subsystem: "economy",
	Name:      "purchase_failures_total",
	Help:      "Total purchases rejected for insufficient balance.",
})

// BalanceGauge tracks the current spendable balance.
var BalanceGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "hearth",
	Subsystem: "economy",
	Name:      "balance",
	Help:      "Current spendable balance.",
})

// AccrualRateGauge tracks the derived passive income rate.
var AccrualRateGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "hearth",
	Subsystem: "economy",
	Name:      "accrual_rate",
	Help:      "Derived passive income per tick.",
})

// ReconciliationsTotal tracks background reconciliation passes.
var ReconciliationsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "hearth",
	Subsystem: "economy",
	Name:      "reconciliations_total",
	Help:      "Total background-to-foreground reconciliation passes.",
})

// SnapshotFailures tracks failed persistence writes (best-effort).
var SnapshotFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "hearth",
	Subsystem: "persistence",
	Name:      "snapshot_failures_total",
	Help:      "Total failed snapshot writes, including retries.",
})

// SnapshotsTotal tracks successful snapshot writes.
var SnapshotsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "hearth",
	Subsystem: "persistence",
	Name:      "snapshots_total",
	Help:      "Total successful snapshot writes.",
})
