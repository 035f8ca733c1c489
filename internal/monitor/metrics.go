package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operational metrics for the monitoring loop. Scraped via the optional
// promhttp listener started from main.

// CyclesTotal counts completed monitoring cycles.
var CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "sentinel",
	Subsystem: "monitor",
	Name:      "cycles_total",
	Help:      "Number of completed monitoring cycles",
})

// CycleDuration tracks how long a full cycle takes across all wallets.
var CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "sentinel",
	Subsystem: "monitor",
	Name:      "cycle_duration_seconds",
	Help:      "Duration of a full monitoring cycle in seconds",
	Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30},
})

// AssessmentsTotal counts position assessments by resulting risk level.
var AssessmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "sentinel",
	Subsystem: "risk",
	Name:      "assessments_total",
	Help:      "Number of position risk assessments by level",
}, []string{"level"})

// ProtectionAttemptsTotal counts protection attempts by outcome.
var ProtectionAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "sentinel",
	Subsystem: "protection",
	Name:      "attempts_total",
	Help:      "Number of protection attempts by outcome (success, failure, dry_run)",
}, []string{"outcome"})

// WalletRiskScore exposes the latest overall risk score per wallet.
var WalletRiskScore = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "sentinel",
	Subsystem: "risk",
	Name:      "wallet_score",
	Help:      "Latest overall wallet risk score (0-100)",
}, []string{"wallet"})
