// Package observability defines the Prometheus metrics for the rewards
// engine. Metrics are registered with promauto at package load and exposed
// on /metrics when enabled in config.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Ledger Metrics ─────────────────────────────────────────────────────────

// CoinsEarned tracks total coins credited through the ledger.
var CoinsEarned = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "coinquest",
	Subsystem: "ledger",
	Name:      "coins_earned_total",
	Help:      "Total coins credited via earn transactions.",
})

// Transactions tracks ledger applies by transaction type.
var Transactions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coinquest",
	Subsystem: "ledger",
	Name:      "transactions_total",
	Help:      "Total ledger transactions by type.",
}, []string{"type"})

// Balance tracks the current coin balance.
var Balance = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "coinquest",
	Subsystem: "ledger",
	Name:      "balance_coins",
	Help:      "Current coin balance.",
})

// ─── Task Metrics ───────────────────────────────────────────────────────────

// TaskCompletions tracks completed tasks by task type.
var TaskCompletions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coinquest",
	Subsystem: "tasks",
	Name:      "completions_total",
	Help:      "Total task completions by task type.",
}, []string{"type"})

// ─── Ad Gate Metrics ────────────────────────────────────────────────────────

// AdActivations tracks started ad views.
var AdActivations = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "coinquest",
	Subsystem: "adgate",
	Name:      "activations_total",
	Help:      "Total ad view activations.",
})

// AdCompletions tracks ad views that ran to zero and granted.
var AdCompletions = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "coinquest",
	Subsystem: "adgate",
	Name:      "completions_total",
	Help:      "Total ad views completed with a reward grant.",
})

// AdCancellations tracks ad views torn down before zero.
var AdCancellations = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "coinquest",
	Subsystem: "adgate",
	Name:      "cancellations_total",
	Help:      "Total ad views cancelled before the countdown finished.",
})

// ─── Arcade Metrics ─────────────────────────────────────────────────────────

// WheelSpins tracks lucky wheel outcomes by prize value.
var WheelSpins = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coinquest",
	Subsystem: "arcade",
	Name:      "wheel_spins_total",
	Help:      "Total lucky wheel spins by prize.",
}, []string{"prize"})

// TriviaAnswers tracks trivia answers by result.
var TriviaAnswers = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coinquest",
	Subsystem: "arcade",
	Name:      "trivia_answers_total",
	Help:      "Total trivia answers by result.",
}, []string{"result"})

// ─── Provider Metrics ───────────────────────────────────────────────────────

// ProviderRequests tracks AI provider calls by operation.
var ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coinquest",
	Subsystem: "provider",
	Name:      "requests_total",
	Help:      "Total AI content provider requests by operation.",
}, []string{"op"})

// ProviderFallbacks tracks AI provider calls resolved to canned content.
var ProviderFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coinquest",
	Subsystem: "provider",
	Name:      "fallbacks_total",
	Help:      "Total AI provider requests that resolved to the static fallback.",
}, []string{"op"})
