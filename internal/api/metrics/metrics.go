// Package metrics defines and registers all custom Prometheus metrics for the
// delivery marketplace API. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Package lifecycle metrics ─────────────────────────────────────────────────

// PackagesCreatedTotal counts newly published packages.
// Label:
//   - state: initial state of the package ("Publicado" or "Proceso")
var PackagesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "packages_created_total",
		Help:      "Total number of packages created, by initial state.",
	},
	[]string{"state"},
)

// TransitionsAppliedTotal counts state transitions that were committed.
// Labels:
//   - from: state the package left
//   - to: state the package entered
var TransitionsAppliedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transitions_applied_total",
		Help:      "Total number of package state transitions applied.",
	},
	[]string{"from", "to"},
)

// TransitionsRejectedTotal counts transition attempts that were refused.
// Label:
//   - reason: short description of the refusal (e.g. "invalid_transition", "forbidden")
var TransitionsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transitions_rejected_total",
		Help:      "Total number of package state transitions rejected.",
	},
	[]string{"reason"},
)

// ── Matching metrics ──────────────────────────────────────────────────────────

// MatchQueriesTotal counts matching lookups run by travelers.
var MatchQueriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "match_queries_total",
		Help:      "Total number of traveler match queries executed.",
	},
)

// ── Audit trail metrics ───────────────────────────────────────────────────────

// AuditQueueDepth tracks the current number of transition events waiting in
// each audit worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of transition events pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)

// AuditDroppedTotal counts transition events dropped because the audit queue
// was full. The transition itself is never rolled back.
var AuditDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_dropped_total",
		Help:      "Total number of transition events dropped due to a full audit queue.",
	},
)
