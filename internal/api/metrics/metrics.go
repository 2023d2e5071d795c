// Package metrics defines and registers all custom Prometheus metrics for the
// marketplace gateway. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry on package init via
// promauto and are served by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Cart metrics ──────────────────────────────────────────────────────────────

// CartOperationsTotal counts cart operations by outcome.
// Labels:
//   - operation: "fetch", "add", "update", "remove", "clear", "checkout"
//   - result: "ok" or the error kind (e.g. "validation_error", "conflict")
var CartOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_operations_total",
		Help:      "Total number of cart operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// CheckoutTotal counts placed orders.
var CheckoutTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkouts_total",
		Help:      "Total number of orders confirmed by the market API.",
	},
)

// ── Access guard metrics ──────────────────────────────────────────────────────

// GuardDecisionsTotal counts navigation decisions.
// Labels:
//   - required_role: "farmer", "buyer" or "any"
//   - outcome: "allow", "unauthenticated", "wrong_role"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of access guard decisions, by required role and outcome.",
	},
	[]string{"required_role", "outcome"},
)

// SessionsInvalidatedTotal counts sessions ended because the market API
// rejected their token.
var SessionsInvalidatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_invalidated_total",
		Help:      "Total number of sessions invalidated after an upstream 401.",
	},
)

// ── Market API metrics ────────────────────────────────────────────────────────

// UpstreamRequestDuration measures market API round trips.
// Labels:
//   - endpoint: route template (e.g. "/cart/update/{id}")
//   - result: "ok" or the error kind
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of market API requests.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	},
	[]string{"endpoint", "result"},
)

// UpstreamRetriesTotal counts delayed retries after a 429.
var UpstreamRetriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_retries_total",
		Help:      "Total number of market API requests retried after a rate limit.",
	},
	[]string{"endpoint"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of cart events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of cart events pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)

// AuditEventsTotal counts audit writes.
// Label:
//   - result: "stored", "failed" or "dropped" (queue full)
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of cart audit events, by result.",
	},
	[]string{"result"},
)
