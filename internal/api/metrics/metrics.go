// Package metrics defines all custom Prometheus metrics of the rental
// platform API. It is the single source of truth for metric names, labels,
// and help strings. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rentals"

// ── Access metrics ────────────────────────────────────────────────────────────

// AccessDecisionsTotal counts route guard outcomes.
// Labels:
//   - screen: the guarded screen (e.g. "tenant_dashboard")
//   - outcome: "allowed", "denied", "unauthenticated" or "error"
var AccessDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_decisions_total",
		Help:      "Total number of route guard decisions, by screen and outcome.",
	},
	[]string{"screen", "outcome"},
)

// RoleResolutionsTotal counts resolved roles by the rule that produced them.
// Labels:
//   - role: the resolved role
//   - source: "override_grant", "capability", "staff_record", "tenant_record",
//     "fallback_grant", "default", "anonymous" or "panic"
var RoleResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_resolutions_total",
		Help:      "Total number of role resolutions, by role and source.",
	},
	[]string{"role", "source"},
)

// CapabilityConsumptionsTotal counts admin-mode capability presentations.
// Label:
//   - result: "consumed", "replayed", "invalid" or "error"
var CapabilityConsumptionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "capability_consumptions_total",
		Help:      "Total number of admin-mode capability checks, by result.",
	},
	[]string{"result"},
)

// ── Payment metrics ───────────────────────────────────────────────────────────

// PaymentAttemptsTotal counts simulated payment runs.
// Labels:
//   - method: the payment method (e.g. "mtn_momo")
//   - result: "success", "error" or "canceled"
var PaymentAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_attempts_total",
		Help:      "Total number of simulated payment attempts, by method and result.",
	},
	[]string{"method", "result"},
)

// PaymentDuration measures how long a simulated payment script runs.
var PaymentDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "payment_duration_seconds",
		Help:      "Duration of simulated payment attempts.",
		Buckets:   []float64{.01, .1, .5, 1, 2.5, 5, 10, 20},
	},
	[]string{"method"},
)

// PaymentQueueDepth tracks jobs waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var PaymentQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "payment_queue_depth",
		Help:      "Current number of payment jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// PaymentsRejectedTotal counts jobs refused because a worker channel was full.
var PaymentsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_rejected_total",
		Help:      "Total number of payment jobs refused by a full dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Booking metrics ───────────────────────────────────────────────────────────

// BookingsPersistedTotal counts booking writes.
// Label:
//   - path: "rpc", "insert" or "failed"
var BookingsPersistedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_persisted_total",
		Help:      "Total number of booking writes, by backend path.",
	},
	[]string{"path"},
)
