// Package metrics defines and registers all custom Prometheus metrics for the
// marketplace API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation (promauto) and exposed by the router on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Identity metrics ──────────────────────────────────────────────────────────

// UsersRegisteredTotal counts successful registrations.
// Label:
//   - role: "owner" or "traveler"
var UsersRegisteredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of users registered, by role.",
	},
	[]string{"role"},
)

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "locked" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Listing metrics ───────────────────────────────────────────────────────────

// PlacesCreatedTotal counts newly listed places.
var PlacesCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "places_created_total",
		Help:      "Total number of places created.",
	},
)

// ReviewsCreatedTotal counts newly created reviews.
// Label:
//   - rating: "1" to "5"
var ReviewsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reviews_created_total",
		Help:      "Total number of reviews created, by rating.",
	},
	[]string{"rating"},
)

// ── Authorization metrics ─────────────────────────────────────────────────────

// PolicyDenialsTotal counts access policy denials.
// Label:
//   - operation: the denied operation (e.g. "place:update")
var PolicyDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "policy_denials_total",
		Help:      "Total number of operations denied by the access policy.",
	},
	[]string{"operation"},
)

// ── Cascade metrics ───────────────────────────────────────────────────────────

// CascadeDeletesTotal counts cascading deletes.
// Labels:
//   - root: the entity whose deletion started the cascade ("user", "place", "amenity")
//   - result: "ok" or "rolled_back"
var CascadeDeletesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cascade_deletes_total",
		Help:      "Total number of cascading deletes, by root entity and result.",
	},
	[]string{"root", "result"},
)

// CascadeDuration measures how long a cascading delete takes end-to-end.
var CascadeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cascade_duration_seconds",
		Help:      "Duration of cascading deletes, by root entity.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"root"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of audit events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditErrorsTotal counts audit events that could not be persisted or were dropped.
// Label:
//   - reason: "insert_failed" or "queue_full"
var AuditErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_errors_total",
		Help:      "Total number of audit events that failed to persist or were dropped.",
	},
	[]string{"reason"},
)
