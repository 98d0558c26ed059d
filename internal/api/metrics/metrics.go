// Package metrics defines and registers the custom Prometheus metrics of the
// consultant portal. Metrics are registered on the default registry at init
// through promauto and exposed by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login submissions.
// Label:
//   - outcome: "success", "rejected", "invalid_role", "unavailable" or "invalid_form"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login submissions, by outcome.",
	},
	[]string{"outcome"},
)

// RegistrationsTotal counts registration submissions.
// Label:
//   - outcome: "success", "rejected", "mismatch", "unavailable" or "invalid_form"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration submissions, by outcome.",
	},
	[]string{"outcome"},
)

// GuardDecisionsTotal counts route guard outcomes.
// Labels:
//   - role: the role the route requires
//   - state: "authorized", "unauthenticated" or "wrong-role"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of guarded navigations, by required role and decision.",
	},
	[]string{"role", "state"},
)

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestDuration measures calls proxied to the backend.
// Labels:
//   - route: the portal route that made the call
//   - status: backend HTTP status, or "error" when the call never completed
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of backend calls made on behalf of a client.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"route", "status"},
)
