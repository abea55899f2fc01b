// Package metrics defines the custom Prometheus metrics of the portal API.
// Metrics register with the default registry on package initialisation and are
// exposed by the /metrics handler next to the per-route HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Auth ──────────────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "inactive" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Service requests and projects ─────────────────────────────────────────────

// ServiceRequestsReviewedTotal counts review decisions that were committed.
// Label:
//   - decision: "approved" or "rejected"
var ServiceRequestsReviewedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "service_requests_reviewed_total",
		Help:      "Total number of service requests approved or rejected.",
	},
	[]string{"decision"},
)

// ReviewConflictsTotal counts reviews refused because the request had already been reviewed.
var ReviewConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "service_request_review_conflicts_total",
		Help:      "Total number of review attempts on requests that were no longer pending.",
	},
)

// ProjectsCreatedTotal counts newly created projects.
// Label:
//   - origin: "admin" (created directly) or "request" (spawned by an approval)
var ProjectsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "projects_created_total",
		Help:      "Total number of projects created, by origin.",
	},
	[]string{"origin"},
)

// MessagesSentTotal counts direct messages.
var MessagesSentTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_sent_total",
		Help:      "Total number of direct messages sent.",
	},
)

// ── Notifications ─────────────────────────────────────────────────────────────

// NotificationsDispatchedTotal counts notifications persisted by the dispatcher.
// Label:
//   - type: message, project, request or system
var NotificationsDispatchedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dispatched_total",
		Help:      "Total number of notifications delivered, by type.",
	},
	[]string{"type"},
)

// NotificationsErrorsTotal counts notifications that were dropped.
// Label:
//   - reason: "deliver_failed", "queue_full" or "stopped"
var NotificationsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_errors_total",
		Help:      "Total number of notifications that could not be delivered.",
	},
	[]string{"reason"},
)

// NotificationsQueueDepth tracks pending notifications per worker channel.
// Label:
//   - worker_id: numeric worker index
var NotificationsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notifications_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationDeliveryDuration measures a single delivery from dequeue to persistence.
var NotificationDeliveryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_delivery_duration_seconds",
		Help:      "Duration of notification delivery from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)
