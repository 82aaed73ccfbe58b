// Package metrics exposes relation negotiation counters on the controller-runtime registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
)

const namespace = "oauth_relation"

var (
	// NotificationsTotal counts relation notifications handled by a negotiator.
	NotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Relation notifications handled, by relation, side and notification.",
	}, []string{"relation", "side", "notification"})

	// RejectedNotificationsTotal counts notifications that failed, by reason.
	RejectedNotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rejected_notifications_total",
		Help:      "Relation notifications that failed, by relation, side and reason.",
	}, []string{"relation", "side", "reason"})

	// EventsTotal counts events raised to the owning application.
	EventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_total",
		Help:      "Negotiation events raised to the application, by kind.",
	}, []string{"kind"})
)

const (
	NotificationEstablished = "established"
	NotificationChanged     = "changed"
	NotificationRemoved     = "removed"

	ReasonInvalidData   = "invalid_data"
	ReasonInvalidConfig = "invalid_config"
	ReasonTransient     = "transient"
)

func init() {
	ctrlmetrics.Registry.MustRegister(NotificationsTotal, RejectedNotificationsTotal, EventsTotal)
}
