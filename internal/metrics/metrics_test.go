package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
)

func TestCountersAreRegistered(t *testing.T) {
	EventsTotal.WithLabelValues("ClientCreated").Inc()
	NotificationsTotal.WithLabelValues("oauth", "provider", NotificationChanged).Inc()
	RejectedNotificationsTotal.WithLabelValues("oauth", "provider", ReasonInvalidData).Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(EventsTotal.WithLabelValues("ClientCreated")))

	count, err := testutil.GatherAndCount(ctrlmetrics.Registry,
		"oauth_relation_events_total",
		"oauth_relation_notifications_total",
		"oauth_relation_rejected_notifications_total",
	)
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
}
