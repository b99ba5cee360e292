package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.TransitionApplied("accept", "pending", "accepted")
		m.RollbackApplied("onboarding_approve")
		m.ConnectionOpened(1)
		m.EventDelivered(false)
	})
}

func TestCounters(t *testing.T) {
	m := New("test")

	m.TransitionApplied("accept", "pending", "accepted")
	m.TransitionApplied("accept", "pending", "accepted")
	m.RollbackApplied("invitation_redeem")
	m.ConnectionOpened(1)
	m.ConnectionOpened(1)
	m.ConnectionOpened(-1)
	m.EventDelivered(true)
	m.EventDelivered(false)
	m.ObserveRequest("/api/v1/requests", "POST", 201, 0.02)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Transitions.WithLabelValues("accept", "pending", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rollbacks.WithLabelValues("invitation_redeem")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WSConnections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WSEvents.WithLabelValues("dropped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/api/v1/requests", "POST", "201")))
}
