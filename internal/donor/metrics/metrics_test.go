package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRegistration(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRegistration("register", OutcomeCreated, 10*time.Millisecond)
	m.ObserveRegistration("register", OutcomeCreated, 5*time.Millisecond)
	m.ObserveRegistration("edit", OutcomeUnchanged, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Registrations.WithLabelValues("register", OutcomeCreated)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Registrations.WithLabelValues("edit", OutcomeUnchanged)))
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRegistration("register", OutcomeFailed, time.Second)
		m.IncValidationFailure("age", "rule")
		m.IncDonorsDeleted()
		m.IncCacheLookup("hit")
		m.IncOrgansSeeded()
	})
}
