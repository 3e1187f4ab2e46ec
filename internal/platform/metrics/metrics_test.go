package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Begin()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsInFlight))
	m.ObserveRequest("/donors", "POST", "201", 10*time.Millisecond)
	m.End()

	assert.Equal(t, float64(0), testutil.ToFloat64(m.RequestsInFlight))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Begin()
	m.ObserveRequest("/", "GET", "200", time.Millisecond)
	m.End()
}
