package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus counters for audit emission.
type Metrics struct {
	Emitted         prometheus.Counter
	Dropped         prometheus.Counter
	PersistFailures prometheus.Counter
}

// NewMetrics creates the counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Emitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sndot_audit_events_emitted_total",
			Help: "Total number of audit events accepted for persistence",
		}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sndot_audit_events_dropped_total",
			Help: "Total number of audit events dropped because the async buffer was full",
		}),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sndot_audit_persist_failures_total",
			Help: "Total number of synchronous audit writes that failed",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Emitted, m.Dropped, m.PersistFailures)
	}
	return m
}

func (m *Metrics) incEmitted() {
	if m != nil {
		m.Emitted.Inc()
	}
}

func (m *Metrics) incDropped() {
	if m != nil {
		m.Dropped.Inc()
	}
}

func (m *Metrics) incPersistFailures() {
	if m != nil {
		m.PersistFailures.Inc()
	}
}
