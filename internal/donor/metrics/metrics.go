package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registration outcomes.
const (
	OutcomeCreated   = "created"
	OutcomeUpdated   = "updated"
	OutcomeUnchanged = "unchanged"
	OutcomeRejected  = "rejected"
	OutcomeConflict  = "conflict"
	OutcomeFailed    = "failed"
)

// Metrics holds the donor registry Prometheus collectors.
type Metrics struct {
	Registrations      *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	RegisterDuration   *prometheus.HistogramVec
	DonorsDeleted      prometheus.Counter
	CacheLookups       *prometheus.CounterVec
	OrgansSeeded       prometheus.Counter
}

// New creates and registers the collectors with reg. Tests pass a fresh
// prometheus.NewRegistry(); the server passes prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sndot_donor_registrations_total",
			Help: "Register and edit calls by operation and outcome",
		}, []string{"operation", "outcome"}),
		ValidationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sndot_donor_validation_failures_total",
			Help: "Field validation failures by field and kind",
		}, []string{"field", "kind"}),
		RegisterDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sndot_donor_register_duration_seconds",
			Help:    "Latency of register and edit calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		DonorsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "sndot_donors_deleted_total",
			Help: "Donors deleted together with their intents",
		}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sndot_donor_cache_lookups_total",
			Help: "Donor cache lookups by result (hit, miss, error)",
		}, []string{"result"}),
		OrgansSeeded: f.NewCounter(prometheus.CounterOpts{
			Name: "sndot_organs_seeded_total",
			Help: "Catalog organs inserted by the seeder",
		}),
	}
}

// The helpers below accept a nil receiver so services can run without metrics.

func (m *Metrics) ObserveRegistration(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(operation, outcome).Inc()
	m.RegisterDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) IncValidationFailure(field, kind string) {
	if m == nil {
		return
	}
	m.ValidationFailures.WithLabelValues(field, kind).Inc()
}

func (m *Metrics) IncDonorsDeleted() {
	if m == nil {
		return
	}
	m.DonorsDeleted.Inc()
}

func (m *Metrics) IncCacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) IncOrgansSeeded() {
	if m == nil {
		return
	}
	m.OrgansSeeded.Inc()
}
