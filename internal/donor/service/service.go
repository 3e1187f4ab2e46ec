// Package service holds the donor registrar: it validates a submitted record,
// upserts the donor by national id and keeps the donation intent in step, all
// inside one store transaction.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"sndot/internal/donor/metrics"
	"sndot/internal/donor/models"
	"sndot/internal/donor/validation"
	id "sndot/pkg/domain"
	dErrors "sndot/pkg/domain-errors"
	audit "sndot/pkg/platform/audit"
)

// DonorStore persists donors. Implementations return sentinel.ErrNotFound and
// sentinel.ErrConflict (possibly wrapped).
type DonorStore interface {
	Create(ctx context.Context, donor *models.Donor) error
	Update(ctx context.Context, donor *models.Donor) error
	FindByID(ctx context.Context, donorID id.DonorID) (*models.Donor, error)
	FindByIDForUpdate(ctx context.Context, donorID id.DonorID) (*models.Donor, error)
	FindByNationalID(ctx context.Context, nationalID id.NationalID) (*models.Donor, error)
	FindByNationalIDForUpdate(ctx context.Context, nationalID id.NationalID) (*models.Donor, error)
	List(ctx context.Context) ([]*models.Donor, error)
	Delete(ctx context.Context, donorID id.DonorID) error
}

// IntentStore persists at most one intent per donor.
type IntentStore interface {
	FindByDonor(ctx context.Context, donorID id.DonorID) (*models.DonationIntent, error)
	Save(ctx context.Context, intent *models.DonationIntent) error
	DeleteByDonor(ctx context.Context, donorID id.DonorID) error
}

// OrganStore reads and seeds the organ catalog.
type OrganStore interface {
	Create(ctx context.Context, organ *models.Organ) error
	FindByNames(ctx context.Context, names []string) ([]*models.Organ, error)
	List(ctx context.Context) ([]*models.Organ, error)
}

// DonorCache is an optional read-through cache keyed by national id.
type DonorCache interface {
	Get(ctx context.Context, nationalID id.NationalID) (*models.Donor, error)
	Set(ctx context.Context, donor *models.Donor) error
	Invalidate(ctx context.Context, nationalIDs ...id.NationalID) error
}

// AuditPublisher receives events after writes commit.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Registration is the outcome of a register, edit or lookup call. Intent is
// nil when the donor never declared one.
type Registration struct {
	Donor   *models.Donor
	Intent  *models.DonationIntent
	Created bool
	Updated bool
}

// Registrar is the single entry point for donor writes.
type Registrar struct {
	donors  DonorStore
	intents IntentStore
	organs  OrganStore
	tx      StoreTx
	linker  *IntentLinker

	cache   DonorCache
	auditor AuditPublisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
	policy  validation.Policy
	now     func() time.Time
}

type Option func(*Registrar)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registrar) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registrar) {
		r.metrics = m
	}
}

func WithCache(cache DonorCache) Option {
	return func(r *Registrar) {
		r.cache = cache
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(r *Registrar) {
		r.auditor = publisher
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Registrar) {
		if tp != nil {
			r.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithPolicy selects the validation policy. AccumulateAll is the default.
func WithPolicy(policy validation.Policy) Option {
	return func(r *Registrar) {
		r.policy = policy
	}
}

// WithClock overrides the fallback clock used when ctx carries no request time.
func WithClock(now func() time.Time) Option {
	return func(r *Registrar) {
		if now != nil {
			r.now = now
		}
	}
}

const tracerName = "sndot/internal/donor/service"

func NewRegistrar(donors DonorStore, intents IntentStore, organs OrganStore, tx StoreTx, opts ...Option) (*Registrar, error) {
	if donors == nil || intents == nil || organs == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "donor, intent and organ stores are required")
	}
	if tx == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "store transaction is required")
	}
	r := &Registrar{
		donors:  donors,
		intents: intents,
		organs:  organs,
		tx:      tx,
		logger:  slog.Default(),
		tracer:  otel.Tracer(tracerName),
		policy:  validation.AccumulateAll,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.linker = NewIntentLinker(intents, organs)
	return r, nil
}

// Linker exposes the intent linker bound to the registrar's stores.
func (r *Registrar) Linker() *IntentLinker {
	return r.linker
}
