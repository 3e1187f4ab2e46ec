package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/twmb/franz-go/pkg/kgo"

	donormetrics "sndot/internal/donor/metrics"
	"sndot/internal/donor/service"
	"sndot/internal/donor/store/cache"
	donorstore "sndot/internal/donor/store/donor"
	intentstore "sndot/internal/donor/store/intent"
	organstore "sndot/internal/donor/store/organ"
	"sndot/internal/donor/validation"
	"sndot/internal/platform/config"
	"sndot/internal/platform/kafka"
	"sndot/internal/platform/postgres"
	platformredis "sndot/internal/platform/redis"
	"sndot/internal/platform/tracing"
	audit "sndot/pkg/platform/audit"
	"sndot/pkg/platform/audit/publisher"
	kafkastore "sndot/pkg/platform/audit/store/kafka"
	memorystore "sndot/pkg/platform/audit/store/memory"
	outboxstore "sndot/pkg/platform/audit/store/postgres"
	"sndot/pkg/platform/audit/worker"
)

// app holds the wired dependencies of one process. close releases them in
// reverse order of acquisition.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	registry  *prometheus.Registry
	db        *sql.DB
	redis     *platformredis.Client
	kafka     *kgo.Client
	tracing   *tracing.Provider
	publisher *publisher.Publisher
	relay     *worker.Relay
	registrar *service.Registrar
	closers   []func() error
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}
	defer func() {
		if err != nil {
			_ = a.close(context.Background())
		}
	}()

	a.tracing, err = tracing.NewProvider(ctx, cfg.Tracing)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error { return a.tracing.Shutdown(context.Background()) })

	if cfg.Database.URL != "" {
		a.db, err = postgres.Open(ctx, postgres.Config{
			URL:             cfg.Database.URL,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, a.db.Close)
	}

	a.redis, err = platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if a.redis != nil {
		a.closers = append(a.closers, a.redis.Close)
	}

	a.kafka, err = kafka.NewClient(ctx, cfg.Kafka)
	if err != nil {
		return nil, err
	}
	if a.kafka != nil {
		a.closers = append(a.closers, func() error { a.kafka.Close(); return nil })
		if err := kafka.EnsureAuditTopic(ctx, a.kafka, cfg.Kafka); err != nil {
			return nil, err
		}
	}

	a.publisher = publisher.NewPublisher(a.auditStore(),
		publisher.WithAsyncBuffer(cfg.Registry.AuditBuffer),
		publisher.WithLogger(logger),
		publisher.WithMetrics(publisher.NewMetrics(a.registry)),
	)
	a.closers = append(a.closers, a.publisher.Close)

	a.registrar, err = a.newRegistrar()
	if err != nil {
		return nil, err
	}
	// In-memory stores start empty on every run; give them the catalog so
	// intents can name organs.
	if a.db == nil {
		if _, err := a.registrar.SeedOrgans(ctx); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// auditStore picks the sink: the outbox when PostgreSQL is configured (the
// relay forwards it to Kafka), Kafka directly otherwise, memory as a last resort.
func (a *app) auditStore() audit.Store {
	switch {
	case a.db != nil:
		outbox := outboxstore.New(a.db)
		if a.kafka != nil {
			a.relay = worker.NewRelay(outbox, kafkastore.New(a.kafka, a.cfg.Kafka.AuditTopic), a.logger,
				worker.WithInterval(a.cfg.Kafka.RelayInterval),
				worker.WithBatch(a.cfg.Kafka.RelayBatch),
			)
		}
		return outbox
	case a.kafka != nil:
		return kafkastore.New(a.kafka, a.cfg.Kafka.AuditTopic)
	default:
		a.logger.Warn("no database or kafka configured, audit events are kept in memory")
		return memorystore.NewInMemoryStore()
	}
}

func (a *app) newRegistrar() (*service.Registrar, error) {
	var (
		donors  service.DonorStore
		intents service.IntentStore
		organs  service.OrganStore
		tx      service.StoreTx
	)
	if a.db != nil {
		donors = donorstore.NewPostgres(a.db)
		intents = intentstore.NewPostgres(a.db)
		organs = organstore.NewPostgres(a.db)
		tx = newRegistrationPostgresTx(a.db, a.cfg.Registry.TxTimeout)
	} else {
		a.logger.Warn("no database configured, running on in-memory stores")
		donors = donorstore.New()
		intents = intentstore.New()
		organs = organstore.New()
		tx = service.NewShardedTx(a.cfg.Registry.TxTimeout)
	}

	policy := validation.AccumulateAll
	if a.cfg.Registry.FailFast {
		policy = validation.FailFast
	}
	opts := []service.Option{
		service.WithLogger(a.logger),
		service.WithMetrics(donormetrics.New(a.registry)),
		service.WithAuditPublisher(a.publisher),
		service.WithTracerProvider(a.tracing.TracerProvider()),
		service.WithPolicy(policy),
	}
	if a.redis != nil {
		opts = append(opts, service.WithCache(cache.NewRedis(a.redis.Client, a.cfg.Redis.CacheTTL)))
	}
	return service.NewRegistrar(donors, intents, organs, tx, opts...)
}

// health reports the first failing backing service.
func (a *app) health(ctx context.Context) error {
	if a.db != nil {
		if err := a.db.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Health(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (a *app) close(_ context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
