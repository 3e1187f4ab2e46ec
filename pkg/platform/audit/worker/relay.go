package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"sndot/pkg/platform/audit/store/postgres"
)

// Outbox is the read side of the audit outbox.
type Outbox interface {
	Pending(ctx context.Context, limit int) ([]postgres.Entry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}

// Sink forwards encoded events, typically to Kafka.
type Sink interface {
	Publish(ctx context.Context, key, eventType string, payload []byte) error
}

const (
	defaultRelayInterval = 2 * time.Second
	defaultRelayBatch    = 100
)

// Relay moves committed outbox rows to the sink. Delivery is at least once:
// a crash between publish and mark re-sends the batch.
type Relay struct {
	outbox   Outbox
	sink     Sink
	logger   *slog.Logger
	interval time.Duration
	batch    int
}

type RelayOption func(*Relay)

// WithInterval sets the polling period. Non-positive values keep the default.
func WithInterval(d time.Duration) RelayOption {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithBatch caps how many rows one RelayOnce forwards.
func WithBatch(n int) RelayOption {
	return func(r *Relay) {
		if n > 0 {
			r.batch = n
		}
	}
}

func NewRelay(outbox Outbox, sink Sink, logger *slog.Logger, opts ...RelayOption) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Relay{
		outbox:   outbox,
		sink:     sink,
		logger:   logger,
		interval: defaultRelayInterval,
		batch:    defaultRelayBatch,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		if _, err := r.RelayOnce(ctx); err != nil {
			r.logger.WarnContext(ctx, "audit outbox relay failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RelayOnce forwards one batch in order and stops at the first publish
// failure so ordering per key is kept. It returns how many rows were marked.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	entries, err := r.outbox.Pending(ctx, r.batch)
	if err != nil {
		return 0, err
	}
	published := make([]uuid.UUID, 0, len(entries))
	var publishErr error
	for _, e := range entries {
		if err := r.sink.Publish(ctx, e.Key, e.EventType, e.Payload); err != nil {
			publishErr = err
			break
		}
		published = append(published, e.ID)
	}
	if err := r.outbox.MarkPublished(ctx, published); err != nil {
		return 0, err
	}
	return len(published), publishErr
}
