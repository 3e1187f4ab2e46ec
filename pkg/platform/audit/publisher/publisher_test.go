package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "sndot/pkg/domain"
	audit "sndot/pkg/platform/audit"
	"sndot/pkg/platform/audit/store/memory"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	donorID := id.NewDonorID()
	err := pub.Emit(context.Background(), audit.Event{
		DonorID: donorID,
		Action:  string(audit.EventDonorRegistered),
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), donorID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventDonorRegistered), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category, "category is derived from the action")
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	donorID := id.NewDonorID()
	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			DonorID: donorID,
			Action:  string(audit.EventDonorUpdated),
		})
		require.NoError(t, err)
	}

	require.NoError(t, pub.Close())

	events, err := store.ListByDonor(context.Background(), donorID)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(1))
	require.NoError(t, pub.Close())
	require.NoError(t, pub.Close(), "second close is a no-op")

	err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventDonorUpdated)})
	assert.ErrorIs(t, err, ErrClosed)
}

// blockingStore holds every append until released so the buffer can fill.
type blockingStore struct {
	release chan struct{}
	memory.InMemoryStore
}

func (s *blockingStore) Append(ctx context.Context, e audit.Event) error {
	<-s.release
	return s.InMemoryStore.Append(ctx, e)
}

func TestPublisher_BufferFullDropsEvent(t *testing.T) {
	store := &blockingStore{release: make(chan struct{})}
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	pub := NewPublisher(store, WithAsyncBuffer(1), WithMetrics(metrics))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var full int
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventDonorUpdated)})
			if errors.Is(err, ErrBufferFull) {
				mu.Lock()
				full++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// One event is held by the worker and one fits in the buffer.
	assert.GreaterOrEqual(t, full, 8)
	assert.Equal(t, float64(full), testutil.ToFloat64(metrics.Dropped))

	close(store.release)
	require.NoError(t, pub.Close())
}

func TestPublisher_SetsTimestamp(t *testing.T) {
	fixed := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithClock(func() time.Time { return fixed }))

	donorID := id.NewDonorID()
	require.NoError(t, pub.Emit(context.Background(), audit.Event{DonorID: donorID, Action: string(audit.EventDonorRegistered)}))

	events, err := pub.List(context.Background(), donorID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, fixed, events[0].Timestamp)
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	donorID := id.NewDonorID()
	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		DonorID:   donorID,
		Action:    string(audit.EventDonorRegistered),
		Timestamp: customTime,
	}))

	events, err := pub.List(context.Background(), donorID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}

func TestPublisher_CancelledContextInAsyncMode(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(1))
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := pub.Emit(ctx, audit.Event{Action: string(audit.EventDonorUpdated)})
	assert.ErrorIs(t, err, context.Canceled)
}

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error { return errors.New("disk full") }

func TestPublisher_SyncFailureIsReturned(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	pub := NewPublisher(failingStore{}, WithMetrics(metrics))

	err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventDonorDeleted)})
	require.Error(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.PersistFailures))

	_, err = pub.List(context.Background(), id.NewDonorID())
	assert.Error(t, err, "store without listing support")
}
