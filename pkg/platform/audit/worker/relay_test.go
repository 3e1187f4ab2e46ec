package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sndot/pkg/platform/audit/store/postgres"
)

type fakeOutbox struct {
	entries []postgres.Entry
	marked  []uuid.UUID
}

func (o *fakeOutbox) Pending(_ context.Context, limit int) ([]postgres.Entry, error) {
	if len(o.entries) > limit {
		return o.entries[:limit], nil
	}
	return o.entries, nil
}

func (o *fakeOutbox) MarkPublished(_ context.Context, ids []uuid.UUID) error {
	o.marked = append(o.marked, ids...)
	return nil
}

type fakeSink struct {
	keys   []string
	failAt int
}

func (s *fakeSink) Publish(_ context.Context, key, _ string, _ []byte) error {
	if s.failAt > 0 && len(s.keys) == s.failAt {
		return errors.New("broker down")
	}
	s.keys = append(s.keys, key)
	return nil
}

func entries(keys ...string) []postgres.Entry {
	out := make([]postgres.Entry, len(keys))
	for i, k := range keys {
		out[i] = postgres.Entry{ID: uuid.New(), Key: k, EventType: "donor_registered", Payload: []byte(`{}`)}
	}
	return out
}

func TestRelayOnceForwardsInOrder(t *testing.T) {
	outbox := &fakeOutbox{entries: entries("a", "b", "c")}
	sink := &fakeSink{}
	relay := NewRelay(outbox, sink, nil)

	n, err := relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"a", "b", "c"}, sink.keys)
	assert.Len(t, outbox.marked, 3)
}

func TestRelayOnceStopsAtFirstFailure(t *testing.T) {
	outbox := &fakeOutbox{entries: entries("a", "b", "c")}
	sink := &fakeSink{failAt: 1}
	relay := NewRelay(outbox, sink, nil)

	n, err := relay.RelayOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []uuid.UUID{outbox.entries[0].ID}, outbox.marked, "only the delivered row is marked")
}
