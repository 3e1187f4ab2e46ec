package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"

	"sndot/internal/platform/config"
)

type fakeAdmin struct {
	resp kadm.CreateTopicResponse
	err  error
	got  string
}

func (f *fakeAdmin) CreateTopic(_ context.Context, _ int32, _ int16, _ map[string]*string, topic string) (kadm.CreateTopicResponse, error) {
	f.got = topic
	return f.resp, f.err
}

func TestEnsureTopic(t *testing.T) {
	ctx := context.Background()

	t.Run("created", func(t *testing.T) {
		admin := &fakeAdmin{}
		assert.NoError(t, EnsureTopic(ctx, admin, "sndot.audit", 3, 1))
		assert.Equal(t, "sndot.audit", admin.got)
	})

	t.Run("already exists is success", func(t *testing.T) {
		admin := &fakeAdmin{resp: kadm.CreateTopicResponse{Err: kerr.TopicAlreadyExists}}
		assert.NoError(t, EnsureTopic(ctx, admin, "sndot.audit", 3, 1))
	})

	t.Run("other errors surface", func(t *testing.T) {
		admin := &fakeAdmin{err: errors.New("broker down")}
		assert.Error(t, EnsureTopic(ctx, admin, "sndot.audit", 3, 1))

		admin = &fakeAdmin{resp: kadm.CreateTopicResponse{Err: kerr.PolicyViolation}}
		assert.ErrorIs(t, EnsureTopic(ctx, admin, "sndot.audit", 3, 1), kerr.PolicyViolation)
	})
}

func TestNewClientWithoutBrokers(t *testing.T) {
	client, err := NewClient(context.Background(), config.Kafka{})
	assert.NoError(t, err)
	assert.Nil(t, client)
}
