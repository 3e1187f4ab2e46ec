//go:build integration

package containers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"sndot/internal/platform/config"
	platformredis "sndot/internal/platform/redis"
)

// donorCachePattern matches every key the donor cache writes.
const donorCachePattern = "sndot:donor:*"

// RedisContainer backs the donor cache suites. Client is built by the same
// constructor the service uses, so suites exercise the production options.
type RedisContainer struct {
	Container testcontainers.Container
	URL       string
	Client    *platformredis.Client
}

// NewRedisContainer starts Redis and connects a platform client to it.
func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	url, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get redis connection string: %v", err)
	}

	rc := &RedisContainer{Container: container, URL: url}
	rc.Client, err = platformredis.New(ctx, rc.Config(time.Minute))
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to connect to redis: %v", err)
	}

	// No t.Cleanup: the Manager shares this container across suites.
	return rc
}

// Config returns the Redis section a service would load to reach this container.
func (r *RedisContainer) Config(cacheTTL time.Duration) config.Redis {
	d := config.Defaults().Redis
	d.URL = r.URL
	d.CacheTTL = cacheTTL
	return d
}

// CachedDonorKeys lists the donor cache keys currently stored.
func (r *RedisContainer) CachedDonorKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := r.Client.Scan(ctx, 0, donorCachePattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan donor cache: %w", err)
	}
	return keys, nil
}

// ResetDonorCache deletes every donor cache key so tests start cold.
func (r *RedisContainer) ResetDonorCache(ctx context.Context) error {
	keys, err := r.CachedDonorKeys(ctx)
	if err != nil || len(keys) == 0 {
		return err
	}
	return r.Client.Del(ctx, keys...).Err()
}
