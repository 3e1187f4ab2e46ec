// Package cache keeps a read-through copy of donors in Redis, keyed by
// national id. Entries are invalidated after every committed write.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sndot/internal/donor/models"
	id "sndot/pkg/domain"
	"sndot/pkg/platform/sentinel"
)

const (
	keyPrefix  = "sndot:donor:national:"
	DefaultTTL = 5 * time.Minute
)

type RedisDonorCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedis(client redis.UniversalClient, ttl time.Duration) *RedisDonorCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisDonorCache{client: client, ttl: ttl}
}

// Get returns sentinel.ErrNotFound on a miss.
func (c *RedisDonorCache) Get(ctx context.Context, nationalID id.NationalID) (*models.Donor, error) {
	raw, err := c.client.Get(ctx, key(nationalID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w: %w", sentinel.ErrUnavailable, err)
	}
	var donor models.Donor
	if err := json.Unmarshal(raw, &donor); err != nil {
		return nil, fmt.Errorf("decode cached donor: %w", err)
	}
	return &donor, nil
}

func (c *RedisDonorCache) Set(ctx context.Context, donor *models.Donor) error {
	raw, err := json.Marshal(donor)
	if err != nil {
		return fmt.Errorf("encode donor: %w", err)
	}
	if err := c.client.Set(ctx, key(donor.NationalID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (c *RedisDonorCache) Invalidate(ctx context.Context, nationalIDs ...id.NationalID) error {
	if len(nationalIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(nationalIDs))
	for _, n := range nationalIDs {
		keys = append(keys, key(n))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func key(nationalID id.NationalID) string {
	return keyPrefix + nationalID.String()
}
