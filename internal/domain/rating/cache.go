package rating

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SummaryCache stores computed summaries.
type SummaryCache interface {
	Get(ctx context.Context, vendorID uuid.UUID) (*Summary, error)
	Set(ctx context.Context, s *Summary) error
	Invalidate(ctx context.Context, vendorID uuid.UUID) error
}

type redisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSummaryCache caches summaries under "rating:summary:<vendor>".
// A nil client disables caching.
func NewRedisSummaryCache(client *redis.Client, ttl time.Duration) SummaryCache {
	return &redisSummaryCache{client: client, ttl: ttl}
}

func summaryKey(vendorID uuid.UUID) string { return "rating:summary:" + vendorID.String() }

// Get returns nil, nil on a miss.
func (c *redisSummaryCache) Get(ctx context.Context, vendorID uuid.UUID) (*Summary, error) {
	if c.client == nil {
		return nil, nil
	}
	raw, err := c.client.Get(ctx, summaryKey(vendorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *redisSummaryCache) Set(ctx context.Context, s *Summary) error {
	if c.client == nil {
		return nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, summaryKey(s.VendorID), raw, c.ttl).Err()
}

func (c *redisSummaryCache) Invalidate(ctx context.Context, vendorID uuid.UUID) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, summaryKey(vendorID)).Err()
}
