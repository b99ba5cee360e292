package view

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Guard suppresses repeated views from the same viewer in a short window.
type Guard interface {
	Allow(ctx context.Context, vendorID uuid.UUID, viewerKey string) (bool, error)
}

type redisGuard struct {
	client *redis.Client
	window time.Duration
}

// NewRedisGuard claims "view:<vendor>:<viewer>" with SETNX for window.
// A nil client lets every view through.
func NewRedisGuard(client *redis.Client, window time.Duration) Guard {
	return &redisGuard{client: client, window: window}
}

func (g *redisGuard) Allow(ctx context.Context, vendorID uuid.UUID, viewerKey string) (bool, error) {
	if g.client == nil {
		return true, nil
	}
	key := "view:" + vendorID.String() + ":" + viewerKey
	return g.client.SetNX(ctx, key, 1, g.window).Result()
}
