package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RefreshStore persists hashed refresh tokens.
type RefreshStore interface {
	Save(ctx context.Context, hash string, userID uuid.UUID, ttl time.Duration) error
	Lookup(ctx context.Context, hash string) (uuid.UUID, error)
	Revoke(ctx context.Context, hash string) error
}

type redisRefreshStore struct {
	client *redis.Client
}

// NewRedisRefreshStore returns a store keyed "refresh:<hash>".
// With a nil client, tokens are not persisted and every refresh fails.
func NewRedisRefreshStore(client *redis.Client) RefreshStore {
	return &redisRefreshStore{client: client}
}

func refreshKey(hash string) string { return "refresh:" + hash }

func (s *redisRefreshStore) Save(ctx context.Context, hash string, userID uuid.UUID, ttl time.Duration) error {
	if s.client == nil {
		return nil
	}
	return s.client.Set(ctx, refreshKey(hash), userID.String(), ttl).Err()
}

func (s *redisRefreshStore) Lookup(ctx context.Context, hash string) (uuid.UUID, error) {
	if s.client == nil {
		return uuid.Nil, ErrInvalidRefreshToken
	}
	val, err := s.client.Get(ctx, refreshKey(hash)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(val)
}

func (s *redisRefreshStore) Revoke(ctx context.Context, hash string) error {
	if s.client == nil {
		return nil
	}
	return s.client.Del(ctx, refreshKey(hash)).Err()
}
