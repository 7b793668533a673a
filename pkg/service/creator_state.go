package service

import (
	"context"

	"github.com/AccelByte/extend-creator-nudge/pkg/state"
	"github.com/go-redis/redis/v8"
)

// RedisCreatorStateStore implements StateStore using Redis.
type RedisCreatorStateStore struct {
	client redis.Cmdable
	cfg    RedisCreatorStateStoreConfig
}

type RedisCreatorStateStoreConfig struct{}

// NewRedisCreatorStateStore creates a new Redis-backed state store.
func NewRedisCreatorStateStore(
	client redis.Cmdable,
	cfg RedisCreatorStateStoreConfig,
) *RedisCreatorStateStore {
	return &RedisCreatorStateStore{
		client: client,
		cfg:    cfg,
	}
}

// GetCreatorState retrieves the state for a creator, or a new state if none exists.
func (r *RedisCreatorStateStore) GetCreatorState(ctx context.Context, creatorID string) (*state.CreatorState, error) {
	return state.GetCreatorState(ctx, r.client, creatorID)
}

// UpdateCreatorState persists the state for a creator.
func (r *RedisCreatorStateStore) UpdateCreatorState(ctx context.Context, creatorID string, s *state.CreatorState) error {
	return state.UpdateCreatorState(ctx, r.client, creatorID, s)
}

// DeleteCreatorState removes the state for a creator.
func (r *RedisCreatorStateStore) DeleteCreatorState(ctx context.Context, creatorID string) error {
	return state.DeleteCreatorState(ctx, r.client, creatorID)
}
