package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const creatorLockKeyPrefix = "creator_nudge:lock:"

// releaseScript deletes the lease only if the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisCreatorLock is a per-creator lease taken with SET NX PX. It serializes
// evaluation cycles for one creator across workers.
type RedisCreatorLock struct {
	client redis.Cmdable
	cfg    RedisCreatorLockConfig
}

type RedisCreatorLockConfig struct{}

func NewRedisCreatorLock(client redis.Cmdable, cfg RedisCreatorLockConfig) *RedisCreatorLock {
	return &RedisCreatorLock{
		client: client,
		cfg:    cfg,
	}
}

func makeCreatorLockKey(creatorID string) string {
	return fmt.Sprintf("%s%s", creatorLockKeyPrefix, creatorID)
}

// Acquire takes the lease for ttl and returns its token.
// Returns ErrCreatorLocked when another holder has it.
func (r *RedisCreatorLock) Acquire(ctx context.Context, creatorID string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, makeCreatorLockKey(creatorID), token, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to acquire creator lock: %w", err)
	}
	if !ok {
		return "", ErrCreatorLocked
	}
	return token, nil
}

// Release drops the lease if token still owns it. An expired or stolen
// lease is left alone.
func (r *RedisCreatorLock) Release(ctx context.Context, creatorID, token string) error {
	if err := releaseScript.Run(ctx, r.client, []string{makeCreatorLockKey(creatorID)}, token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release creator lock: %w", err)
	}
	return nil
}
