// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultTTL is the default TTL for creator state in Redis (30 days)
	DefaultTTL = 30 * 24 * time.Hour
	// KeyPrefix is the prefix for all creator state keys
	KeyPrefix = "creator_nudge:state:"
)

// RedisOptions configures the Redis connection
type RedisOptions struct {
	Host       string
	Port       string
	Password   string
	DB         int
	MaxRetries int
	RetryDelay time.Duration
}

// InitRedisClient initializes and returns a Redis client, retrying the
// initial ping with exponential backoff.
func InitRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	addr := opts.Host + ":" + opts.Port
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     opts.Password,
		DB:           opts.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	maxRetries := opts.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	eb := backoff.NewExponentialBackOff()
	if opts.RetryDelay > 0 {
		eb.InitialInterval = opts.RetryDelay
	}
	eb.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(maxRetries-1)), ctx)

	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		return client.Ping(ctx).Err()
	}, b, func(err error, delay time.Duration) {
		logrus.Warnf("Redis connection failed (attempt %d/%d): %v, retrying in %v...",
			attempt, maxRetries, err, delay)
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s after %d attempts: %w", addr, attempt, err)
	}

	logrus.Infof("connected to Redis at %s (attempt %d/%d)", addr, attempt, maxRetries)
	return client, nil
}

// makeKey creates a Redis key for a creator
func makeKey(creatorID string) string {
	return fmt.Sprintf("%s%s", KeyPrefix, creatorID)
}

// GetCreatorState retrieves the state for a creator from Redis
func GetCreatorState(ctx context.Context, client redis.Cmdable, creatorID string) (*CreatorState, error) {
	key := makeKey(creatorID)

	data, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		logrus.Debugf("no existing state for creator %s, returning new state", creatorID)
		return NewCreatorState(creatorID), nil
	}
	if err != nil {
		logrus.Errorf("failed to get state for creator %s: %v", creatorID, err)
		return nil, fmt.Errorf("failed to get state: %w", err)
	}

	state := NewCreatorState(creatorID)
	if err := json.Unmarshal([]byte(data), state); err != nil {
		logrus.Errorf("failed to unmarshal state for creator %s: %v", creatorID, err)
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	if state.Engagement.RecentNudges == nil {
		state.Engagement.RecentNudges = make(map[string]time.Time)
	}

	return state, nil
}

// UpdateCreatorState writes the state for a creator to Redis
func UpdateCreatorState(ctx context.Context, client redis.Cmdable, creatorID string, state *CreatorState) error {
	key := makeKey(creatorID)

	data, err := json.Marshal(state)
	if err != nil {
		logrus.Errorf("failed to marshal state for creator %s: %v", creatorID, err)
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := client.Set(ctx, key, data, DefaultTTL).Err(); err != nil {
		logrus.Errorf("failed to set state for creator %s: %v", creatorID, err)
		return fmt.Errorf("failed to set state: %w", err)
	}

	logrus.Debugf("updated state for creator %s with TTL %v", creatorID, DefaultTTL)
	return nil
}

// DeleteCreatorState deletes the state for a creator from Redis
func DeleteCreatorState(ctx context.Context, client redis.Cmdable, creatorID string) error {
	if err := client.Del(ctx, makeKey(creatorID)).Err(); err != nil {
		logrus.Errorf("failed to delete state for creator %s: %v", creatorID, err)
		return fmt.Errorf("failed to delete state: %w", err)
	}

	logrus.Infof("deleted state for creator %s", creatorID)
	return nil
}
