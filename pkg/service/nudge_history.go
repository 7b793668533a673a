package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	nudgeHistoryStoreDefaultTTL = 30 * 24 * time.Hour
	nudgeHistoryStoreKeyPrefix  = "creator_nudge:history:"
)

// RedisNudgeHistoryStore keeps the last send time of every nudge key per
// creator in a hash (field = nudge key, value = unix millis).
type RedisNudgeHistoryStore struct {
	client redis.UniversalClient
	cfg    RedisNudgeHistoryStoreConfig
}

type RedisNudgeHistoryStoreConfig struct{}

func NewRedisNudgeHistoryStore(client redis.UniversalClient, cfg RedisNudgeHistoryStoreConfig) *RedisNudgeHistoryStore {
	return &RedisNudgeHistoryStore{
		client: client,
		cfg:    cfg,
	}
}

func makeNudgeHistoryStoreKey(creatorID string) string {
	return fmt.Sprintf("%s%s", nudgeHistoryStoreKeyPrefix, creatorID)
}

// LastSent returns the recorded send time per nudge key.
func (r *RedisNudgeHistoryStore) LastSent(ctx context.Context, creatorID string) (map[string]time.Time, error) {
	data, err := r.client.HGetAll(ctx, makeNudgeHistoryStoreKey(creatorID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get nudge history: %w", err)
	}

	out := make(map[string]time.Time, len(data))
	for key, raw := range data {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			// Skip invalid entries
			continue
		}
		out[key] = time.UnixMilli(ms).UTC()
	}
	return out, nil
}

// ClaimSend atomically moves the last send of key from expectedLast to sentAt.
// The comparison is at millisecond precision.
func (r *RedisNudgeHistoryStore) ClaimSend(
	ctx context.Context,
	creatorID, key string,
	expectedLast *time.Time,
	sentAt time.Time,
) error {
	hkey := makeNudgeHistoryStoreKey(creatorID)

	txf := func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, hkey, key).Result()
		switch {
		case err == redis.Nil:
			if expectedLast != nil {
				return ErrConcurrentSend
			}
		case err != nil:
			return err
		default:
			current, perr := strconv.ParseInt(raw, 10, 64)
			if perr == nil && (expectedLast == nil || current != expectedLast.UnixMilli()) {
				return ErrConcurrentSend
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, hkey, key, sentAt.UnixMilli())
			pipe.Expire(ctx, hkey, nudgeHistoryStoreDefaultTTL)
			return nil
		})
		return err
	}

	err := r.client.Watch(ctx, txf, hkey)
	if errors.Is(err, redis.TxFailedErr) || errors.Is(err, ErrConcurrentSend) {
		logrus.Infof("send of %s to creator %s already claimed", key, creatorID)
		return ErrConcurrentSend
	}
	if err != nil {
		return fmt.Errorf("failed to claim send: %w", err)
	}
	return nil
}
