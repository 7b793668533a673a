package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	inboxDefaultTTL = 30 * 24 * time.Hour
	inboxKeyPrefix  = "creator_nudge:inbox:"
	// InboxCapacity is the number of banners kept per creator
	InboxCapacity = 50
)

// RedisInbox stores in-app banners as a capped list, newest first.
type RedisInbox struct {
	client redis.Cmdable
	cfg    RedisInboxConfig
}

type RedisInboxConfig struct{}

func NewRedisInbox(client redis.Cmdable, cfg RedisInboxConfig) *RedisInbox {
	return &RedisInbox{
		client: client,
		cfg:    cfg,
	}
}

func makeInboxKey(creatorID string) string {
	return fmt.Sprintf("%s%s", inboxKeyPrefix, creatorID)
}

// Push prepends item and trims the list to InboxCapacity.
func (r *RedisInbox) Push(ctx context.Context, creatorID string, item InboxItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal inbox item: %w", err)
	}

	key := makeInboxKey(creatorID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, InboxCapacity-1)
		pipe.Expire(ctx, key, inboxDefaultTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to push inbox item: %w", err)
	}

	logrus.Debugf("pushed banner %s (%s) to creator %s", item.ID, item.Key, creatorID)
	return nil
}

// List returns up to limit banners, newest first.
func (r *RedisInbox) List(ctx context.Context, creatorID string, limit int64) ([]InboxItem, error) {
	if limit <= 0 || limit > InboxCapacity {
		limit = InboxCapacity
	}

	raw, err := r.client.LRange(ctx, makeInboxKey(creatorID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox: %w", err)
	}

	items := make([]InboxItem, 0, len(raw))
	for _, s := range raw {
		var item InboxItem
		if err := json.Unmarshal([]byte(s), &item); err != nil {
			// Skip invalid entries
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
