package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	channelSendTrackerDefaultTTL = 8 * 24 * time.Hour
	channelSendTrackerKeyPrefix  = "creator_nudge:channel_sends:"
	// ChannelSendWindow is the rolling window the channel counts cover.
	ChannelSendWindow = 7 * 24 * time.Hour
)

// RedisChannelSendTracker records every delivery in a per-creator sorted set
// scored by send time in unix millis. Members are "channel|id" so that two
// sends in the same millisecond stay distinct.
type RedisChannelSendTracker struct {
	client redis.Cmdable
	cfg    RedisChannelSendTrackerConfig
}

type RedisChannelSendTrackerConfig struct{}

func NewRedisChannelSendTracker(client redis.Cmdable, cfg RedisChannelSendTrackerConfig) *RedisChannelSendTracker {
	return &RedisChannelSendTracker{
		client: client,
		cfg:    cfg,
	}
}

func makeChannelSendTrackerKey(creatorID string) string {
	return fmt.Sprintf("%s%s", channelSendTrackerKeyPrefix, creatorID)
}

// windowFloor is the exclusive lower bound, in millis, of the window ending at now.
func windowFloor(now time.Time) int64 {
	return now.Add(-ChannelSendWindow).UnixMilli()
}

// Increment records one delivery on channel at the given time.
func (r *RedisChannelSendTracker) Increment(ctx context.Context, creatorID, channel string, at time.Time) error {
	key := makeChannelSendTrackerKey(creatorID)
	member := channel + "|" + uuid.NewString()

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, &redis.Z{Score: float64(at.UnixMilli()), Member: member})
		// Sends at or before the window floor can never count again
		pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(windowFloor(at), 10))
		pipe.Expire(ctx, key, channelSendTrackerDefaultTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record channel send: %w", err)
	}
	return nil
}

// CountLast7d counts deliveries per channel sent less than 168h before now.
// Sends stamped after now are counted too.
func (r *RedisChannelSendTracker) CountLast7d(ctx context.Context, creatorID string, now time.Time) (map[string]int, error) {
	members, err := r.client.ZRangeByScore(ctx, makeChannelSendTrackerKey(creatorID), &redis.ZRangeBy{
		Min: "(" + strconv.FormatInt(windowFloor(now), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get channel counts: %w", err)
	}

	counts := make(map[string]int)
	for _, m := range members {
		channel, _, ok := strings.Cut(m, "|")
		if !ok {
			// Skip invalid entries
			continue
		}
		counts[channel]++
	}

	return counts, nil
}
