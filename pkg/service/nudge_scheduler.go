package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	nudgeSchedulerDefaultTTL  = 30 * 24 * time.Hour
	nudgeSchedulerQueuePrefix = "creator_nudge:pending:"
	nudgeSchedulerMetaPrefix  = "creator_nudge:pending_meta:"
	nudgeSchedulerIndexKey    = "creator_nudge:pending_index"
)

// RedisNudgeScheduler stores pending candidates per creator in a sorted set
// scored by due time, with candidate details in a side hash. A global sorted
// set indexes creators by their earliest due candidate so the sweeper can
// find work without scanning.
type RedisNudgeScheduler struct {
	client redis.Cmdable
	cfg    RedisNudgeSchedulerConfig
}

type RedisNudgeSchedulerConfig struct{}

func NewRedisNudgeScheduler(client redis.Cmdable, cfg RedisNudgeSchedulerConfig) *RedisNudgeScheduler {
	return &RedisNudgeScheduler{
		client: client,
		cfg:    cfg,
	}
}

func makeQueueKey(creatorID string) string {
	return fmt.Sprintf("%s%s", nudgeSchedulerQueuePrefix, creatorID)
}

func makeMetaKey(creatorID string) string {
	return fmt.Sprintf("%s%s", nudgeSchedulerMetaPrefix, creatorID)
}

// Schedule adds or replaces the candidate for c.Key.
func (r *RedisNudgeScheduler) Schedule(ctx context.Context, creatorID string, c Candidate) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal candidate: %w", err)
	}

	queue, meta := makeQueueKey(creatorID), makeMetaKey(creatorID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, queue, &redis.Z{Score: float64(c.DueAt.UnixMilli()), Member: c.Key})
		pipe.HSet(ctx, meta, c.Key, data)
		pipe.Expire(ctx, queue, nudgeSchedulerDefaultTTL)
		pipe.Expire(ctx, meta, nudgeSchedulerDefaultTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to schedule candidate: %w", err)
	}

	logrus.Debugf("scheduled %s for creator %s at %v", c.Key, creatorID, c.DueAt)
	return r.reindex(ctx, creatorID)
}

// Pending returns every candidate for the creator, earliest due first.
func (r *RedisNudgeScheduler) Pending(ctx context.Context, creatorID string) ([]Candidate, error) {
	return r.load(ctx, creatorID, "+inf")
}

// Due returns the candidates whose due time is at or before now.
func (r *RedisNudgeScheduler) Due(ctx context.Context, creatorID string, now time.Time) ([]Candidate, error) {
	return r.load(ctx, creatorID, strconv.FormatInt(now.UnixMilli(), 10))
}

func (r *RedisNudgeScheduler) load(ctx context.Context, creatorID, max string) ([]Candidate, error) {
	keys, err := r.client.ZRangeByScore(ctx, makeQueueKey(creatorID), &redis.ZRangeBy{
		Min: "-inf",
		Max: max,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read pending candidates: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	raw, err := r.client.HMGet(ctx, makeMetaKey(creatorID), keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read candidate details: %w", err)
	}

	out := make([]Candidate, 0, len(keys))
	for i, v := range raw {
		s, ok := v.(string)
		if !ok {
			logrus.Warnf("candidate %s for creator %s has no details, skipping", keys[i], creatorID)
			continue
		}
		var c Candidate
		if err := json.Unmarshal([]byte(s), &c); err != nil {
			logrus.Warnf("candidate %s for creator %s is corrupt: %v", keys[i], creatorID, err)
			continue
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	return out, nil
}

// DueCreators returns up to limit creators with at least one due candidate.
func (r *RedisNudgeScheduler) DueCreators(ctx context.Context, now time.Time, limit int64) ([]string, error) {
	ids, err := r.client.ZRangeByScore(ctx, nudgeSchedulerIndexKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read due creators: %w", err)
	}
	return ids, nil
}

// Remove drops candidates for the given keys.
func (r *RedisNudgeScheduler) Remove(ctx context.Context, creatorID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	members := make([]interface{}, len(keys))
	for i, k := range keys {
		members[i] = k
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, makeQueueKey(creatorID), members...)
		pipe.HDel(ctx, makeMetaKey(creatorID), keys...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove candidates: %w", err)
	}

	return r.reindex(ctx, creatorID)
}

// Postpone moves the creator's index entry to until so that creators whose
// candidates are still blocked do not hold the head of the sweep batch. The
// per-creator queue keeps its due times; the next Schedule or Remove
// reindexes from it.
func (r *RedisNudgeScheduler) Postpone(ctx context.Context, creatorID string, until time.Time) error {
	score, err := r.client.ZScore(ctx, nudgeSchedulerIndexKey, creatorID).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read pending index: %w", err)
	}

	target := float64(until.UnixMilli())
	if score >= target {
		return nil
	}

	if err := r.client.ZAddXX(ctx, nudgeSchedulerIndexKey, &redis.Z{Score: target, Member: creatorID}).Err(); err != nil {
		return fmt.Errorf("failed to postpone creator: %w", err)
	}
	return nil
}

// reindex points the global index at the creator's earliest due candidate,
// or drops the creator when nothing is pending.
func (r *RedisNudgeScheduler) reindex(ctx context.Context, creatorID string) error {
	head, err := r.client.ZRangeWithScores(ctx, makeQueueKey(creatorID), 0, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to read queue head: %w", err)
	}

	if len(head) == 0 {
		err = r.client.ZRem(ctx, nudgeSchedulerIndexKey, creatorID).Err()
	} else {
		err = r.client.ZAdd(ctx, nudgeSchedulerIndexKey, &redis.Z{Score: head[0].Score, Member: creatorID}).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to update pending index: %w", err)
	}
	return nil
}
