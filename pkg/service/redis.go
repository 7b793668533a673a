package service

import "github.com/go-redis/redis/v8"

// RedisService builds every Redis-backed store from one client.
type RedisService struct {
	client redis.UniversalClient
	cfg    RedisServiceConfig
}

type RedisServiceConfig struct{}

func NewRedisService(
	client redis.UniversalClient,
	cfg RedisServiceConfig,
) (*RedisService, error) {
	return &RedisService{
		client: client,
		cfg:    cfg,
	}, nil
}

// Dependencies returns a container wired with the Redis stores.
// The WhatsApp sender is not Redis-backed and must be set by the caller.
func (s *RedisService) Dependencies() *Dependencies {
	return NewDependencies().
		WithStateStore(NewRedisCreatorStateStore(s.client, RedisCreatorStateStoreConfig{})).
		WithHistoryStore(NewRedisNudgeHistoryStore(s.client, RedisNudgeHistoryStoreConfig{})).
		WithChannelTracker(NewRedisChannelSendTracker(s.client, RedisChannelSendTrackerConfig{})).
		WithScheduler(NewRedisNudgeScheduler(s.client, RedisNudgeSchedulerConfig{})).
		WithLock(NewRedisCreatorLock(s.client, RedisCreatorLockConfig{})).
		WithInbox(s.Inbox())
}

// Inbox returns the reader side of the in-app inbox.
func (s *RedisService) Inbox() *RedisInbox {
	return NewRedisInbox(s.client, RedisInboxConfig{})
}
