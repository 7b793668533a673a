package service

import (
	"context"
	"time"

	"github.com/AccelByte/extend-creator-nudge/pkg/state"
)

// Service interfaces for the stores and senders that processors, actions and
// the pipeline depend on. Redis implementations live in this package; tests
// can swap in the fakes under mock/.

// StateStore defines the interface for accessing creator state.
type StateStore interface {
	GetCreatorState(ctx context.Context, creatorID string) (*state.CreatorState, error)
	UpdateCreatorState(ctx context.Context, creatorID string, state *state.CreatorState) error
}

// HistoryStore is the authoritative record of when each nudge key was last sent.
type HistoryStore interface {
	// LastSent returns the last send time per key for a creator.
	LastSent(ctx context.Context, creatorID string) (map[string]time.Time, error)
	// ClaimSend records sentAt for key only if the stored value still equals
	// expectedLast (nil meaning never sent). Returns ErrConcurrentSend otherwise.
	ClaimSend(ctx context.Context, creatorID, key string, expectedLast *time.Time, sentAt time.Time) error
}

// ChannelTracker counts deliveries per channel over a rolling 7 days.
type ChannelTracker interface {
	Increment(ctx context.Context, creatorID, channel string, at time.Time) error
	CountLast7d(ctx context.Context, creatorID string, now time.Time) (map[string]int, error)
}

// Scheduler holds nudge candidates that are waiting to become due.
type Scheduler interface {
	Schedule(ctx context.Context, creatorID string, c Candidate) error
	Pending(ctx context.Context, creatorID string) ([]Candidate, error)
	Due(ctx context.Context, creatorID string, now time.Time) ([]Candidate, error)
	DueCreators(ctx context.Context, now time.Time, limit int64) ([]string, error)
	Remove(ctx context.Context, creatorID string, keys ...string) error
	Postpone(ctx context.Context, creatorID string, until time.Time) error
}

// CreatorLock is a short lease that lets one evaluation cycle per creator
// run at a time.
type CreatorLock interface {
	Acquire(ctx context.Context, creatorID string, ttl time.Duration) (string, error)
	Release(ctx context.Context, creatorID, token string) error
}

// InboxWriter stores in-app banners for a creator.
type InboxWriter interface {
	Push(ctx context.Context, creatorID string, item InboxItem) error
}

// InboxReader lists in-app banners for a creator, newest first.
type InboxReader interface {
	List(ctx context.Context, creatorID string, limit int64) ([]InboxItem, error)
}

// WhatsAppSender delivers a template message to a creator's phone.
type WhatsAppSender interface {
	SendTemplate(ctx context.Context, msg WhatsAppMessage) (string, error)
}
