package mock

import (
	"context"
	"sync"

	"github.com/AccelByte/extend-creator-nudge/pkg/service"
)

// Inbox is an in-memory implementation of service.InboxWriter and service.InboxReader
type Inbox struct {
	DefaultError error

	mu    sync.Mutex
	items map[string][]service.InboxItem
}

// NewInbox creates an empty in-memory inbox
func NewInbox() *Inbox {
	return &Inbox{items: make(map[string][]service.InboxItem)}
}

// Push prepends item for the creator
func (m *Inbox) Push(_ context.Context, creatorID string, item service.InboxItem) error {
	if m.DefaultError != nil {
		return m.DefaultError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[creatorID] = append([]service.InboxItem{item}, m.items[creatorID]...)
	return nil
}

// List returns up to limit items, newest first
func (m *Inbox) List(_ context.Context, creatorID string, limit int64) ([]service.InboxItem, error) {
	if m.DefaultError != nil {
		return nil, m.DefaultError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.items[creatorID]
	if limit > 0 && int64(len(items)) > limit {
		items = items[:limit]
	}
	return append([]service.InboxItem(nil), items...), nil
}
