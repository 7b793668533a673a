package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/AccelByte/extend-creator-nudge/pkg/service"
)

// WhatsAppSender is a mock implementation of service.WhatsAppSender for testing
type WhatsAppSender struct {
	// SendTemplateFunc is called when SendTemplate is invoked
	SendTemplateFunc func(ctx context.Context, msg service.WhatsAppMessage) (string, error)

	DefaultError error

	mu    sync.Mutex
	Calls []service.WhatsAppMessage
}

// NewWhatsAppSender creates a new mock sender that accepts every message
func NewWhatsAppSender() *WhatsAppSender {
	return &WhatsAppSender{}
}

// SendTemplate records the call and returns a fake message id
func (m *WhatsAppSender) SendTemplate(ctx context.Context, msg service.WhatsAppMessage) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, msg)
	n := len(m.Calls)
	m.mu.Unlock()

	// Use custom function if provided
	if m.SendTemplateFunc != nil {
		return m.SendTemplateFunc(ctx, msg)
	}

	if m.DefaultError != nil {
		return "", m.DefaultError
	}
	return fmt.Sprintf("wamid.mock%d", n), nil
}

// CallCount returns how many messages were sent
func (m *WhatsAppSender) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// WithError sets the default error to return
func (m *WhatsAppSender) WithError(err error) *WhatsAppSender {
	m.DefaultError = err
	return m
}

// Reset clears all call tracking
func (m *WhatsAppSender) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
}

// AssertSentTo verifies a message was sent to the given recipient
func (m *WhatsAppSender) AssertSentTo(to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, call := range m.Calls {
		if call.To == to {
			return nil
		}
	}
	return fmt.Errorf("expected SendTemplate called with to=%s, but got calls: %v", to, m.Calls)
}
