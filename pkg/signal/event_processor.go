package signal

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// EventProcessor applies one lifecycle event type to a creator's state.
type EventProcessor interface {
	// EventType returns the type of event this processor handles.
	// Examples: "brand_profile_visited", "deal_completed"
	EventType() string

	// Process mutates the loaded creator state and returns the resulting signal.
	// It must not persist the state; the Processor does that.
	Process(ctx context.Context, event Event, creator *CreatorContext) (Signal, error)
}

// EventProcessorRegistry manages registered event processors.
type EventProcessorRegistry struct {
	mu         sync.RWMutex
	processors map[string]EventProcessor
}

// NewEventProcessorRegistry creates a new event processor registry.
func NewEventProcessorRegistry() *EventProcessorRegistry {
	return &EventProcessorRegistry{
		processors: make(map[string]EventProcessor),
	}
}

// Register adds an event processor to the registry.
func (r *EventProcessorRegistry) Register(processor EventProcessor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors[processor.EventType()] = processor
}

// Get retrieves an event processor by event type.
func (r *EventProcessorRegistry) Get(eventType string) EventProcessor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.processors[eventType]
}

// EventTypes returns the registered event types in sorted order.
func (r *EventProcessorRegistry) EventTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.processors))
	for k := range r.processors {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}

// Count returns the number of registered event processors.
func (r *EventProcessorRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.processors)
}

// Unregister removes an event processor from the registry.
func (r *EventProcessorRegistry) Unregister(eventType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.processors[eventType]; !exists {
		return fmt.Errorf("event processor for type '%s' not found", eventType)
	}

	delete(r.processors, eventType)
	return nil
}
