package signal

import (
	"context"
	"fmt"

	"github.com/AccelByte/extend-creator-nudge/pkg/service"
	"github.com/sirupsen/logrus"
)

// Processor loads creator state, hands the event to the matching
// EventProcessor and persists the mutated state.
type Processor struct {
	stateStore service.StateStore
	registry   *EventProcessorRegistry
}

// NewProcessor creates a new signal processor.
func NewProcessor(stateStore service.StateStore, registry *EventProcessorRegistry) *Processor {
	if registry == nil {
		registry = NewEventProcessorRegistry()
	}
	return &Processor{
		stateStore: stateStore,
		registry:   registry,
	}
}

// Registry returns the event processor registry.
func (p *Processor) Registry() *EventProcessorRegistry {
	return p.registry
}

// Process applies the event and returns the signal. Unknown event types
// return ErrUnknownEventType without touching state.
func (p *Processor) Process(ctx context.Context, event Event) (Signal, error) {
	ep := p.registry.Get(event.Type)
	if ep == nil {
		logrus.Debugf("no processor for event type %s, ignoring", event.Type)
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, event.Type)
	}

	creator, err := p.load(ctx, event.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator context for %s: %w", event.CreatorID, err)
	}

	sig, err := ep.Process(ctx, event, creator)
	if err != nil {
		return nil, fmt.Errorf("failed to process %s event: %w", event.Type, err)
	}

	if err := p.stateStore.UpdateCreatorState(ctx, event.CreatorID, creator.State); err != nil {
		return nil, fmt.Errorf("failed to save creator state: %w", err)
	}

	logrus.Debugf("processed %s for creator %s into %d trigger(s)", event.Type, event.CreatorID, len(sig.Triggers()))
	return sig, nil
}

func (p *Processor) load(ctx context.Context, creatorID string) (*CreatorContext, error) {
	s, err := p.stateStore.GetCreatorState(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if s.CreatorID == "" {
		s.CreatorID = creatorID
	}
	return &CreatorContext{CreatorID: creatorID, State: s}, nil
}
