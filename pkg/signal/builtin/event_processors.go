package builtin

import (
	"time"

	"github.com/AccelByte/extend-creator-nudge/pkg/nudge"
	"github.com/AccelByte/extend-creator-nudge/pkg/signal"
)

// RegisterEventProcessors registers all built-in event processors.
func RegisterEventProcessors(registry *signal.EventProcessorRegistry) {
	registry.Register(&SignUpEventProcessor{})
	registry.Register(&BrandVisitEventProcessor{})
	registry.Register(&RequestReceivedEventProcessor{})
	registry.Register(&RequestSubmittedEventProcessor{})
	registry.Register(&OfferReceivedEventProcessor{})
	registry.Register(&DealAcceptedEventProcessor{})
	registry.Register(&DealCompletedEventProcessor{})
	registry.Register(&ProfileUpdatedEventProcessor{})
	registry.Register(&ContentPostedEventProcessor{})
	registry.Register(&NudgeDismissedEventProcessor{})
	registry.Register(&NudgeOpenedEventProcessor{})
}

// rearmInactive restarts the inactivity countdown from a creator-initiated event.
func rearmInactive(at time.Time) signal.Trigger {
	return signal.Trigger{Key: nudge.KeyInactive7d, TriggeredAt: at}
}

func newSignal(event signal.Event, creator *signal.CreatorContext, metadata map[string]interface{}, triggers ...signal.Trigger) signal.Signal {
	s := signal.NewBaseSignal(event.Type, event.CreatorID, event.OccurredAt, metadata, creator, triggers...)
	return &s
}
