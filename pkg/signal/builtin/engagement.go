package builtin

import (
	"context"

	"github.com/AccelByte/extend-creator-nudge/pkg/signal"
	"github.com/AccelByte/extend-creator-nudge/pkg/state"
)

// NudgeDismissedEventProcessor counts dismissals toward the silent period.
type NudgeDismissedEventProcessor struct{}

func (p *NudgeDismissedEventProcessor) EventType() string {
	return signal.EventNudgeDismissed
}

func (p *NudgeDismissedEventProcessor) Process(_ context.Context, event signal.Event, creator *signal.CreatorContext) (signal.Signal, error) {
	state.ApplyNudgeDismissed(creator.State, event.OccurredAt)
	return newSignal(event, creator, map[string]interface{}{
		"nudge_key":     event.String("nudgeKey"),
		"ignored_count": creator.State.Engagement.IgnoredCount,
	}), nil
}

// NudgeOpenedEventProcessor resets the dismissal streak.
type NudgeOpenedEventProcessor struct{}

func (p *NudgeOpenedEventProcessor) EventType() string {
	return signal.EventNudgeOpened
}

func (p *NudgeOpenedEventProcessor) Process(_ context.Context, event signal.Event, creator *signal.CreatorContext) (signal.Signal, error) {
	state.ApplyNudgeOpened(creator.State, event.OccurredAt)
	return newSignal(event, creator, map[string]interface{}{
		"nudge_key": event.String("nudgeKey"),
	}, rearmInactive(event.OccurredAt)), nil
}
