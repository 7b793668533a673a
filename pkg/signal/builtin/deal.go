package builtin

import (
	"context"

	"github.com/AccelByte/extend-creator-nudge/pkg/nudge"
	"github.com/AccelByte/extend-creator-nudge/pkg/signal"
	"github.com/AccelByte/extend-creator-nudge/pkg/state"
)

// RequestReceivedEventProcessor handles a brand sending a collaboration request.
type RequestReceivedEventProcessor struct{}

func (p *RequestReceivedEventProcessor) EventType() string {
	return signal.EventCollabRequestReceived
}

func (p *RequestReceivedEventProcessor) Process(_ context.Context, event signal.Event, creator *signal.CreatorContext) (signal.Signal, error) {
	state.ApplyRequestReceived(creator.State, event.OccurredAt)

	metadata := map[string]interface{}{
		"brand_id":          event.String("brandId"),
		"requests_received": creator.State.Deals.RequestsReceived,
	}
	return newSignal(event, creator, metadata,
		signal.Trigger{Key: nudge.KeyFirstRequest, TriggeredAt: event.OccurredAt},
	), nil
}

// RequestSubmittedEventProcessor handles the creator pitching a brand.
type RequestSubmittedEventProcessor struct{}

func (p *RequestSubmittedEventProcessor) EventType() string {
	return signal.EventCollabRequestSubmitted
}

func (p *RequestSubmittedEventProcessor) Process(_ context.Context, event signal.Event, creator *signal.CreatorContext) (signal.Signal, error) {
	state.ApplyRequestSubmitted(creator.State, event.OccurredAt)
	return newSignal(event, creator, nil, rearmInactive(event.OccurredAt)), nil
}

// OfferReceivedEventProcessor handles a concrete offer from a brand.
type OfferReceivedEventProcessor struct{}

func (p *OfferReceivedEventProcessor) EventType() string {
	return signal.EventOfferReceived
}

func (p *OfferReceivedEventProcessor) Process(_ context.Context, event signal.Event, creator *signal.CreatorContext) (signal.Signal, error) {
	state.ApplyOfferReceived(creator.State, event.OccurredAt)
	return newSignal(event, creator, map[string]interface{}{"brand_id": event.String("brandId")}), nil
}

// DealAcceptedEventProcessor handles the creator accepting a deal.
type DealAcceptedEventProcessor struct{}

func (p *DealAcceptedEventProcessor) EventType() string {
	return signal.EventDealAccepted
}

func (p *DealAcceptedEventProcessor) Process(_ context.Context, event signal.Event, creator *signal.CreatorContext) (signal.Signal, error) {
	state.ApplyDealAccepted(creator.State, event.OccurredAt)
	return newSignal(event, creator, nil, rearmInactive(event.OccurredAt)), nil
}

// DealCompletedEventProcessor handles a finished collaboration. The first
// completion raises first_deal_completed.
type DealCompletedEventProcessor struct{}

func (p *DealCompletedEventProcessor) EventType() string {
	return signal.EventDealCompleted
}

func (p *DealCompletedEventProcessor) Process(_ context.Context, event signal.Event, creator *signal.CreatorContext) (signal.Signal, error) {
	first := state.ApplyDealCompleted(creator.State, event.OccurredAt)

	triggers := []signal.Trigger{rearmInactive(event.OccurredAt)}
	if first {
		triggers = append(triggers, signal.Trigger{Key: nudge.KeyFirstDealCompleted, TriggeredAt: event.OccurredAt})
	}

	metadata := map[string]interface{}{
		"deals_completed": creator.State.Deals.Completed,
	}
	return newSignal(event, creator, metadata, triggers...), nil
}
