package builtin

import (
	"context"

	"github.com/AccelByte/extend-creator-nudge/pkg/nudge"
	"github.com/AccelByte/extend-creator-nudge/pkg/signal"
	"github.com/AccelByte/extend-creator-nudge/pkg/state"
)

// SignUpEventProcessor starts the onboarding nudges for a new creator.
type SignUpEventProcessor struct{}

func (p *SignUpEventProcessor) EventType() string {
	return signal.EventCreatorSignedUp
}

func (p *SignUpEventProcessor) Process(_ context.Context, event signal.Event, creator *signal.CreatorContext) (signal.Signal, error) {
	state.ApplySignUp(creator.State, event.OccurredAt)
	state.ApplyContact(creator.State, event.String("phone"), event.String("locale"))

	return newSignal(event, creator, nil,
		signal.Trigger{Key: nudge.KeyPostSignupWelcome, TriggeredAt: event.OccurredAt},
		rearmInactive(event.OccurredAt),
	), nil
}

// ProfileUpdatedEventProcessor records profile edits and flag changes.
type ProfileUpdatedEventProcessor struct{}

func (p *ProfileUpdatedEventProcessor) EventType() string {
	return signal.EventProfileUpdated
}

func (p *ProfileUpdatedEventProcessor) Process(_ context.Context, event signal.Event, creator *signal.CreatorContext) (signal.Signal, error) {
	state.ApplyProfileUpdate(creator.State, state.ProfileUpdate{
		HasAudienceInsights: event.Bool("hasAudienceInsights"),
		AvailabilitySet:     event.Bool("availabilitySet"),
		HasMediaKit:         event.Bool("hasMediaKit"),
	}, event.OccurredAt)
	state.ApplyContact(creator.State, event.String("phone"), event.String("locale"))

	return newSignal(event, creator, nil, rearmInactive(event.OccurredAt)), nil
}

// ContentPostedEventProcessor records the creator publishing content.
type ContentPostedEventProcessor struct{}

func (p *ContentPostedEventProcessor) EventType() string {
	return signal.EventContentPosted
}

func (p *ContentPostedEventProcessor) Process(_ context.Context, event signal.Event, creator *signal.CreatorContext) (signal.Signal, error) {
	state.ApplyContentPosted(creator.State, event.OccurredAt)
	return newSignal(event, creator, nil, rearmInactive(event.OccurredAt)), nil
}
