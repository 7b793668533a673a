package builtin

import (
	"context"

	"github.com/AccelByte/extend-creator-nudge/pkg/nudge"
	"github.com/AccelByte/extend-creator-nudge/pkg/signal"
	"github.com/AccelByte/extend-creator-nudge/pkg/state"
	"github.com/sirupsen/logrus"
)

// BrandVisitEventProcessor records a brand viewing the creator's profile.
// Every visit raises first_brand_visit; burst protection in the engine
// collapses repeats. A repeat visitor with no request submitted also raises
// second_visit_no_request.
type BrandVisitEventProcessor struct{}

func (p *BrandVisitEventProcessor) EventType() string {
	return signal.EventBrandProfileVisited
}

func (p *BrandVisitEventProcessor) Process(_ context.Context, event signal.Event, creator *signal.CreatorContext) (signal.Signal, error) {
	s := creator.State
	state.ApplyBrandVisit(s, event.OccurredAt)

	triggers := []signal.Trigger{{Key: nudge.KeyFirstBrandVisit, TriggeredAt: event.OccurredAt}}
	if s.Visits.Lifetime >= 2 && s.Deals.RequestsSubmitted == 0 {
		triggers = append(triggers, signal.Trigger{Key: nudge.KeySecondVisitNoRequest, TriggeredAt: event.OccurredAt})
	}

	metadata := map[string]interface{}{
		"brand_id":        event.String("brandId"),
		"visits_24h":      state.VisitCount24h(s, event.OccurredAt),
		"visits_lifetime": s.Visits.Lifetime,
	}

	logrus.Debugf("creator %s visited by brand %q (%d lifetime)", event.CreatorID, event.String("brandId"), s.Visits.Lifetime)
	return newSignal(event, creator, metadata, triggers...), nil
}
