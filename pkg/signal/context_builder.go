package signal

import (
	"time"

	"github.com/AccelByte/extend-creator-nudge/pkg/nudge"
	"github.com/AccelByte/extend-creator-nudge/pkg/state"
)

// ContextBuilder turns creator state and send history into the snapshot the
// decision engine evaluates.
type ContextBuilder struct{}

// NewContextBuilder creates a context builder.
func NewContextBuilder() *ContextBuilder {
	return &ContextBuilder{}
}

// Build produces the CollabNudgeContext for one candidate key.
// lastSent comes from the history store and channelCounts from the channel
// tracker; both may be nil.
func (b *ContextBuilder) Build(
	s *state.CreatorState,
	lastSent map[string]time.Time,
	channelCounts map[string]int,
	key string,
	triggeredAt time.Time,
	now time.Time,
) nudge.CollabNudgeContext {
	c := nudge.CollabNudgeContext{
		EventKey:                  key,
		RecentNudgeAt:             state.RecentNudgeAt(s, key),
		MissingSignal:             nudge.MissingNone,
		ProfileUpdatedAt:          s.Profile.UpdatedAt,
		DealAcceptedAt:            s.Deals.AcceptedAt,
		OfferReceivedAt:           s.Deals.OfferReceivedAt,
		ActiveCollaborationsCount: s.Deals.ActiveCollaborations,
		PendingOfferCount:         s.Deals.PendingOffers,
		BrandVisitCount24h:        state.VisitCount24h(s, now),
		IgnoredNudgesCount:        s.Engagement.IgnoredCount,
		LastIgnoredAt:             s.Engagement.LastIgnoredAt,
		HasAcceptedFirstDeal:      s.Deals.HasAcceptedFirstDeal,
		NudgeCategory:             categoryOf(key),
		ChannelsSentLast7d:        make(map[nudge.Channel]int, len(channelCounts)),
	}

	// Coaching copy only applies to readiness nudges.
	if nudge.IsBeginnerEvent(key) {
		c.MissingSignal = state.MissingSignal(s, now)
	}

	if t, ok := lastSent[key]; ok && !t.IsZero() {
		c.LastNudgeAt = &t
	}
	for ch, n := range channelCounts {
		c.ChannelsSentLast7d[nudge.Channel(ch)] = n
	}

	switch key {
	case nudge.KeyPostSignupWelcome:
		c.AlreadyUpdated = after(s.Profile.UpdatedAt, triggeredAt)
	case nudge.KeyFirstBrandVisit:
		c.AlreadyUpdated = after(s.Profile.UpdatedAt, triggeredAt)
		c.RequestSubmitted = after(s.Deals.LastRequestSubmittedAt, triggeredAt)
	case nudge.KeySecondVisitNoRequest:
		c.AlreadyUpdated = after(s.Profile.UpdatedAt, triggeredAt)
		c.RequestSubmitted = s.Deals.RequestsSubmitted > 0
	case nudge.KeyInactive7d:
		c.AlreadyUpdated = s.LastActiveAt.After(triggeredAt)
	case nudge.KeyFirstRequest:
		c.DealInProgress = after(s.Deals.AcceptedAt, triggeredAt)
	}

	return c
}

func categoryOf(key string) nudge.Category {
	switch key {
	case nudge.KeyFirstRequest:
		return nudge.CategoryDeal
	case nudge.KeyFirstDealCompleted:
		return nudge.CategoryMomentum
	}
	return nudge.CategoryReadiness
}

func after(t *time.Time, ref time.Time) bool {
	return t != nil && t.After(ref)
}
