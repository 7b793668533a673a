package nudge

import (
	"strings"
	"time"
)

// MissingSignal names the profile signal a creator is missing, if any.
type MissingSignal string

const (
	MissingAudience      MissingSignal = "audience"
	MissingActivity      MissingSignal = "activity"
	MissingCollabSetup   MissingSignal = "collab_setup"
	MissingCampaignReady MissingSignal = "campaign_ready"
	MissingNone          MissingSignal = "none"
)

// Category groups nudges by intent. An empty category means readiness.
type Category string

const (
	CategoryReadiness Category = "readiness"
	CategoryDeal      Category = "deal"
	CategoryMomentum  Category = "momentum"
)

// CollabNudgeContext is a point-in-time snapshot describing one candidate
// nudge for one creator. It is passed by value and never retained.
type CollabNudgeContext struct {
	EventKey string `json:"eventKey"`

	LastNudgeAt   *time.Time `json:"lastNudgeAt,omitempty"`
	RecentNudgeAt *time.Time `json:"recentNudgeAt,omitempty"`

	AlreadyUpdated   bool `json:"alreadyUpdated"`
	RequestSubmitted bool `json:"requestSubmitted"`
	DealInProgress   bool `json:"dealInProgress"`

	MissingSignal MissingSignal `json:"missingSignal,omitempty"`

	ProfileUpdatedAt *time.Time `json:"profileUpdatedAt,omitempty"`
	DealAcceptedAt   *time.Time `json:"dealAcceptedAt,omitempty"`
	OfferReceivedAt  *time.Time `json:"offerReceivedAt,omitempty"`

	ActiveCollaborationsCount int `json:"activeCollaborationsCount"`
	PendingOfferCount         int `json:"pendingOfferCount"`
	BrandVisitCount24h        int `json:"brandVisitCount24h"`

	IgnoredNudgesCount int        `json:"ignoredNudgesCount"`
	LastIgnoredAt      *time.Time `json:"lastIgnoredAt,omitempty"`

	HasAcceptedFirstDeal bool `json:"hasAcceptedFirstDeal"`

	NudgeCategory Category `json:"nudgeCategory,omitempty"`

	ChannelsSentLast7d map[Channel]int `json:"channelsSentLast7d,omitempty"`
}

// EffectiveLastSend returns LastNudgeAt, falling back to RecentNudgeAt.
func (c CollabNudgeContext) EffectiveLastSend() *time.Time {
	if c.LastNudgeAt != nil {
		return c.LastNudgeAt
	}
	return c.RecentNudgeAt
}

// Category returns the nudge category, defaulting to readiness.
func (c CollabNudgeContext) Category() Category {
	if c.NudgeCategory == "" {
		return CategoryReadiness
	}
	return c.NudgeCategory
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-like timestamp. It returns nil for empty or
// unparseable input so that bad data reads as "never happened".
func ParseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
