// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import (
	"time"
)

// CreatorState is the service-owned projection of a creator's lifecycle.
// It is rebuilt from lifecycle events and read back when building nudge contexts.
type CreatorState struct {
	CreatorID    string          `json:"creatorId"`
	Phone        string          `json:"phone,omitempty"`
	Locale       string          `json:"locale,omitempty"`
	SignedUpAt   time.Time       `json:"signedUpAt"`
	LastActiveAt time.Time       `json:"lastActiveAt"`
	Profile      ProfileState    `json:"profile"`
	Visits       VisitState      `json:"visits"`
	Deals        DealState       `json:"deals"`
	Engagement   EngagementState `json:"engagement"`
}

// ProfileState tracks the profile signals that drive message personalization
type ProfileState struct {
	UpdatedAt           *time.Time `json:"updatedAt,omitempty"`
	LastPostedAt        *time.Time `json:"lastPostedAt,omitempty"`
	HasAudienceInsights bool       `json:"hasAudienceInsights"`
	AvailabilitySet     bool       `json:"availabilitySet"`
	HasMediaKit         bool       `json:"hasMediaKit"`
}

// VisitState tracks brand profile visits
type VisitState struct {
	Recent   []time.Time `json:"recent"`
	Lifetime int         `json:"lifetime"`
	FirstAt  *time.Time  `json:"firstAt,omitempty"`
}

// DealState tracks requests, offers and collaborations
type DealState struct {
	RequestsReceived       int        `json:"requestsReceived"`
	FirstRequestAt         *time.Time `json:"firstRequestAt,omitempty"`
	RequestsSubmitted      int        `json:"requestsSubmitted"`
	LastRequestSubmittedAt *time.Time `json:"lastRequestSubmittedAt,omitempty"`
	PendingOffers          int        `json:"pendingOffers"`
	OfferReceivedAt        *time.Time `json:"offerReceivedAt,omitempty"`
	ActiveCollaborations   int        `json:"activeCollaborations"`
	AcceptedAt             *time.Time `json:"acceptedAt,omitempty"`
	Completed              int        `json:"completed"`
	// HasAcceptedFirstDeal never goes back to false once set.
	HasAcceptedFirstDeal bool `json:"hasAcceptedFirstDeal"`
}

// EngagementState tracks how the creator reacts to nudges
type EngagementState struct {
	IgnoredCount  int                  `json:"ignoredCount"`
	LastIgnoredAt *time.Time           `json:"lastIgnoredAt,omitempty"`
	RecentNudges  map[string]time.Time `json:"recentNudges"`
}

// ProfileUpdate carries the optional profile flags of a profile_updated event.
// Nil fields are left unchanged.
type ProfileUpdate struct {
	HasAudienceInsights *bool
	AvailabilitySet     *bool
	HasMediaKit         *bool
}

// NewCreatorState returns an empty state for a creator seen for the first time.
func NewCreatorState(creatorID string) *CreatorState {
	return &CreatorState{
		CreatorID: creatorID,
		Visits: VisitState{
			Recent: []time.Time{},
		},
		Engagement: EngagementState{
			RecentNudges: make(map[string]time.Time),
		},
	}
}
