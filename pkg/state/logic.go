// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import (
	"time"

	"github.com/AccelByte/extend-creator-nudge/pkg/nudge"
	"github.com/sirupsen/logrus"
)

const (
	// VisitWindow is how long a brand visit counts toward the burst counter
	VisitWindow = 24 * time.Hour
	// ActivityWindow is how recently a creator must have posted to count as active
	ActivityWindow = 14 * 24 * time.Hour
)

// touch marks creator-initiated activity
func touch(state *CreatorState, now time.Time) {
	if now.After(state.LastActiveAt) {
		state.LastActiveAt = now
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// ApplySignUp records the creator's sign up. Repeated sign up events keep the first time.
func ApplySignUp(state *CreatorState, now time.Time) {
	if state.SignedUpAt.IsZero() {
		state.SignedUpAt = now
	}
	touch(state, now)
}

// ApplyContact stores the delivery contact details. Empty values are ignored.
func ApplyContact(state *CreatorState, phone, locale string) {
	if phone != "" {
		state.Phone = phone
	}
	if locale != "" {
		state.Locale = locale
	}
}

// ApplyBrandVisit records a brand viewing the creator's profile.
// Visits older than VisitWindow are pruned from the burst list.
func ApplyBrandVisit(state *CreatorState, now time.Time) {
	pruneVisits(state, now)
	state.Visits.Recent = append(state.Visits.Recent, now)
	state.Visits.Lifetime++
	if state.Visits.FirstAt == nil {
		state.Visits.FirstAt = timePtr(now)
	}

	logrus.Debugf("brand visit recorded for creator %s: %d in window, %d lifetime",
		state.CreatorID, len(state.Visits.Recent), state.Visits.Lifetime)
}

func pruneVisits(state *CreatorState, now time.Time) {
	kept := state.Visits.Recent[:0]
	for _, v := range state.Visits.Recent {
		if now.Sub(v) < VisitWindow {
			kept = append(kept, v)
		}
	}
	state.Visits.Recent = kept
}

// VisitCount24h returns the number of brand visits inside VisitWindow.
func VisitCount24h(state *CreatorState, now time.Time) int {
	count := 0
	for _, v := range state.Visits.Recent {
		if now.Sub(v) < VisitWindow {
			count++
		}
	}
	return count
}

// ApplyRequestReceived records a brand sending the creator a collaboration request.
// An unanswered request counts as a pending offer.
func ApplyRequestReceived(state *CreatorState, now time.Time) {
	state.Deals.RequestsReceived++
	if state.Deals.FirstRequestAt == nil {
		state.Deals.FirstRequestAt = timePtr(now)
	}
	state.Deals.PendingOffers++
}

// ApplyRequestSubmitted records the creator reaching out to a brand.
func ApplyRequestSubmitted(state *CreatorState, now time.Time) {
	state.Deals.RequestsSubmitted++
	state.Deals.LastRequestSubmittedAt = timePtr(now)
	touch(state, now)
}

// ApplyOfferReceived records a concrete offer landing in the creator's inbox.
func ApplyOfferReceived(state *CreatorState, now time.Time) {
	state.Deals.PendingOffers++
	state.Deals.OfferReceivedAt = timePtr(now)
}

// ApplyDealAccepted moves one pending offer into an active collaboration and
// flips the first-deal milestone.
func ApplyDealAccepted(state *CreatorState, now time.Time) {
	if state.Deals.PendingOffers > 0 {
		state.Deals.PendingOffers--
	}
	state.Deals.ActiveCollaborations++
	state.Deals.AcceptedAt = timePtr(now)
	MarkFirstDealAccepted(state)
	touch(state, now)
}

// MarkFirstDealAccepted sets the milestone flag. There is no way to unset it.
func MarkFirstDealAccepted(state *CreatorState) {
	if !state.Deals.HasAcceptedFirstDeal {
		logrus.Infof("creator %s passed the first deal milestone", state.CreatorID)
	}
	state.Deals.HasAcceptedFirstDeal = true
}

// ApplyDealCompleted closes one active collaboration.
// Returns true when this is the creator's first completed deal.
func ApplyDealCompleted(state *CreatorState, now time.Time) bool {
	if state.Deals.ActiveCollaborations > 0 {
		state.Deals.ActiveCollaborations--
	}
	state.Deals.Completed++
	// A completed deal implies an accepted one, even if the accept event was missed.
	MarkFirstDealAccepted(state)
	touch(state, now)
	return state.Deals.Completed == 1
}

// ApplyProfileUpdate records a profile edit and any flags it changed.
func ApplyProfileUpdate(state *CreatorState, update ProfileUpdate, now time.Time) {
	state.Profile.UpdatedAt = timePtr(now)
	if update.HasAudienceInsights != nil {
		state.Profile.HasAudienceInsights = *update.HasAudienceInsights
	}
	if update.AvailabilitySet != nil {
		state.Profile.AvailabilitySet = *update.AvailabilitySet
	}
	if update.HasMediaKit != nil {
		state.Profile.HasMediaKit = *update.HasMediaKit
	}
	touch(state, now)
}

// ApplyContentPosted records the creator publishing content.
func ApplyContentPosted(state *CreatorState, now time.Time) {
	state.Profile.LastPostedAt = timePtr(now)
	touch(state, now)
}

// ApplyNudgeDismissed counts a dismissed nudge toward the silent period.
func ApplyNudgeDismissed(state *CreatorState, now time.Time) {
	state.Engagement.IgnoredCount++
	state.Engagement.LastIgnoredAt = timePtr(now)

	logrus.Debugf("creator %s dismissed a nudge (%d ignored)", state.CreatorID, state.Engagement.IgnoredCount)
}

// ApplyNudgeOpened resets the ignore streak.
func ApplyNudgeOpened(state *CreatorState, now time.Time) {
	state.Engagement.IgnoredCount = 0
	touch(state, now)
}

// RecordNudgeSent keeps a best-effort copy of the last send per key.
// The history store remains authoritative.
func RecordNudgeSent(state *CreatorState, key string, now time.Time) {
	if state.Engagement.RecentNudges == nil {
		state.Engagement.RecentNudges = make(map[string]time.Time)
	}
	state.Engagement.RecentNudges[key] = now
}

// RecentNudgeAt returns the cached last send of key, or nil.
func RecentNudgeAt(state *CreatorState, key string) *time.Time {
	t, ok := state.Engagement.RecentNudges[key]
	if !ok || t.IsZero() {
		return nil
	}
	return timePtr(t)
}

// MissingSignal returns the first profile signal the creator lacks, checked in
// the order audience, activity, collab setup, campaign readiness.
func MissingSignal(state *CreatorState, now time.Time) nudge.MissingSignal {
	switch {
	case !state.Profile.HasAudienceInsights:
		return nudge.MissingAudience
	case state.Profile.LastPostedAt == nil || now.Sub(*state.Profile.LastPostedAt) >= ActivityWindow:
		return nudge.MissingActivity
	case !state.Profile.AvailabilitySet:
		return nudge.MissingCollabSetup
	case !state.Profile.HasMediaKit:
		return nudge.MissingCampaignReady
	}
	return nudge.MissingNone
}
