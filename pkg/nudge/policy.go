package nudge

import "time"

// Reason identifies the gate that vetoed a nudge.
type Reason string

const (
	ReasonUnknownRule         Reason = "unknown_rule"
	ReasonSilentPeriod        Reason = "silent_period"
	ReasonAlreadyHandled      Reason = "already_handled"
	ReasonCooldown            Reason = "cooldown"
	ReasonPendingOffer        Reason = "pending_offer"
	ReasonRecentActivity      Reason = "recent_activity"
	ReasonActiveCollaboration Reason = "active_collaboration"
	ReasonVisitBurst          Reason = "visit_burst"
	ReasonMilestoneLock       Reason = "milestone_lock"
	ReasonChannelCap          Reason = "channel_cap"
)

// Permanent reports whether the veto cannot lift with time alone, so a
// pending candidate carrying it can be dropped.
func (r Reason) Permanent() bool {
	switch r {
	case ReasonUnknownRule, ReasonAlreadyHandled, ReasonMilestoneLock:
		return true
	}
	return false
}

type gate struct {
	reason Reason
	veto   func(l Limits, rule NudgeRule, c CollabNudgeContext, now time.Time) bool
}

// suppressionGates run after the silent period and cooldown checks, in order.
var suppressionGates = []gate{
	{ReasonPendingOffer, pendingOfferVeto},
	{ReasonRecentActivity, recentActivityVeto},
	{ReasonActiveCollaboration, activeCollaborationVeto},
	{ReasonVisitBurst, visitBurstVeto},
	{ReasonMilestoneLock, milestoneLockVeto},
	{ReasonChannelCap, channelCapVeto},
}

func (e *Engine) suppress(rule NudgeRule, c CollabNudgeContext, now time.Time) Reason {
	// The silent period outranks every other signal, deal events included.
	if c.IgnoredNudgesCount >= e.limits.SilentPeriodIgnores && within(c.LastIgnoredAt, now, e.limits.SilentPeriod) {
		return ReasonSilentPeriod
	}

	if reason := cooldownReason(rule, c, now); reason != "" {
		return reason
	}

	for _, g := range suppressionGates {
		if g.veto(e.limits, rule, c, now) {
			return g.reason
		}
	}
	return ""
}

func cooldownReason(rule NudgeRule, c CollabNudgeContext, now time.Time) Reason {
	if c.AlreadyUpdated || c.RequestSubmitted || c.DealInProgress {
		return ReasonAlreadyHandled
	}

	last := c.EffectiveLastSend()
	if last == nil {
		return ""
	}
	if now.Sub(*last) >= rule.Cooldown() {
		return ""
	}
	return ReasonCooldown
}

func pendingOfferVeto(_ Limits, rule NudgeRule, c CollabNudgeContext, _ time.Time) bool {
	return c.PendingOfferCount > 0 && !IsDealEvent(rule.Key)
}

func recentActivityVeto(l Limits, rule NudgeRule, c CollabNudgeContext, now time.Time) bool {
	if IsDealEvent(rule.Key) {
		return false
	}
	return within(c.ProfileUpdatedAt, now, l.RecentActivityWindow) ||
		within(c.DealAcceptedAt, now, l.RecentActivityWindow) ||
		within(c.OfferReceivedAt, now, l.RecentActivityWindow)
}

func activeCollaborationVeto(_ Limits, rule NudgeRule, c CollabNudgeContext, _ time.Time) bool {
	return c.ActiveCollaborationsCount > 0 &&
		c.Category() == CategoryReadiness &&
		!IsDealEvent(rule.Key)
}

func visitBurstVeto(l Limits, rule NudgeRule, c CollabNudgeContext, now time.Time) bool {
	if rule.Key != KeyFirstBrandVisit || c.BrandVisitCount24h <= 1 {
		return false
	}
	return within(c.EffectiveLastSend(), now, l.VisitBurstWindow)
}

func milestoneLockVeto(_ Limits, rule NudgeRule, c CollabNudgeContext, _ time.Time) bool {
	return c.HasAcceptedFirstDeal && IsBeginnerEvent(rule.Key)
}

func channelCapVeto(l Limits, rule NudgeRule, c CollabNudgeContext, _ time.Time) bool {
	return rule.HasChannel(ChannelWhatsApp) && c.ChannelsSentLast7d[ChannelWhatsApp] >= l.WhatsAppWeeklyCeiling
}

// within reports whether t lies less than window before now. A nil t is
// treated as infinitely long ago.
func within(t *time.Time, now time.Time, window time.Duration) bool {
	if t == nil {
		return false
	}
	return now.Sub(*t) < window
}
