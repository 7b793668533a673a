// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package nudge

import "time"

// Priority is the priority class of a nudge rule.
// It is a display/urgency class and is independent of the numeric rank
// used by the Resolver to break ties between eligible rules.
type Priority string

const (
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
	PriorityPositive Priority = "positive"
)

// Channel is a delivery channel a nudge may go out on.
type Channel string

const (
	ChannelInApp    Channel = "in_app"
	ChannelWhatsApp Channel = "whatsapp"
)

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	return c == ChannelInApp || c == ChannelWhatsApp
}

// Event keys known to the default catalog.
const (
	KeyPostSignupWelcome    = "post_signup_welcome"
	KeyFirstBrandVisit      = "first_brand_visit"
	KeySecondVisitNoRequest = "second_visit_no_request"
	KeyFirstRequest         = "first_request"
	KeyFirstDealCompleted   = "first_deal_completed"
	KeyInactive7d           = "inactive_7d"
)

// NudgeRule describes one nudge. Rules are immutable once placed in a Catalog;
// callers receive copies.
type NudgeRule struct {
	Key           string    `yaml:"key" json:"key"`
	Priority      Priority  `yaml:"priority" json:"priority"`
	DelayHours    int       `yaml:"delay_hours" json:"delayHours"`
	Channels      []Channel `yaml:"channels" json:"channels"`
	CooldownHours int       `yaml:"cooldown_hours" json:"cooldownHours"`
	Title         string    `yaml:"title" json:"title"`
	Message       string    `yaml:"message" json:"message"`
}

// HasChannel reports whether the rule may be delivered on ch.
func (r NudgeRule) HasChannel(ch Channel) bool {
	for _, c := range r.Channels {
		if c == ch {
			return true
		}
	}
	return false
}

// Delay returns DelayHours as a duration.
func (r NudgeRule) Delay() time.Duration {
	return time.Duration(r.DelayHours) * time.Hour
}

// Cooldown returns CooldownHours as a duration.
func (r NudgeRule) Cooldown() time.Duration {
	return time.Duration(r.CooldownHours) * time.Hour
}

func (r NudgeRule) clone() NudgeRule {
	out := r
	out.Channels = append([]Channel(nil), r.Channels...)
	return out
}
