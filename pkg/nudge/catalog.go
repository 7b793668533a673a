// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package nudge

import (
	"fmt"
	"sort"
)

var (
	beginnerKeys = map[string]bool{
		KeyPostSignupWelcome:    true,
		KeyFirstBrandVisit:      true,
		KeySecondVisitNoRequest: true,
		KeyInactive7d:           true,
	}

	dealKeys = map[string]bool{
		KeyFirstRequest:       true,
		KeyFirstDealCompleted: true,
	}
)

// IsBeginnerEvent reports whether key belongs to the beginner/readiness set
// that is retired by the milestone lock.
func IsBeginnerEvent(key string) bool {
	return beginnerKeys[key]
}

// IsDealEvent reports whether key is a deal event. Deal events bypass the
// pending-offer, recent-activity and active-collaboration overrides.
func IsDealEvent(key string) bool {
	return dealKeys[key]
}

// Catalog is a read-only mapping from event key to NudgeRule.
// Build it once at startup and share it by reference; it has no mutators.
type Catalog struct {
	rules map[string]NudgeRule
}

// NewCatalog validates the rules and returns a catalog holding copies of them.
func NewCatalog(rules ...NudgeRule) (*Catalog, error) {
	c := &Catalog{rules: make(map[string]NudgeRule, len(rules))}

	for _, r := range rules {
		if r.Key == "" {
			return nil, fmt.Errorf("nudge rule with empty key")
		}
		if _, exists := c.rules[r.Key]; exists {
			return nil, fmt.Errorf("duplicate nudge rule key: %s", r.Key)
		}
		if len(r.Channels) == 0 {
			return nil, fmt.Errorf("nudge rule %s has no channels", r.Key)
		}
		for _, ch := range r.Channels {
			if !ch.Valid() {
				return nil, fmt.Errorf("nudge rule %s has unknown channel %q", r.Key, ch)
			}
		}
		if r.DelayHours < 0 || r.CooldownHours < 0 {
			return nil, fmt.Errorf("nudge rule %s has negative delay or cooldown", r.Key)
		}
		c.rules[r.Key] = r.clone()
	}

	return c, nil
}

// Get returns a copy of the rule for key.
func (c *Catalog) Get(key string) (NudgeRule, bool) {
	if c == nil {
		return NudgeRule{}, false
	}
	r, ok := c.rules[key]
	if !ok {
		return NudgeRule{}, false
	}
	return r.clone(), true
}

// Keys returns the catalog keys in lexicographic order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.rules))
	for k := range c.rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Channels returns every channel used by at least one rule.
func (c *Catalog) Channels() []Channel {
	seen := make(map[Channel]bool)
	var out []Channel
	for _, k := range c.Keys() {
		for _, ch := range c.rules[k].Channels {
			if !seen[ch] {
				seen[ch] = true
				out = append(out, ch)
			}
		}
	}
	return out
}

// Len returns the number of rules.
func (c *Catalog) Len() int {
	return len(c.rules)
}

// DefaultRules returns the built-in rule set.
func DefaultRules() []NudgeRule {
	return []NudgeRule{
		{
			Key:           KeyPostSignupWelcome,
			Priority:      PriorityMedium,
			DelayHours:    1,
			Channels:      []Channel{ChannelInApp},
			CooldownHours: 72,
			Title:         "Welcome aboard",
			Message:       "Finish setting up your profile so brands can discover you.",
		},
		{
			Key:           KeyFirstBrandVisit,
			Priority:      PriorityHigh,
			DelayHours:    0,
			Channels:      []Channel{ChannelInApp, ChannelWhatsApp},
			CooldownHours: 24,
			Title:         "A brand just viewed your profile",
			Message:       "A brand checked out your profile. Make sure it shows your best work.",
		},
		{
			Key:           KeySecondVisitNoRequest,
			Priority:      PriorityHigh,
			DelayHours:    2,
			Channels:      []Channel{ChannelInApp, ChannelWhatsApp},
			CooldownHours: 48,
			Title:         "Brands keep coming back",
			Message:       "Brands have visited more than once but haven't reached out yet. A few profile tweaks can change that.",
		},
		{
			Key:           KeyFirstRequest,
			Priority:      PriorityHigh,
			DelayHours:    0,
			Channels:      []Channel{ChannelInApp, ChannelWhatsApp},
			CooldownHours: 12,
			Title:         "You have a collaboration request",
			Message:       "A brand wants to work with you. Review the request before it expires.",
		},
		{
			Key:           KeyFirstDealCompleted,
			Priority:      PriorityPositive,
			DelayHours:    0,
			Channels:      []Channel{ChannelInApp},
			CooldownHours: 168,
			Title:         "First deal done!",
			Message:       "Congrats on completing your first deal. Ask the brand for a testimonial while it's fresh.",
		},
		{
			Key:           KeyInactive7d,
			Priority:      PriorityLow,
			DelayHours:    168,
			Channels:      []Channel{ChannelWhatsApp},
			CooldownHours: 168,
			Title:         "We miss you",
			Message:       "It's been a week. Brands are browsing, so keep your profile fresh.",
		},
	}
}

// DefaultCatalog returns a catalog built from DefaultRules.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultRules()...)
	if err != nil {
		panic(fmt.Sprintf("invalid default nudge catalog: %v", err))
	}
	return c
}
