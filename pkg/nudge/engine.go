// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package nudge

import (
	"time"
)

// Limits holds the fixed windows and ceilings used by the suppression policy.
type Limits struct {
	SilentPeriod          time.Duration `yaml:"silent_period"`
	SilentPeriodIgnores   int           `yaml:"silent_period_ignores"`
	RecentActivityWindow  time.Duration `yaml:"recent_activity_window"`
	VisitBurstWindow      time.Duration `yaml:"visit_burst_window"`
	WhatsAppWeeklyCeiling int           `yaml:"whatsapp_weekly_ceiling"`
}

// DefaultLimits returns the standard thresholds: 3 ignores within 7 days
// silences a creator, activity and visit bursts use 24h windows, and
// WhatsApp is capped at 2 sends per rolling 7 days.
func DefaultLimits() Limits {
	return Limits{
		SilentPeriod:          7 * 24 * time.Hour,
		SilentPeriodIgnores:   3,
		RecentActivityWindow:  24 * time.Hour,
		VisitBurstWindow:      24 * time.Hour,
		WhatsAppWeeklyCeiling: 2,
	}
}

// Decision is the outcome of evaluating one context.
type Decision struct {
	Eligible bool
	// Rule is set only when Eligible, with the personalized message applied.
	Rule   *NudgeRule
	Reason Reason
}

// Engine evaluates nudge contexts against a catalog.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	catalog  *Catalog
	resolver *Resolver
	limits   Limits
	clock    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source. Defaults to time.Now.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithLimits overrides the suppression thresholds.
func WithLimits(limits Limits) Option {
	return func(e *Engine) {
		e.limits = limits
	}
}

// WithResolver overrides the priority ranking.
func WithResolver(resolver *Resolver) Option {
	return func(e *Engine) {
		if resolver != nil {
			e.resolver = resolver
		}
	}
}

// NewEngine creates an engine over catalog.
func NewEngine(catalog *Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:  catalog,
		resolver: DefaultResolver(),
		limits:   DefaultLimits(),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Limits returns the engine's suppression thresholds.
func (e *Engine) Limits() Limits {
	return e.limits
}

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time {
	return e.clock()
}

// ShouldSend is the cooldown-only check.
func (e *Engine) ShouldSend(c CollabNudgeContext) bool {
	rule, ok := e.catalog.Get(c.EventKey)
	if !ok {
		return false
	}
	return cooldownReason(rule, c, e.clock()) == ""
}

// CanSend is the full suppression-aware eligibility check.
func (e *Engine) CanSend(c CollabNudgeContext) bool {
	return e.Evaluate(c).Eligible
}

// Resolve returns the personalized rule ready for dispatch, or nil when the
// context is not eligible.
func (e *Engine) Resolve(c CollabNudgeContext) *NudgeRule {
	return e.Evaluate(c).Rule
}

// Evaluate runs every gate in order and reports the first veto.
func (e *Engine) Evaluate(c CollabNudgeContext) Decision {
	rule, ok := e.catalog.Get(c.EventKey)
	if !ok {
		return Decision{Reason: ReasonUnknownRule}
	}

	if reason := e.suppress(rule, c, e.clock()); reason != "" {
		return Decision{Reason: reason}
	}

	personalized := personalize(rule, c.MissingSignal)
	return Decision{Eligible: true, Rule: &personalized}
}

// Pick selects the single highest-ranked key among keys that were
// independently approved for the same creator.
func (e *Engine) Pick(keys []string) (string, bool) {
	return e.resolver.Pick(keys)
}
