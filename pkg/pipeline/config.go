package pipeline

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/AccelByte/extend-creator-nudge/pkg/action"
	"github.com/AccelByte/extend-creator-nudge/pkg/nudge"
	"gopkg.in/yaml.v3"
)

// DefaultMaxPendingAge is how long a deferred candidate may wait before it is dropped.
const DefaultMaxPendingAge = 14 * 24 * time.Hour

// Config represents the complete nudge pipeline configuration.
type Config struct {
	Limits    nudge.Limits      `yaml:"limits"`
	Nudges    []NudgeConfig     `yaml:"nudges"`
	Channels  map[string]string `yaml:"channels"` // Channel → action ID
	Actions   []ActionConfig    `yaml:"actions"`
	Scheduler SchedulerConfig   `yaml:"scheduler"`
}

// NudgeConfig overrides fields of a built-in nudge rule. Unset fields keep
// the built-in value.
type NudgeConfig struct {
	Key           string   `yaml:"key"`
	Priority      string   `yaml:"priority,omitempty"`
	DelayHours    *int     `yaml:"delay_hours,omitempty"`
	CooldownHours *int     `yaml:"cooldown_hours,omitempty"`
	Channels      []string `yaml:"channels,omitempty"`
	Title         string   `yaml:"title,omitempty"`
	Message       string   `yaml:"message,omitempty"`
	Rank          *int     `yaml:"rank,omitempty"` // Tie-break rank, higher wins
}

// ActionConfig represents an action configuration entry.
type ActionConfig struct {
	ID         string                 `yaml:"id"`
	Type       string                 `yaml:"type"`
	Enabled    bool                   `yaml:"enabled"`
	Parameters map[string]interface{} `yaml:"parameters,omitempty"`
}

// SchedulerConfig controls how long candidates may stay pending.
type SchedulerConfig struct {
	MaxPendingAge time.Duration `yaml:"max_pending_age"`
}

// DefaultConfig returns the configuration used when no file is given:
// built-in rules, default limits, and one builtin action per channel.
func DefaultConfig() *Config {
	return &Config{
		Limits: nudge.DefaultLimits(),
		Channels: map[string]string{
			string(nudge.ChannelInApp):    "in_app_banner",
			string(nudge.ChannelWhatsApp): "whatsapp_template",
		},
		Actions: []ActionConfig{
			{ID: "in_app_banner", Type: "in_app_banner", Enabled: true},
			{ID: "whatsapp_template", Type: "whatsapp_template", Enabled: true},
		},
		Scheduler: SchedulerConfig{MaxPendingAge: DefaultMaxPendingAge},
	}
}

// LoadConfig loads pipeline configuration from a YAML file.
// Supports environment variable expansion in the form ${VAR_NAME} or ${VAR_NAME:default}.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses and validates YAML configuration. Missing limits and
// scheduler fields keep their defaults.
func ParseConfig(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	config := Config{
		Limits:    nudge.DefaultLimits(),
		Scheduler: SchedulerConfig{MaxPendingAge: DefaultMaxPendingAge},
	}
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration for common errors.
func (c *Config) Validate() error {
	if err := validateLimits(c.Limits); err != nil {
		return err
	}
	if c.Scheduler.MaxPendingAge < 0 {
		return fmt.Errorf("scheduler.max_pending_age must not be negative")
	}

	known := make(map[string]bool)
	for _, r := range nudge.DefaultRules() {
		known[r.Key] = true
	}

	// Check nudge overrides
	seen := make(map[string]bool)
	for _, n := range c.Nudges {
		if !known[n.Key] {
			return fmt.Errorf("unknown nudge key: %q", n.Key)
		}
		if seen[n.Key] {
			return fmt.Errorf("duplicate nudge key: %s", n.Key)
		}
		seen[n.Key] = true

		if n.Priority != "" && !validPriority(nudge.Priority(n.Priority)) {
			return fmt.Errorf("nudge %s has unknown priority %q", n.Key, n.Priority)
		}
		for _, ch := range n.Channels {
			if !nudge.Channel(ch).Valid() {
				return fmt.Errorf("nudge %s has unknown channel %q", n.Key, ch)
			}
		}
	}

	// Check for duplicate action IDs
	actionIDs := make(map[string]bool)
	for _, a := range c.Actions {
		if a.ID == "" {
			return fmt.Errorf("action with empty ID found")
		}
		if actionIDs[a.ID] {
			return fmt.Errorf("duplicate action ID: %s", a.ID)
		}
		actionIDs[a.ID] = true

		if a.Type == "" {
			return fmt.Errorf("action %s has empty type", a.ID)
		}
	}

	// Validate that channel mappings point at known actions
	for ch, actionID := range c.Channels {
		if !nudge.Channel(ch).Valid() {
			return fmt.Errorf("unknown channel in channels mapping: %q", ch)
		}
		if !actionIDs[actionID] {
			return fmt.Errorf("channel %s references unknown action: %s", ch, actionID)
		}
	}

	// Every channel a rule can use needs an action
	catalog, err := c.BuildCatalog()
	if err != nil {
		return err
	}
	for _, ch := range catalog.Channels() {
		if _, ok := c.Channels[string(ch)]; !ok {
			return fmt.Errorf("channel %s is used by the catalog but has no action", ch)
		}
	}

	return nil
}

func validateLimits(l nudge.Limits) error {
	if l.SilentPeriod < 0 || l.RecentActivityWindow < 0 || l.VisitBurstWindow < 0 {
		return fmt.Errorf("limits windows must not be negative")
	}
	if l.SilentPeriodIgnores < 1 {
		return fmt.Errorf("limits.silent_period_ignores must be at least 1")
	}
	if l.WhatsAppWeeklyCeiling < 0 {
		return fmt.Errorf("limits.whatsapp_weekly_ceiling must not be negative")
	}
	return nil
}

func validPriority(p nudge.Priority) bool {
	switch p {
	case nudge.PriorityHigh, nudge.PriorityMedium, nudge.PriorityLow, nudge.PriorityPositive:
		return true
	}
	return false
}

// BuildCatalog applies the nudge overrides to the built-in rules.
func (c *Config) BuildCatalog() (*nudge.Catalog, error) {
	overrides := make(map[string]NudgeConfig, len(c.Nudges))
	for _, n := range c.Nudges {
		overrides[n.Key] = n
	}

	rules := nudge.DefaultRules()
	for i := range rules {
		n, ok := overrides[rules[i].Key]
		if !ok {
			continue
		}
		if n.Priority != "" {
			rules[i].Priority = nudge.Priority(n.Priority)
		}
		if n.DelayHours != nil {
			rules[i].DelayHours = *n.DelayHours
		}
		if n.CooldownHours != nil {
			rules[i].CooldownHours = *n.CooldownHours
		}
		if len(n.Channels) > 0 {
			rules[i].Channels = make([]nudge.Channel, len(n.Channels))
			for j, ch := range n.Channels {
				rules[i].Channels[j] = nudge.Channel(ch)
			}
		}
		if n.Title != "" {
			rules[i].Title = n.Title
		}
		if n.Message != "" {
			rules[i].Message = n.Message
		}
	}

	catalog, err := nudge.NewCatalog(rules...)
	if err != nil {
		return nil, fmt.Errorf("failed to build nudge catalog: %w", err)
	}
	return catalog, nil
}

// BuildResolver applies rank overrides to the default ranking.
func (c *Config) BuildResolver() *nudge.Resolver {
	base := nudge.DefaultResolver()
	ranks := make(map[string]int)
	for _, r := range nudge.DefaultRules() {
		ranks[r.Key] = base.Rank(r.Key)
	}
	for _, n := range c.Nudges {
		if n.Rank != nil {
			ranks[n.Key] = *n.Rank
		}
	}
	return nudge.NewResolver(ranks)
}

// Routes returns the channel → action ID mapping.
func (c *Config) Routes() map[nudge.Channel]string {
	routes := make(map[nudge.Channel]string, len(c.Channels))
	for ch, actionID := range c.Channels {
		routes[nudge.Channel(ch)] = actionID
	}
	return routes
}

// ActionConfigs converts the action entries for the action factory.
func (c *Config) ActionConfigs() []action.ActionConfig {
	result := make([]action.ActionConfig, len(c.Actions))
	for i, ac := range c.Actions {
		result[i] = action.ActionConfig{
			ID:         ac.ID,
			Type:       ac.Type,
			Enabled:    ac.Enabled,
			Parameters: ac.Parameters,
		}
	}
	return result
}

// ReplaceActionType swaps the type of every action of type from to to and
// returns how many were changed. Parameters are kept.
func (c *Config) ReplaceActionType(from, to string) int {
	n := 0
	for i := range c.Actions {
		if c.Actions[i].Type == from {
			c.Actions[i].Type = to
			n++
		}
	}
	return n
}

// ChannelNames returns the configured channels in sorted order.
func (c *Config) ChannelNames() []string {
	names := make([]string, 0, len(c.Channels))
	for ch := range c.Channels {
		names = append(names, ch)
	}
	sort.Strings(names)
	return names
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		// Support ${VAR:default} syntax
		parts := strings.SplitN(key, ":", 2)
		varName := parts[0]
		defaultValue := ""
		if len(parts) == 2 {
			defaultValue = parts[1]
		}

		value := os.Getenv(varName)
		if value == "" {
			return defaultValue
		}
		return value
	})
}
