package pipeline

import (
	"fmt"
	"strings"

	"github.com/AccelByte/extend-creator-nudge/pkg/action"
	"github.com/AccelByte/extend-creator-nudge/pkg/nudge"
)

// ValidateWiring validates that the pipeline is correctly wired.
// It checks that:
// - All enabled actions in config have registered instances
// - Every channel used by the catalog routes to an enabled, registered action
//
// This catches common mistakes like:
// - Forgetting to register an action type factory
// - Typos in action IDs or types
// - Routing a channel to a disabled action
func ValidateWiring(catalog *nudge.Catalog, actionRegistry *action.Registry, config *Config) error {
	var errors []string

	// Check that every enabled action in config has a registered instance
	for _, ac := range config.Actions {
		if !ac.Enabled {
			continue
		}

		if actionRegistry.Get(ac.ID) == nil {
			errors = append(errors, fmt.Sprintf("action '%s' (type=%s) is enabled in config but not registered", ac.ID, ac.Type))
		}
	}

	// Check that every catalog channel can be delivered
	routes := config.Routes()
	for _, ch := range catalog.Channels() {
		actionID, ok := routes[ch]
		if !ok {
			errors = append(errors, fmt.Sprintf("channel '%s' is used by the catalog but has no action", ch))
			continue
		}
		if actionRegistry.GetEnabled(actionID) == nil {
			errors = append(errors, fmt.Sprintf("channel '%s' routes to action '%s' which is not registered or disabled", ch, actionID))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("pipeline wiring validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}
