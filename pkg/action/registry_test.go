package action

import (
	"context"
	"errors"
	"testing"
)

// mockAction is a simple action implementation for testing
type mockAction struct {
	id     string
	name   string
	config ActionConfig
}

func (m *mockAction) ID() string   { return m.id }
func (m *mockAction) Name() string { return m.name }
func (m *mockAction) Execute(ctx context.Context, dispatch *Dispatch) error {
	return nil
}
func (m *mockAction) Config() ActionConfig { return m.config }

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()

	if registry == nil {
		t.Fatal("Expected non-nil registry")
	}

	if registry.Count() != 0 {
		t.Errorf("Expected empty registry, got count %d", registry.Count())
	}
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()
	action := &mockAction{
		id:     "banner",
		name:   "Banner",
		config: ActionConfig{ID: "banner", Enabled: true},
	}

	err := registry.Register(action)
	if err != nil {
		t.Fatalf("Failed to register action: %v", err)
	}

	if registry.Count() != 1 {
		t.Errorf("Expected count 1, got %d", registry.Count())
	}

	// Try to register same action again
	err = registry.Register(action)
	if err == nil {
		t.Error("Expected error when registering duplicate action")
	}

	if err := registry.Register(nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for nil action, got %v", err)
	}
}

func TestRegistry_Unregister(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&mockAction{id: "banner", config: ActionConfig{Enabled: true}})

	if err := registry.Unregister("banner"); err != nil {
		t.Fatalf("Failed to unregister action: %v", err)
	}
	if registry.Count() != 0 {
		t.Errorf("Expected empty registry, got count %d", registry.Count())
	}

	if err := registry.Unregister("banner"); !errors.Is(err, ErrActionNotFound) {
		t.Errorf("Expected ErrActionNotFound, got %v", err)
	}
}

func TestRegistry_GetEnabled(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&mockAction{id: "on", config: ActionConfig{Enabled: true}})
	registry.Register(&mockAction{id: "off", config: ActionConfig{Enabled: false}})

	if registry.Get("off") == nil {
		t.Error("Get should return disabled actions")
	}
	if registry.GetEnabled("off") != nil {
		t.Error("GetEnabled should hide disabled actions")
	}
	if registry.GetEnabled("on") == nil {
		t.Error("GetEnabled should return enabled actions")
	}
	if registry.GetEnabled("missing") != nil {
		t.Error("Expected nil for missing action")
	}

	if n := len(registry.GetAll()); n != 2 {
		t.Errorf("Expected 2 actions, got %d", n)
	}
	if n := len(registry.GetAllEnabled()); n != 1 {
		t.Errorf("Expected 1 enabled action, got %d", n)
	}
}

func TestRegistry_IDs(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&mockAction{id: "whatsapp", config: ActionConfig{Enabled: true}})
	registry.Register(&mockAction{id: "banner", config: ActionConfig{Enabled: true}})

	ids := registry.IDs()
	if len(ids) != 2 || ids[0] != "banner" || ids[1] != "whatsapp" {
		t.Errorf("Expected sorted ids [banner whatsapp], got %v", ids)
	}
}

func TestActionConfig_Parameters(t *testing.T) {
	config := ActionConfig{
		Parameters: map[string]interface{}{
			"count":    3,
			"ratio":    2.0,
			"language": "id",
			"empty":    "",
			"enabled":  true,
			"templates": map[string]interface{}{
				"first_brand_visit": "brand_visit_v2",
				"ignored":           7,
			},
		},
	}

	if got := config.GetParameterInt("count", 0); got != 3 {
		t.Errorf("GetParameterInt(count) = %d", got)
	}
	if got := config.GetParameterInt("ratio", 0); got != 2 {
		t.Errorf("GetParameterInt(ratio) = %d", got)
	}
	if got := config.GetParameterString("language", "en"); got != "id" {
		t.Errorf("GetParameterString(language) = %q", got)
	}
	if got := config.GetParameterString("empty", "en"); got != "en" {
		t.Errorf("empty string should fall back to default, got %q", got)
	}
	if !config.GetParameterBool("enabled", false) {
		t.Error("GetParameterBool(enabled) = false")
	}

	templates := config.GetParameterStringMap("templates")
	if len(templates) != 1 || templates["first_brand_visit"] != "brand_visit_v2" {
		t.Errorf("GetParameterStringMap(templates) = %v", templates)
	}
	if len(config.GetParameterStringMap("missing")) != 0 {
		t.Error("missing map should be empty")
	}
}
