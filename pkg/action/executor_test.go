package action

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AccelByte/extend-creator-nudge/pkg/nudge"
)

// testAction is a simple action for testing
type testAction struct {
	id             string
	name           string
	config         ActionConfig
	executeFunc    func(ctx context.Context, dispatch *Dispatch) error
	executeCalled  bool
	lastDispatch   *Dispatch
}

func (a *testAction) ID() string           { return a.id }
func (a *testAction) Name() string         { return a.name }
func (a *testAction) Config() ActionConfig { return a.config }

func (a *testAction) Execute(ctx context.Context, dispatch *Dispatch) error {
	a.executeCalled = true
	a.lastDispatch = dispatch
	if a.executeFunc != nil {
		return a.executeFunc(ctx, dispatch)
	}
	return nil
}

func newTestDispatch() *Dispatch {
	rule, _ := nudge.DefaultCatalog().Get(nudge.KeyFirstBrandVisit)
	return NewDispatch("creator-1", rule, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
}

func TestNewExecutor(t *testing.T) {
	registry := NewRegistry()
	executor := NewExecutor(registry)

	if executor == nil {
		t.Fatal("Expected non-nil executor")
	}

	if executor.GetRegistry() != registry {
		t.Error("Expected executor to use provided registry")
	}
}

func TestNewDispatch(t *testing.T) {
	d := newTestDispatch()
	if d.ID == "" {
		t.Error("Expected dispatch id to be generated")
	}
	if other := newTestDispatch(); other.ID == d.ID {
		t.Error("Expected unique dispatch ids")
	}

	bound := d.OnChannel(nudge.ChannelWhatsApp)
	if bound.Channel != nudge.ChannelWhatsApp {
		t.Errorf("Expected whatsapp channel, got %s", bound.Channel)
	}
	if d.Channel != "" {
		t.Error("OnChannel must not modify the original dispatch")
	}
	if bound.ID != d.ID {
		t.Error("OnChannel should keep the dispatch id")
	}
}

func TestExecutor_Execute_Success(t *testing.T) {
	registry := NewRegistry()
	executor := NewExecutor(registry)

	action := &testAction{
		id:     "banner",
		name:   "Banner",
		config: ActionConfig{ID: "banner", Enabled: true},
	}
	registry.Register(action)

	d := newTestDispatch().OnChannel(nudge.ChannelInApp)
	result, err := executor.Execute(context.Background(), "banner", d)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !result.Success {
		t.Error("Expected successful result")
	}
	if result.Channel != nudge.ChannelInApp {
		t.Errorf("Expected in_app channel on result, got %s", result.Channel)
	}
	if result.Metadata["dispatch_id"] != d.ID {
		t.Errorf("Expected dispatch id in metadata, got %v", result.Metadata["dispatch_id"])
	}
	if !action.executeCalled {
		t.Error("Expected action to be executed")
	}
}

func TestExecutor_Execute_NotFoundOrDisabled(t *testing.T) {
	registry := NewRegistry()
	executor := NewExecutor(registry)
	registry.Register(&testAction{id: "off", config: ActionConfig{Enabled: false}})

	for _, id := range []string{"missing", "off"} {
		_, err := executor.Execute(context.Background(), id, newTestDispatch())
		if !errors.Is(err, ErrActionNotFound) {
			t.Errorf("Execute(%s) error = %v, expected ErrActionNotFound", id, err)
		}
	}
}

func TestExecutor_Execute_Failure(t *testing.T) {
	registry := NewRegistry()
	executor := NewExecutor(registry)

	sendErr := errors.New("provider down")
	registry.Register(&testAction{
		id:          "whatsapp",
		config:      ActionConfig{Enabled: true},
		executeFunc: func(ctx context.Context, d *Dispatch) error { return sendErr },
	})

	result, err := executor.Execute(context.Background(), "whatsapp", newTestDispatch())
	if !errors.Is(err, sendErr) {
		t.Fatalf("Expected provider error, got %v", err)
	}
	if result == nil || result.Success {
		t.Error("Expected failed result")
	}
}

func TestExecutor_ExecuteMultiple_ContinuesPastFailure(t *testing.T) {
	registry := NewRegistry()
	executor := NewExecutor(registry)

	banner := &testAction{id: "banner", config: ActionConfig{Enabled: true}}
	whatsapp := &testAction{
		id:          "whatsapp",
		config:      ActionConfig{Enabled: true},
		executeFunc: func(ctx context.Context, d *Dispatch) error { return errors.New("rejected") },
	}
	registry.Register(banner)
	registry.Register(whatsapp)

	routes := []Route{
		{Channel: nudge.ChannelWhatsApp, ActionID: "whatsapp"},
		{Channel: nudge.ChannelInApp, ActionID: "banner"},
	}
	results, err := executor.ExecuteMultiple(context.Background(), routes, newTestDispatch())
	if err == nil {
		t.Fatal("Expected joined error for the failed channel")
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Success || !results[1].Success {
		t.Errorf("Unexpected results: %+v %+v", results[0], results[1])
	}
	if banner.lastDispatch == nil || banner.lastDispatch.Channel != nudge.ChannelInApp {
		t.Error("Expected banner to receive an in_app dispatch")
	}
	if !whatsapp.executeCalled {
		t.Error("Expected whatsapp to be attempted")
	}
}

func TestExecutor_ExecuteMultiple_AllSucceed(t *testing.T) {
	registry := NewRegistry()
	executor := NewExecutor(registry)
	registry.Register(&testAction{id: "banner", config: ActionConfig{Enabled: true}})

	results, err := executor.ExecuteMultiple(context.Background(),
		[]Route{{Channel: nudge.ChannelInApp, ActionID: "banner"}}, newTestDispatch())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(results) != 1 || !results[0].Success {
		t.Errorf("Unexpected results: %v", results)
	}
}
