package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/AccelByte/extend-creator-nudge/pkg/common"
	"github.com/AccelByte/extend-creator-nudge/pkg/nudge"
	"github.com/sirupsen/logrus"
)

// Route pairs a delivery channel with the action that serves it.
type Route struct {
	Channel  nudge.Channel
	ActionID string
}

// Executor executes delivery actions for resolved nudges.
type Executor struct {
	registry *Registry
}

// NewExecutor creates a new action executor.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{
		registry: registry,
	}
}

// Execute runs one action for a dispatch.
func (e *Executor) Execute(ctx context.Context, actionID string, dispatch *Dispatch) (*ActionResult, error) {
	action := e.registry.GetEnabled(actionID)
	if action == nil {
		return nil, fmt.Errorf("%w: %s", ErrActionNotFound, actionID)
	}

	scope := common.GetScopeFromContext(ctx, "action."+actionID)
	defer scope.Finish()
	scope.TraceTag("channel", string(dispatch.Channel))

	logrus.Infof("executing action %s for nudge %s on %s (creator: %s)", actionID, dispatch.Rule.Key, dispatch.Channel, dispatch.CreatorID)

	if err := action.Execute(scope.Ctx, dispatch); err != nil {
		scope.TraceError(err)
		logrus.Errorf("action %s failed: %v", actionID, err)
		result := NewActionError(actionID, err)
		result.Channel = dispatch.Channel
		return result, err
	}

	logrus.Infof("action %s completed successfully", actionID)
	result := NewActionResult(actionID).WithMetadata("dispatch_id", dispatch.ID)
	result.Channel = dispatch.Channel
	return result, nil
}

// ExecuteMultiple delivers the dispatch on each route in order. Every route
// is attempted; failures are joined into the returned error.
func (e *Executor) ExecuteMultiple(ctx context.Context, routes []Route, dispatch *Dispatch) ([]*ActionResult, error) {
	var results []*ActionResult
	var errs []error

	for _, route := range routes {
		result, err := e.Execute(ctx, route.ActionID, dispatch.OnChannel(route.Channel))
		if result != nil {
			results = append(results, result)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", route.Channel, err))
		}
	}

	return results, errors.Join(errs...)
}

// GetRegistry returns the action registry used by this executor.
func (e *Executor) GetRegistry() *Registry {
	return e.registry
}
