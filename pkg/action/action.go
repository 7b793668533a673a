package action

import (
	"context"
	"time"

	"github.com/AccelByte/extend-creator-nudge/pkg/nudge"
	"github.com/google/uuid"
)

// Action delivers a nudge on one channel.
// Actions are registered in a Registry and executed by the Executor.
type Action interface {
	// ID returns unique action identifier.
	ID() string

	// Name returns human-readable action name.
	Name() string

	// Execute delivers the dispatch.
	// Returns error if the delivery fails.
	Execute(ctx context.Context, dispatch *Dispatch) error

	// Config returns the action's configuration.
	Config() ActionConfig
}

// Dispatch is one resolved nudge on its way to a creator.
type Dispatch struct {
	ID        string
	CreatorID string
	Phone     string
	Locale    string
	Rule      nudge.NudgeRule
	Channel   nudge.Channel
	CreatedAt time.Time
}

// NewDispatch creates a dispatch with a fresh id.
func NewDispatch(creatorID string, rule nudge.NudgeRule, now time.Time) *Dispatch {
	return &Dispatch{
		ID:        uuid.NewString(),
		CreatorID: creatorID,
		Rule:      rule,
		CreatedAt: now,
	}
}

// OnChannel returns a copy of the dispatch bound to ch.
func (d *Dispatch) OnChannel(ch nudge.Channel) *Dispatch {
	out := *d
	out.Channel = ch
	return &out
}

// ActionResult represents the outcome of an action execution.
type ActionResult struct {
	ActionID string
	Channel  nudge.Channel
	Success  bool
	Error    error
	Metadata map[string]interface{}
}

// NewActionResult creates a successful action result.
func NewActionResult(actionID string) *ActionResult {
	return &ActionResult{
		ActionID: actionID,
		Success:  true,
		Metadata: make(map[string]interface{}),
	}
}

// NewActionError creates a failed action result with an error.
func NewActionError(actionID string, err error) *ActionResult {
	return &ActionResult{
		ActionID: actionID,
		Success:  false,
		Error:    err,
		Metadata: make(map[string]interface{}),
	}
}

// WithMetadata adds metadata to the result and returns it for chaining.
func (r *ActionResult) WithMetadata(key string, value interface{}) *ActionResult {
	r.Metadata[key] = value
	return r
}
