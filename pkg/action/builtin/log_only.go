package builtin

import (
	"context"

	"github.com/AccelByte/extend-creator-nudge/pkg/action"
	"github.com/sirupsen/logrus"
)

const (
	// LogOnlyActionType is the identifier for the dry-run action
	LogOnlyActionType = "log_only"
)

// LogOnlyAction logs the nudge instead of delivering it.
// Useful for shadow-mode rollouts of new channels.
type LogOnlyAction struct {
	config action.ActionConfig
}

func NewLogOnlyAction(config action.ActionConfig) *LogOnlyAction {
	return &LogOnlyAction{
		config: config,
	}
}

func (a *LogOnlyAction) ID() string {
	return a.config.ID
}

func (a *LogOnlyAction) Name() string {
	return "Log Only"
}

func (a *LogOnlyAction) Config() action.ActionConfig {
	return a.config
}

func (a *LogOnlyAction) Execute(ctx context.Context, dispatch *action.Dispatch) error {
	logrus.WithFields(logrus.Fields{
		"dispatch_id": dispatch.ID,
		"creator_id":  dispatch.CreatorID,
		"nudge_key":   dispatch.Rule.Key,
		"channel":     dispatch.Channel,
	}).Infof("[DRY-RUN] would deliver %q", dispatch.Rule.Title)
	return nil
}
