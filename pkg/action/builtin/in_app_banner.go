package builtin

import (
	"context"
	"fmt"

	"github.com/AccelByte/extend-creator-nudge/pkg/action"
	"github.com/AccelByte/extend-creator-nudge/pkg/service"
	"github.com/sirupsen/logrus"
)

const (
	// InAppBannerActionType is the identifier for the in-app banner action
	InAppBannerActionType = "in_app_banner"
)

// InAppBannerAction writes the nudge to the creator's in-app inbox.
type InAppBannerAction struct {
	config action.ActionConfig
	inbox  service.InboxWriter
}

func NewInAppBannerAction(config action.ActionConfig, inbox service.InboxWriter) *InAppBannerAction {
	return &InAppBannerAction{
		config: config,
		inbox:  inbox,
	}
}

func (a *InAppBannerAction) ID() string {
	return a.config.ID
}

func (a *InAppBannerAction) Name() string {
	return "In-App Banner"
}

func (a *InAppBannerAction) Config() action.ActionConfig {
	return a.config
}

func (a *InAppBannerAction) Execute(ctx context.Context, dispatch *action.Dispatch) error {
	item := service.InboxItem{
		ID:        dispatch.ID,
		Key:       dispatch.Rule.Key,
		Title:     dispatch.Rule.Title,
		Message:   dispatch.Rule.Message,
		CreatedAt: dispatch.CreatedAt,
	}

	if err := a.inbox.Push(ctx, dispatch.CreatorID, item); err != nil {
		return fmt.Errorf("failed to push banner %s for creator %s: %w", dispatch.Rule.Key, dispatch.CreatorID, err)
	}

	logrus.Infof("pushed %s banner to creator %s inbox", dispatch.Rule.Key, dispatch.CreatorID)
	return nil
}
