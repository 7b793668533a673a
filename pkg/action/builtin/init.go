package builtin

import (
	"fmt"

	"github.com/AccelByte/extend-creator-nudge/pkg/action"
	"github.com/AccelByte/extend-creator-nudge/pkg/service"
)

// Dependencies holds dependencies needed by built-in actions.
type Dependencies struct {
	Inbox    service.InboxWriter
	WhatsApp service.WhatsAppSender
}

// RegisterActions registers built-in action factories with dependencies.
func RegisterActions(deps *Dependencies) {
	action.RegisterActionType(InAppBannerActionType, func(config action.ActionConfig) (action.Action, error) {
		if deps.Inbox == nil {
			return nil, fmt.Errorf("%w: %s requires an inbox", action.ErrInvalidConfig, InAppBannerActionType)
		}
		return NewInAppBannerAction(config, deps.Inbox), nil
	})

	action.RegisterActionType(WhatsAppTemplateActionType, func(config action.ActionConfig) (action.Action, error) {
		if deps.WhatsApp == nil {
			return nil, fmt.Errorf("%w: %s requires a whatsapp sender", action.ErrInvalidConfig, WhatsAppTemplateActionType)
		}
		return NewWhatsAppTemplateAction(config, deps.WhatsApp), nil
	})

	action.RegisterActionType(LogOnlyActionType, func(config action.ActionConfig) (action.Action, error) {
		return NewLogOnlyAction(config), nil
	})
}
