package builtin

import (
	"context"
	"fmt"

	"github.com/AccelByte/extend-creator-nudge/pkg/action"
	"github.com/AccelByte/extend-creator-nudge/pkg/service"
	"github.com/sirupsen/logrus"
)

const (
	// WhatsAppTemplateActionType is the identifier for the WhatsApp template action
	WhatsAppTemplateActionType = "whatsapp_template"

	defaultTemplateLanguage = "en"
)

// WhatsAppTemplateAction sends the nudge as an approved WhatsApp template.
//
// Parameters:
//   - templates: map of nudge key to template name; keys without an entry use
//     the nudge key itself as the template name
//   - language: fallback language code when the creator has no locale (default "en")
type WhatsAppTemplateAction struct {
	config    action.ActionConfig
	sender    service.WhatsAppSender
	templates map[string]string
	language  string
}

func NewWhatsAppTemplateAction(config action.ActionConfig, sender service.WhatsAppSender) *WhatsAppTemplateAction {
	return &WhatsAppTemplateAction{
		config:    config,
		sender:    sender,
		templates: config.GetParameterStringMap("templates"),
		language:  config.GetParameterString("language", defaultTemplateLanguage),
	}
}

func (a *WhatsAppTemplateAction) ID() string {
	return a.config.ID
}

func (a *WhatsAppTemplateAction) Name() string {
	return "WhatsApp Template"
}

func (a *WhatsAppTemplateAction) Config() action.ActionConfig {
	return a.config
}

// TemplateFor returns the template name used for a nudge key.
func (a *WhatsAppTemplateAction) TemplateFor(key string) string {
	if t, ok := a.templates[key]; ok && t != "" {
		return t
	}
	return key
}

func (a *WhatsAppTemplateAction) Execute(ctx context.Context, dispatch *action.Dispatch) error {
	if dispatch.Phone == "" {
		return fmt.Errorf("%w: creator %s has no phone number", action.ErrMissingContact, dispatch.CreatorID)
	}

	language := dispatch.Locale
	if language == "" {
		language = a.language
	}

	msg := service.WhatsAppMessage{
		To:       dispatch.Phone,
		Template: a.TemplateFor(dispatch.Rule.Key),
		Language: language,
		Params:   []string{dispatch.Rule.Title, dispatch.Rule.Message},
	}

	messageID, err := a.sender.SendTemplate(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send whatsapp nudge %s to creator %s: %w", dispatch.Rule.Key, dispatch.CreatorID, err)
	}

	logrus.Infof("sent whatsapp template %s to creator %s (message id: %s)", msg.Template, dispatch.CreatorID, messageID)
	return nil
}
