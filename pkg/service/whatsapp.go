package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// WhatsAppService sends template messages through the WhatsApp Cloud API.
type WhatsAppService struct {
	httpClient *http.Client
	cfg        WhatsAppServiceConfig
}

type WhatsAppServiceConfig struct {
	BaseURL       string
	Token         string
	PhoneNumberID string
	MaxRetries    uint64
	RetryInterval time.Duration
}

func NewWhatsAppService(
	httpClient *http.Client,
	cfg WhatsAppServiceConfig,
) *WhatsAppService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 500 * time.Millisecond
	}
	return &WhatsAppService{
		httpClient: httpClient,
		cfg:        cfg,
	}
}

type waLanguage struct {
	Code string `json:"code"`
}

type waParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type waComponent struct {
	Type       string        `json:"type"`
	Parameters []waParameter `json:"parameters"`
}

type waTemplate struct {
	Name       string        `json:"name"`
	Language   waLanguage    `json:"language"`
	Components []waComponent `json:"components,omitempty"`
}

type waRequest struct {
	MessagingProduct string     `json:"messaging_product"`
	To               string     `json:"to"`
	Type             string     `json:"type"`
	Template         waTemplate `json:"template"`
}

type waResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

func buildWhatsAppRequest(msg WhatsAppMessage) waRequest {
	req := waRequest{
		MessagingProduct: "whatsapp",
		To:               msg.To,
		Type:             "template",
		Template: waTemplate{
			Name:     msg.Template,
			Language: waLanguage{Code: msg.Language},
		},
	}
	if len(msg.Params) > 0 {
		params := make([]waParameter, len(msg.Params))
		for i, p := range msg.Params {
			params[i] = waParameter{Type: "text", Text: p}
		}
		req.Template.Components = []waComponent{{Type: "body", Parameters: params}}
	}
	return req
}

// SendTemplate posts msg and returns the provider message id.
// 5xx and 429 responses are retried with exponential backoff; other 4xx
// responses fail immediately with ErrWhatsAppRejected.
func (s *WhatsAppService) SendTemplate(ctx context.Context, msg WhatsAppMessage) (string, error) {
	body, err := json.Marshal(buildWhatsAppRequest(msg))
	if err != nil {
		return "", fmt.Errorf("failed to marshal whatsapp request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", strings.TrimRight(s.cfg.BaseURL, "/"), s.cfg.PhoneNumberID)

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = s.cfg.RetryInterval
	b := backoff.WithContext(backoff.WithMaxRetries(eb, s.cfg.MaxRetries), ctx)

	var messageID string
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("whatsapp api returned %d", resp.StatusCode)
		case resp.StatusCode >= 400:
			return backoff.Permanent(fmt.Errorf("%w: status %d: %s", ErrWhatsAppRejected, resp.StatusCode, payload))
		}

		var out waResponse
		if err := json.Unmarshal(payload, &out); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode whatsapp response: %w", err))
		}
		if len(out.Messages) > 0 {
			messageID = out.Messages[0].ID
		}
		return nil
	}

	err = backoff.RetryNotify(op, b, func(err error, delay time.Duration) {
		logrus.Warnf("whatsapp send to %s failed: %v, retrying in %v", msg.To, err, delay)
	})
	if err != nil {
		return "", fmt.Errorf("failed to send whatsapp template %s: %w", msg.Template, err)
	}

	return messageID, nil
}
