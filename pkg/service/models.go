// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package service

import (
	"time"
)

// Candidate is a nudge key waiting in the scheduler.
// DueAt is TriggeredAt plus the rule's delay.
type Candidate struct {
	Key         string    `json:"key"`
	TriggeredAt time.Time `json:"triggeredAt"`
	DueAt       time.Time `json:"dueAt"`
}

// IsDue reports whether the candidate may be evaluated at now.
func (c Candidate) IsDue(now time.Time) bool {
	return !c.DueAt.After(now)
}

// InboxItem is one in-app banner shown to the creator.
type InboxItem struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// WhatsAppMessage is a template send request.
type WhatsAppMessage struct {
	// To is the creator identifier resolved to a phone number by the provider
	// configuration, or an E.164 number.
	To       string
	Template string
	Language string
	// Params fill the template body placeholders in order.
	Params []string
}
