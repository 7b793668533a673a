package handler

import (
	"context"
	"testing"

	"github.com/AccelByte/extend-creator-nudge/pkg/nudge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestDecision_Evaluate(t *testing.T) {
	tp := setupTestPipeline(t, nil)
	client := NewNudgeDecisionServiceClient(dialBufconn(t, tp))

	tests := []struct {
		name       string
		fields     map[string]interface{}
		canSend    bool
		shouldSend bool
		reason     string
	}{
		{
			name:       "eligible",
			fields:     map[string]interface{}{"eventKey": nudge.KeyFirstBrandVisit},
			canSend:    true,
			shouldSend: true,
		},
		{
			name: "cooldown",
			fields: map[string]interface{}{
				"eventKey":    nudge.KeyFirstBrandVisit,
				"lastNudgeAt": "2025-06-10T06:00:00Z",
			},
			reason: string(nudge.ReasonCooldown),
		},
		{
			name: "pending offer vetoes but cooldown passes",
			fields: map[string]interface{}{
				"eventKey":          nudge.KeyPostSignupWelcome,
				"pendingOfferCount": 1.0,
			},
			shouldSend: true,
			reason:     string(nudge.ReasonPendingOffer),
		},
		{
			name:   "unknown key",
			fields: map[string]interface{}{"eventKey": "birthday"},
			reason: string(nudge.ReasonUnknownRule),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := client.Evaluate(context.Background(), newEvent(t, tt.fields))
			require.NoError(t, err)

			out := res.AsMap()
			assert.Equal(t, tt.canSend, out["canSend"])
			assert.Equal(t, tt.shouldSend, out["shouldSend"])
			if tt.reason != "" {
				assert.Equal(t, tt.reason, out["reason"])
			}
			if tt.canSend {
				rule, ok := out["rule"].(map[string]interface{})
				require.True(t, ok)
				assert.Equal(t, tt.fields["eventKey"], rule["key"])
			}
		})
	}
}

func TestDecision_Evaluate_MissingKey(t *testing.T) {
	tp := setupTestPipeline(t, nil)
	client := NewNudgeDecisionServiceClient(dialBufconn(t, tp))

	_, err := client.Evaluate(context.Background(), newEvent(t, map[string]interface{}{}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
