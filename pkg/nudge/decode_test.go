package nudge

import (
	"testing"
	"time"
)

func TestDecodeContext(t *testing.T) {
	c := DecodeContext(map[string]interface{}{
		"eventKey":           KeyFirstBrandVisit,
		"lastNudgeAt":        "2025-06-09T12:00:00Z",
		"profileUpdatedAt":   "not a date",
		"pendingOfferCount":  float64(2),
		"brandVisitCount24h": "3",
		"alreadyUpdated":     true,
		"missingSignal":      "audience",
		"channelsSentLast7d": map[string]interface{}{"whatsapp": float64(1)},
	})

	if c.EventKey != KeyFirstBrandVisit {
		t.Errorf("EventKey = %q", c.EventKey)
	}
	want := time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)
	if c.LastNudgeAt == nil || !c.LastNudgeAt.Equal(want) {
		t.Errorf("LastNudgeAt = %v, expected %v", c.LastNudgeAt, want)
	}
	if c.ProfileUpdatedAt != nil {
		t.Errorf("unparseable timestamp should decode as nil, got %v", c.ProfileUpdatedAt)
	}
	if c.PendingOfferCount != 2 || c.BrandVisitCount24h != 3 {
		t.Errorf("counts = %d/%d", c.PendingOfferCount, c.BrandVisitCount24h)
	}
	if !c.AlreadyUpdated || c.MissingSignal != MissingAudience {
		t.Errorf("flags not decoded: %+v", c)
	}
	if c.ChannelsSentLast7d[ChannelWhatsApp] != 1 {
		t.Errorf("ChannelsSentLast7d = %v", c.ChannelsSentLast7d)
	}
}

func TestEncodeDecision(t *testing.T) {
	e := NewEngine(DefaultCatalog())
	c := CollabNudgeContext{EventKey: KeyFirstRequest}

	out := EncodeDecision(c, e.Evaluate(c), e.ShouldSend(c))
	if out["canSend"] != true || out["shouldSend"] != true {
		t.Errorf("expected eligible decision, got %v", out)
	}
	rule, ok := out["rule"].(map[string]interface{})
	if !ok || rule["key"] != KeyFirstRequest {
		t.Errorf("rule = %v", out["rule"])
	}

	c.PendingOfferCount = 1
	c.EventKey = KeyInactive7d
	out = EncodeDecision(c, e.Evaluate(c), e.ShouldSend(c))
	if out["canSend"] != false || out["reason"] != string(ReasonPendingOffer) {
		t.Errorf("expected pending_offer veto, got %v", out)
	}
	if _, ok := out["rule"]; ok {
		t.Error("vetoed decision should not carry a rule")
	}
}
