package nudge

import (
	"strconv"
	"time"
)

// DecodeContext builds a CollabNudgeContext from a generic payload such as a
// decoded JSON body or protobuf Struct. Decoding is lenient: bad timestamps
// read as nil and bad numbers as zero, matching how the engine treats missing
// data.
func DecodeContext(payload map[string]interface{}) CollabNudgeContext {
	c := CollabNudgeContext{
		EventKey:                  stringField(payload, "eventKey"),
		LastNudgeAt:               timeField(payload, "lastNudgeAt"),
		RecentNudgeAt:             timeField(payload, "recentNudgeAt"),
		AlreadyUpdated:            boolField(payload, "alreadyUpdated"),
		RequestSubmitted:          boolField(payload, "requestSubmitted"),
		DealInProgress:            boolField(payload, "dealInProgress"),
		MissingSignal:             MissingSignal(stringField(payload, "missingSignal")),
		ProfileUpdatedAt:          timeField(payload, "profileUpdatedAt"),
		DealAcceptedAt:            timeField(payload, "dealAcceptedAt"),
		OfferReceivedAt:           timeField(payload, "offerReceivedAt"),
		ActiveCollaborationsCount: intField(payload, "activeCollaborationsCount"),
		PendingOfferCount:         intField(payload, "pendingOfferCount"),
		BrandVisitCount24h:        intField(payload, "brandVisitCount24h"),
		IgnoredNudgesCount:        intField(payload, "ignoredNudgesCount"),
		LastIgnoredAt:             timeField(payload, "lastIgnoredAt"),
		HasAcceptedFirstDeal:      boolField(payload, "hasAcceptedFirstDeal"),
		NudgeCategory:             Category(stringField(payload, "nudgeCategory")),
	}

	if channels, ok := payload["channelsSentLast7d"].(map[string]interface{}); ok {
		c.ChannelsSentLast7d = make(map[Channel]int, len(channels))
		for ch := range channels {
			c.ChannelsSentLast7d[Channel(ch)] = intField(channels, ch)
		}
	}
	return c
}

// EncodeDecision renders a decision for the dry-run endpoints.
func EncodeDecision(c CollabNudgeContext, d Decision, shouldSend bool) map[string]interface{} {
	out := map[string]interface{}{
		"eventKey":   c.EventKey,
		"shouldSend": shouldSend,
		"canSend":    d.Eligible,
	}
	if d.Reason != "" {
		out["reason"] = string(d.Reason)
	}
	if d.Rule != nil {
		channels := make([]interface{}, 0, len(d.Rule.Channels))
		for _, ch := range d.Rule.Channels {
			channels = append(channels, string(ch))
		}
		out["rule"] = map[string]interface{}{
			"key":           d.Rule.Key,
			"priority":      string(d.Rule.Priority),
			"delayHours":    float64(d.Rule.DelayHours),
			"cooldownHours": float64(d.Rule.CooldownHours),
			"channels":      channels,
			"title":         d.Rule.Title,
			"message":       d.Rule.Message,
		}
	}
	return out
}

func stringField(m map[string]interface{}, name string) string {
	s, _ := m[name].(string)
	return s
}

func boolField(m map[string]interface{}, name string) bool {
	b, _ := m[name].(bool)
	return b
}

func intField(m map[string]interface{}, name string) int {
	switch v := m[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return 0
}

func timeField(m map[string]interface{}, name string) *time.Time {
	return ParseTimestamp(stringField(m, name))
}
