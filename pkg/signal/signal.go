package signal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AccelByte/extend-creator-nudge/pkg/nudge"
	"github.com/AccelByte/extend-creator-nudge/pkg/state"
)

// Lifecycle event types accepted by the service.
const (
	EventCreatorSignedUp        = "creator_signed_up"
	EventBrandProfileVisited    = "brand_profile_visited"
	EventCollabRequestReceived  = "collab_request_received"
	EventCollabRequestSubmitted = "collab_request_submitted"
	EventOfferReceived          = "offer_received"
	EventDealAccepted           = "deal_accepted"
	EventDealCompleted          = "deal_completed"
	EventProfileUpdated         = "profile_updated"
	EventContentPosted          = "content_posted"
	EventNudgeDismissed         = "nudge_dismissed"
	EventNudgeOpened            = "nudge_opened"
)

var (
	// ErrUnknownEventType is returned when no processor handles an event type.
	ErrUnknownEventType = errors.New("unknown event type")
	// ErrInvalidEvent is returned when an event payload is malformed.
	ErrInvalidEvent = errors.New("invalid event")
)

// Event is a raw lifecycle event about a creator.
type Event struct {
	Type       string
	CreatorID  string
	OccurredAt time.Time
	Attributes map[string]interface{}
}

// DecodeEvent builds an Event from a generic payload such as a decoded
// protobuf Struct or JSON body. A missing or unparseable occurredAt falls
// back to now.
func DecodeEvent(payload map[string]interface{}, now time.Time) (Event, error) {
	ev := Event{
		Type:       strings.TrimSpace(stringAttr(payload, "type")),
		CreatorID:  strings.TrimSpace(stringAttr(payload, "creatorId")),
		OccurredAt: now,
		Attributes: map[string]interface{}{},
	}
	if ev.Type == "" {
		return Event{}, fmt.Errorf("%w: type is empty", ErrInvalidEvent)
	}
	if ev.CreatorID == "" {
		return Event{}, fmt.Errorf("%w: creatorId is empty", ErrInvalidEvent)
	}
	if t := nudge.ParseTimestamp(stringAttr(payload, "occurredAt")); t != nil {
		ev.OccurredAt = *t
	}
	if attrs, ok := payload["attributes"].(map[string]interface{}); ok {
		ev.Attributes = attrs
	}
	return ev, nil
}

// String returns the attribute as a string, or "".
func (e Event) String(name string) string {
	return stringAttr(e.Attributes, name)
}

// Bool returns a pointer to the boolean attribute, or nil when absent.
func (e Event) Bool(name string) *bool {
	b, ok := e.Attributes[name].(bool)
	if !ok {
		return nil
	}
	return &b
}

func stringAttr(m map[string]interface{}, name string) string {
	s, _ := m[name].(string)
	return s
}

// Trigger is a nudge candidate produced by a lifecycle event.
type Trigger struct {
	Key         string
	TriggeredAt time.Time
}

// Signal represents a processed lifecycle event with the creator context
// it was applied to and the nudge candidates it raised.
type Signal interface {
	// Type returns the event type that produced the signal.
	Type() string

	// CreatorID returns the creator identifier.
	CreatorID() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time

	// Metadata returns additional event-specific data.
	Metadata() map[string]interface{}

	// Context returns the creator context after the event was applied.
	Context() *CreatorContext

	// Triggers returns the nudge candidates raised by the event.
	Triggers() []Trigger
}

// CreatorContext wraps the creator state loaded for an event.
type CreatorContext struct {
	CreatorID string
	State     *state.CreatorState
}

// BaseSignal is the common Signal implementation.
type BaseSignal struct {
	signalType string
	creatorID  string
	timestamp  time.Time
	metadata   map[string]interface{}
	context    *CreatorContext
	triggers   []Trigger
}

// NewBaseSignal creates a signal. A nil metadata map is replaced by an empty one.
func NewBaseSignal(signalType, creatorID string, timestamp time.Time, metadata map[string]interface{}, context *CreatorContext, triggers ...Trigger) BaseSignal {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return BaseSignal{
		signalType: signalType,
		creatorID:  creatorID,
		timestamp:  timestamp,
		metadata:   metadata,
		context:    context,
		triggers:   triggers,
	}
}

func (s *BaseSignal) Type() string                     { return s.signalType }
func (s *BaseSignal) CreatorID() string                { return s.creatorID }
func (s *BaseSignal) Timestamp() time.Time             { return s.timestamp }
func (s *BaseSignal) Metadata() map[string]interface{} { return s.metadata }
func (s *BaseSignal) Context() *CreatorContext         { return s.context }
func (s *BaseSignal) Triggers() []Trigger              { return s.triggers }
