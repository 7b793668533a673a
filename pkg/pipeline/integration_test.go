package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/AccelByte/extend-creator-nudge/pkg/nudge"
	"github.com/AccelByte/extend-creator-nudge/pkg/pipeline"
	"github.com/AccelByte/extend-creator-nudge/pkg/signal"
)

func (e *testEnv) send(t *testing.T, eventType, creatorID string, at time.Time, attrs map[string]interface{}) *pipeline.Outcome {
	t.Helper()
	e.now = at
	if attrs == nil {
		attrs = map[string]interface{}{}
	}
	outcome, err := e.manager.ProcessEvent(context.Background(), signal.Event{
		Type:       eventType,
		CreatorID:  creatorID,
		OccurredAt: at,
		Attributes: attrs,
	})
	if err != nil {
		t.Fatalf("ProcessEvent(%s) error = %v", eventType, err)
	}
	return outcome
}

func sentKey(o *pipeline.Outcome) string {
	if o == nil || o.Sent == nil {
		return ""
	}
	return o.Sent.Key
}

func TestIntegration_WelcomeAfterDelay(t *testing.T) {
	env := newTestEnv(t)

	outcome := env.send(t, signal.EventCreatorSignedUp, "creator-1", baseTime, nil)
	if got := sentKey(outcome); got != "" {
		t.Fatalf("expected nothing on signup, got %s", got)
	}

	env.now = baseTime.Add(time.Hour)
	outcome = env.evaluate(t, "creator-1")
	if got := sentKey(outcome); got != nudge.KeyPostSignupWelcome {
		t.Fatalf("expected welcome after 1h, got %q", got)
	}

	items := env.inboxItems(t, "creator-1")
	if len(items) != 1 || items[0].Key != nudge.KeyPostSignupWelcome {
		t.Errorf("expected welcome banner, got %+v", items)
	}

	// inactive_7d is still queued behind its delay
	if pending := env.pending(t, "creator-1"); len(pending) != 1 || pending[0] != nudge.KeyInactive7d {
		t.Errorf("expected inactive_7d pending, got %v", pending)
	}
}

func TestIntegration_BrandVisitOutranksWelcome(t *testing.T) {
	env := newTestEnv(t)

	env.send(t, signal.EventCreatorSignedUp, "creator-1", baseTime, map[string]interface{}{
		"phone":  testPhone,
		"locale": "id",
	})
	outcome := env.send(t, signal.EventBrandProfileVisited, "creator-1", baseTime.Add(2*time.Hour), nil)

	if got := sentKey(outcome); got != nudge.KeyFirstBrandVisit {
		t.Fatalf("expected first_brand_visit, got %q", got)
	}
	if len(outcome.Delivered) != 2 {
		t.Errorf("expected in_app and whatsapp delivery, got %v", outcome.Delivered)
	}
	if err := env.whatsapp.AssertSentTo(testPhone); err != nil {
		t.Error(err)
	}
	if got := env.whatsapp.Calls[0].Language; got != "id" {
		t.Errorf("expected creator locale on template, got %q", got)
	}

	pending := env.pending(t, "creator-1")
	found := false
	for _, k := range pending {
		if k == nudge.KeyPostSignupWelcome {
			found = true
		}
	}
	if !found {
		t.Errorf("expected welcome to stay pending, got %v", pending)
	}
}

func TestIntegration_ProfileUpdateMakesWelcomeMoot(t *testing.T) {
	env := newTestEnv(t)

	env.send(t, signal.EventCreatorSignedUp, "creator-1", baseTime, nil)
	env.send(t, signal.EventProfileUpdated, "creator-1", baseTime.Add(30*time.Minute), map[string]interface{}{
		"hasAudienceInsights": true,
	})

	env.now = baseTime.Add(2 * time.Hour)
	outcome := env.evaluate(t, "creator-1")
	if got := sentKey(outcome); got != "" {
		t.Errorf("expected nothing sent, got %s", got)
	}
	if got := outcome.Decisions[nudge.KeyPostSignupWelcome].Reason; got != nudge.ReasonAlreadyHandled {
		t.Errorf("expected already_handled, got %s", got)
	}
	for _, k := range env.pending(t, "creator-1") {
		if k == nudge.KeyPostSignupWelcome {
			t.Error("expected welcome to be dropped")
		}
	}
}

func TestIntegration_DealMilestone(t *testing.T) {
	env := newTestEnv(t)

	outcome := env.send(t, signal.EventCollabRequestReceived, "creator-1", baseTime, map[string]interface{}{
		"brandId": "brand-1",
	})
	if got := sentKey(outcome); got != nudge.KeyFirstRequest {
		t.Fatalf("expected first_request, got %q", got)
	}

	env.send(t, signal.EventDealAccepted, "creator-1", baseTime.Add(time.Hour), nil)

	outcome = env.send(t, signal.EventDealCompleted, "creator-1", baseTime.Add(48*time.Hour), nil)
	if got := sentKey(outcome); got != nudge.KeyFirstDealCompleted {
		t.Fatalf("expected first_deal_completed, got %q", got)
	}

	// Beginner nudges are retired once the milestone is passed
	outcome = env.send(t, signal.EventBrandProfileVisited, "creator-1", baseTime.Add(50*time.Hour), nil)
	if got := sentKey(outcome); got != "" {
		t.Errorf("expected nothing sent after the milestone, got %s", got)
	}
	if got := outcome.Decisions[nudge.KeyFirstBrandVisit].Reason; got != nudge.ReasonMilestoneLock {
		t.Errorf("expected milestone_lock, got %s", got)
	}
}

func TestIntegration_UnknownEventIgnored(t *testing.T) {
	env := newTestEnv(t)

	outcome := env.send(t, "creator_deleted_account", "creator-1", baseTime, nil)
	if outcome == nil || outcome.Sent != nil {
		t.Errorf("expected empty outcome, got %+v", outcome)
	}
	if pending := env.pending(t, "creator-1"); len(pending) != 0 {
		t.Errorf("expected nothing scheduled, got %v", pending)
	}
}

func TestIntegration_SilentPeriod(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 3; i++ {
		env.send(t, signal.EventNudgeDismissed, "creator-1", baseTime.Add(time.Duration(i)*time.Minute), map[string]interface{}{
			"nudgeKey": nudge.KeyPostSignupWelcome,
		})
	}

	outcome := env.send(t, signal.EventBrandProfileVisited, "creator-1", baseTime.Add(time.Hour), nil)
	if got := sentKey(outcome); got != "" {
		t.Errorf("expected silence, got %s", got)
	}
	if got := outcome.Decisions[nudge.KeyFirstBrandVisit].Reason; got != nudge.ReasonSilentPeriod {
		t.Errorf("expected silent_period, got %s", got)
	}

	// Opening a nudge ends the streak and the deferred visit goes out
	outcome = env.send(t, signal.EventNudgeOpened, "creator-1", baseTime.Add(2*time.Hour), nil)
	if got := sentKey(outcome); got != nudge.KeyFirstBrandVisit {
		t.Errorf("expected first_brand_visit after open, got %q", got)
	}
}
