package pipeline_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/AccelByte/extend-creator-nudge/pkg/action"
	actionBuiltin "github.com/AccelByte/extend-creator-nudge/pkg/action/builtin"
	"github.com/AccelByte/extend-creator-nudge/pkg/nudge"
	"github.com/AccelByte/extend-creator-nudge/pkg/pipeline"
	"github.com/AccelByte/extend-creator-nudge/pkg/service"
	"github.com/AccelByte/extend-creator-nudge/pkg/service/mock"
	"github.com/AccelByte/extend-creator-nudge/pkg/signal"
	signalBuiltin "github.com/AccelByte/extend-creator-nudge/pkg/signal/builtin"
	"github.com/AccelByte/extend-creator-nudge/pkg/state"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

var baseTime = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

const testPhone = "+628123456789"

// testEnv wires a full pipeline over miniredis with a mock WhatsApp sender
type testEnv struct {
	deps     *service.Dependencies
	inbox    *service.RedisInbox
	whatsapp *mock.WhatsAppSender
	catalog  *nudge.Catalog
	manager  *pipeline.Manager
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, nil)
}

func newTestEnvWith(t *testing.T, customize func(*service.Dependencies)) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	rs, err := service.NewRedisService(client, service.RedisServiceConfig{})
	if err != nil {
		t.Fatalf("failed to create redis service: %v", err)
	}

	env := &testEnv{
		whatsapp: mock.NewWhatsAppSender(),
		inbox:    rs.Inbox(),
		catalog:  nudge.DefaultCatalog(),
		now:      baseTime,
	}
	env.deps = rs.Dependencies().WithWhatsApp(env.whatsapp)
	if customize != nil {
		customize(env.deps)
	}

	registry := signal.NewEventProcessorRegistry()
	signalBuiltin.RegisterEventProcessors(registry)
	processor := signal.NewProcessor(env.deps.StateStore, registry)

	engine := nudge.NewEngine(env.catalog, nudge.WithClock(func() time.Time { return env.now }))

	actions := action.NewRegistry()
	actions.Register(actionBuiltin.NewInAppBannerAction(
		action.ActionConfig{ID: "banner", Type: actionBuiltin.InAppBannerActionType, Enabled: true}, env.deps.Inbox))
	actions.Register(actionBuiltin.NewWhatsAppTemplateAction(
		action.ActionConfig{ID: "whatsapp", Type: actionBuiltin.WhatsAppTemplateActionType, Enabled: true}, env.deps.WhatsApp))

	routes := map[nudge.Channel]string{
		nudge.ChannelInApp:    "banner",
		nudge.ChannelWhatsApp: "whatsapp",
	}
	env.manager = pipeline.NewManager(processor, engine, action.NewExecutor(actions), env.deps, routes, pipeline.DefaultMaxPendingAge)
	return env
}

// schedule queues key as if it had been triggered at triggeredAt
func (e *testEnv) schedule(t *testing.T, creatorID, key string, triggeredAt time.Time) {
	t.Helper()
	rule, ok := e.catalog.Get(key)
	if !ok {
		t.Fatalf("unknown key %s", key)
	}
	c := service.Candidate{Key: key, TriggeredAt: triggeredAt, DueAt: triggeredAt.Add(rule.Delay())}
	if err := e.deps.Scheduler.Schedule(context.Background(), creatorID, c); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
}

func (e *testEnv) saveState(t *testing.T, s *state.CreatorState) {
	t.Helper()
	if err := e.deps.StateStore.UpdateCreatorState(context.Background(), s.CreatorID, s); err != nil {
		t.Fatalf("UpdateCreatorState() error = %v", err)
	}
}

func (e *testEnv) pending(t *testing.T, creatorID string) []string {
	t.Helper()
	candidates, err := e.deps.Scheduler.Pending(context.Background(), creatorID)
	if err != nil {
		t.Fatalf("Pending() error = %v", err)
	}
	keys := make([]string, 0, len(candidates))
	for _, c := range candidates {
		keys = append(keys, c.Key)
	}
	sort.Strings(keys)
	return keys
}

func (e *testEnv) inboxItems(t *testing.T, creatorID string) []service.InboxItem {
	t.Helper()
	items, err := e.inbox.List(context.Background(), creatorID, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	return items
}

func (e *testEnv) evaluate(t *testing.T, creatorID string) *pipeline.Outcome {
	t.Helper()
	outcome, err := e.manager.EvaluateCreator(context.Background(), creatorID)
	if err != nil {
		t.Fatalf("EvaluateCreator() error = %v", err)
	}
	return outcome
}

func withPhone(creatorID string) *state.CreatorState {
	s := state.NewCreatorState(creatorID)
	s.Phone = testPhone
	return s
}

func TestEvaluateCreator_NothingDue(t *testing.T) {
	env := newTestEnv(t)
	env.schedule(t, "creator-1", nudge.KeyPostSignupWelcome, baseTime) // due in 1h

	outcome := env.evaluate(t, "creator-1")
	if outcome.Sent != nil {
		t.Errorf("expected nothing sent, got %s", outcome.Sent.Key)
	}
	if len(outcome.Decisions) != 0 {
		t.Errorf("expected no decisions, got %v", outcome.Decisions)
	}
}

func TestEvaluateCreator_OneNudgePerCycle(t *testing.T) {
	env := newTestEnv(t)
	env.schedule(t, "creator-1", nudge.KeyFirstBrandVisit, baseTime)
	env.schedule(t, "creator-1", nudge.KeyFirstDealCompleted, baseTime)

	outcome := env.evaluate(t, "creator-1")
	if outcome.Sent == nil || outcome.Sent.Key != nudge.KeyFirstDealCompleted {
		t.Fatalf("expected first_deal_completed to win, got %+v", outcome.Sent)
	}
	if !outcome.Decisions[nudge.KeyFirstBrandVisit].Eligible {
		t.Error("expected the losing candidate to be eligible too")
	}
	if outcome.DispatchID == "" {
		t.Error("expected a dispatch id")
	}

	if pending := env.pending(t, "creator-1"); len(pending) != 1 || pending[0] != nudge.KeyFirstBrandVisit {
		t.Errorf("expected loser to stay pending, got %v", pending)
	}
	if items := env.inboxItems(t, "creator-1"); len(items) != 1 {
		t.Errorf("expected 1 banner, got %d", len(items))
	}

	// The loser goes out on the next cycle
	next := env.evaluate(t, "creator-1")
	if next.Sent == nil || next.Sent.Key != nudge.KeyFirstBrandVisit {
		t.Errorf("expected first_brand_visit on the next cycle, got %+v", next.Sent)
	}
	if pending := env.pending(t, "creator-1"); len(pending) != 0 {
		t.Errorf("expected nothing pending, got %v", pending)
	}
}

func TestEvaluateCreator_DropsPermanentlyMoot(t *testing.T) {
	env := newTestEnv(t)

	s := state.NewCreatorState("creator-1")
	state.MarkFirstDealAccepted(s)
	env.saveState(t, s)
	env.schedule(t, "creator-1", nudge.KeyPostSignupWelcome, baseTime.Add(-2*time.Hour))

	outcome := env.evaluate(t, "creator-1")
	if outcome.Sent != nil {
		t.Errorf("expected nothing sent, got %s", outcome.Sent.Key)
	}
	if got := outcome.Decisions[nudge.KeyPostSignupWelcome].Reason; got != nudge.ReasonMilestoneLock {
		t.Errorf("expected milestone_lock, got %s", got)
	}
	if len(outcome.Dropped) != 1 {
		t.Errorf("expected welcome to be dropped, got %v", outcome.Dropped)
	}
	if pending := env.pending(t, "creator-1"); len(pending) != 0 {
		t.Errorf("expected nothing pending, got %v", pending)
	}
}

func TestEvaluateCreator_DropsStaleCandidates(t *testing.T) {
	env := newTestEnv(t)

	s := state.NewCreatorState("creator-1")
	s.Deals.PendingOffers = 1
	env.saveState(t, s)

	env.schedule(t, "creator-1", nudge.KeyFirstBrandVisit, baseTime.Add(-15*24*time.Hour))
	env.schedule(t, "creator-1", nudge.KeySecondVisitNoRequest, baseTime.Add(-3*time.Hour))

	outcome := env.evaluate(t, "creator-1")
	for _, key := range []string{nudge.KeyFirstBrandVisit, nudge.KeySecondVisitNoRequest} {
		if got := outcome.Decisions[key].Reason; got != nudge.ReasonPendingOffer {
			t.Errorf("%s: expected pending_offer, got %s", key, got)
		}
	}

	pending := env.pending(t, "creator-1")
	if len(pending) != 1 || pending[0] != nudge.KeySecondVisitNoRequest {
		t.Errorf("expected only the fresh candidate to stay pending, got %v", pending)
	}
}

func TestEvaluateCreator_WhatsApp(t *testing.T) {
	env := newTestEnv(t)
	env.saveState(t, withPhone("creator-1"))
	env.schedule(t, "creator-1", nudge.KeyInactive7d, baseTime.Add(-7*24*time.Hour))

	outcome := env.evaluate(t, "creator-1")
	if outcome.Sent == nil || outcome.Sent.Key != nudge.KeyInactive7d {
		t.Fatalf("expected inactive_7d to be sent, got %+v", outcome.Sent)
	}
	if err := env.whatsapp.AssertSentTo(testPhone); err != nil {
		t.Error(err)
	}

	counts, err := env.deps.ChannelTracker.CountLast7d(context.Background(), "creator-1", env.now)
	if err != nil {
		t.Fatalf("CountLast7d() error = %v", err)
	}
	if counts[string(nudge.ChannelWhatsApp)] != 1 {
		t.Errorf("expected whatsapp count 1, got %v", counts)
	}

	lastSent, err := env.deps.HistoryStore.LastSent(context.Background(), "creator-1")
	if err != nil {
		t.Fatalf("LastSent() error = %v", err)
	}
	if !lastSent[nudge.KeyInactive7d].Equal(env.now) {
		t.Errorf("expected history at %v, got %v", env.now, lastSent[nudge.KeyInactive7d])
	}

	s, _ := env.deps.StateStore.GetCreatorState(context.Background(), "creator-1")
	if at := state.RecentNudgeAt(s, nudge.KeyInactive7d); at == nil || !at.Equal(env.now) {
		t.Errorf("expected cached send on state, got %v", at)
	}
}

func TestEvaluateCreator_WhatsAppCeiling(t *testing.T) {
	env := newTestEnv(t)
	env.saveState(t, withPhone("creator-1"))
	for i := 0; i < 2; i++ {
		if err := env.deps.ChannelTracker.Increment(context.Background(), "creator-1", "whatsapp", env.now.Add(-time.Hour)); err != nil {
			t.Fatalf("Increment() error = %v", err)
		}
	}
	env.schedule(t, "creator-1", nudge.KeyInactive7d, baseTime.Add(-7*24*time.Hour))

	outcome := env.evaluate(t, "creator-1")
	if outcome.Sent != nil {
		t.Errorf("expected nothing sent, got %s", outcome.Sent.Key)
	}
	if got := outcome.Decisions[nudge.KeyInactive7d].Reason; got != nudge.ReasonChannelCap {
		t.Errorf("expected channel_cap, got %s", got)
	}
	if env.whatsapp.CallCount() != 0 {
		t.Error("expected no whatsapp send")
	}
	if pending := env.pending(t, "creator-1"); len(pending) != 1 {
		t.Errorf("expected candidate to stay pending, got %v", pending)
	}
}

func TestEvaluateCreator_NoDeliverableChannel(t *testing.T) {
	env := newTestEnv(t)
	env.schedule(t, "creator-1", nudge.KeyInactive7d, baseTime.Add(-7*24*time.Hour))

	outcome := env.evaluate(t, "creator-1")
	if outcome.Sent != nil {
		t.Errorf("expected nothing sent without a phone, got %s", outcome.Sent.Key)
	}

	lastSent, _ := env.deps.HistoryStore.LastSent(context.Background(), "creator-1")
	if len(lastSent) != 0 {
		t.Errorf("expected no claim without a channel, got %v", lastSent)
	}
	if pending := env.pending(t, "creator-1"); len(pending) != 1 {
		t.Errorf("expected candidate to stay pending, got %v", pending)
	}
}

func TestEvaluateCreator_PartialDispatchFailure(t *testing.T) {
	env := newTestEnv(t)
	env.whatsapp.WithError(service.ErrWhatsAppRejected)
	env.saveState(t, withPhone("creator-1"))
	env.schedule(t, "creator-1", nudge.KeyFirstRequest, baseTime)

	outcome := env.evaluate(t, "creator-1")
	if outcome.Sent == nil || outcome.Sent.Key != nudge.KeyFirstRequest {
		t.Fatalf("expected first_request to be sent, got %+v", outcome.Sent)
	}
	if len(outcome.Delivered) != 1 || outcome.Delivered[0] != nudge.ChannelInApp {
		t.Errorf("expected in_app delivery only, got %v", outcome.Delivered)
	}

	counts, _ := env.deps.ChannelTracker.CountLast7d(context.Background(), "creator-1", env.now)
	if counts["in_app"] != 1 || counts["whatsapp"] != 0 {
		t.Errorf("expected only the delivered channel counted, got %v", counts)
	}
}

func TestEvaluateCreator_AllChannelsFail(t *testing.T) {
	env := newTestEnv(t)
	env.whatsapp.WithError(errors.New("provider down"))
	env.saveState(t, withPhone("creator-1"))
	env.schedule(t, "creator-1", nudge.KeyInactive7d, baseTime.Add(-7*24*time.Hour))

	outcome, err := env.manager.EvaluateCreator(context.Background(), "creator-1")
	if err == nil {
		t.Fatal("expected dispatch error")
	}
	if outcome == nil || outcome.Sent == nil {
		t.Fatal("expected outcome describing the claimed send")
	}

	// The claim is kept so the failed send is not retried inside the cooldown
	lastSent, _ := env.deps.HistoryStore.LastSent(context.Background(), "creator-1")
	if _, ok := lastSent[nudge.KeyInactive7d]; !ok {
		t.Error("expected the claim to be kept")
	}
	if pending := env.pending(t, "creator-1"); len(pending) != 0 {
		t.Errorf("expected candidate removed, got %v", pending)
	}
}

// conflictingHistory simulates another worker winning every claim
type conflictingHistory struct {
	service.HistoryStore
}

func (c conflictingHistory) ClaimSend(ctx context.Context, creatorID, key string, expectedLast *time.Time, sentAt time.Time) error {
	return service.ErrConcurrentSend
}

func TestEvaluateCreator_ClaimConflict(t *testing.T) {
	env := newTestEnvWith(t, func(d *service.Dependencies) {
		d.WithHistoryStore(conflictingHistory{HistoryStore: d.HistoryStore})
	})
	env.schedule(t, "creator-1", nudge.KeyFirstBrandVisit, baseTime)

	outcome := env.evaluate(t, "creator-1")
	if !outcome.Conflict {
		t.Error("expected claim conflict")
	}
	if outcome.Sent != nil {
		t.Error("expected nothing sent on conflict")
	}
	if items := env.inboxItems(t, "creator-1"); len(items) != 0 {
		t.Errorf("expected no banner, got %d", len(items))
	}
}

func TestEvaluateCreator_Cooldown(t *testing.T) {
	env := newTestEnv(t)
	env.schedule(t, "creator-1", nudge.KeyFirstBrandVisit, baseTime)
	if outcome := env.evaluate(t, "creator-1"); outcome.Sent == nil {
		t.Fatal("expected first send")
	}

	env.now = baseTime.Add(time.Hour)
	env.schedule(t, "creator-1", nudge.KeyFirstBrandVisit, env.now)
	outcome := env.evaluate(t, "creator-1")
	if got := outcome.Decisions[nudge.KeyFirstBrandVisit].Reason; got != nudge.ReasonCooldown {
		t.Errorf("expected cooldown, got %s", got)
	}

	env.now = baseTime.Add(24 * time.Hour)
	if outcome := env.evaluate(t, "creator-1"); outcome.Sent == nil {
		t.Error("expected send once the cooldown elapsed")
	}
}

func TestEvaluateCreator_ConcurrentWorkersSendOnce(t *testing.T) {
	env := newTestEnv(t)
	env.schedule(t, "creator-1", nudge.KeyFirstBrandVisit, baseTime)

	const workers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	sent := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := env.manager.EvaluateCreator(context.Background(), "creator-1")
			if err != nil {
				t.Errorf("EvaluateCreator() error = %v", err)
				return
			}
			if outcome.Sent != nil {
				mu.Lock()
				sent++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if sent != 1 {
		t.Errorf("expected exactly one send, got %d", sent)
	}
	if items := env.inboxItems(t, "creator-1"); len(items) != 1 {
		t.Errorf("expected exactly one banner, got %d", len(items))
	}
}

func TestEvaluateCreator_ConcurrentDifferentKeysRespectCeiling(t *testing.T) {
	env := newTestEnv(t)
	env.saveState(t, withPhone("creator-1"))
	if err := env.deps.ChannelTracker.Increment(context.Background(), "creator-1", "whatsapp", baseTime.Add(-time.Hour)); err != nil {
		t.Fatalf("Increment() error = %v", err)
	}
	env.schedule(t, "creator-1", nudge.KeyFirstBrandVisit, baseTime)
	env.schedule(t, "creator-1", nudge.KeyFirstRequest, baseTime)

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.manager.EvaluateCreator(context.Background(), "creator-1"); err != nil {
				t.Errorf("EvaluateCreator() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := env.whatsapp.CallCount(); got != 1 {
		t.Errorf("expected one whatsapp send under the weekly ceiling, got %d", got)
	}
	counts, err := env.deps.ChannelTracker.CountLast7d(context.Background(), "creator-1", env.now)
	if err != nil {
		t.Fatalf("CountLast7d() error = %v", err)
	}
	if counts[string(nudge.ChannelWhatsApp)] != 2 {
		t.Errorf("expected whatsapp count 2, got %v", counts)
	}
	if pending := env.pending(t, "creator-1"); len(pending) != 1 {
		t.Errorf("expected the capped candidate to stay pending, got %v", pending)
	}
}

func TestEvaluateCreator_LeaseHeld(t *testing.T) {
	env := newTestEnv(t)
	env.schedule(t, "creator-1", nudge.KeyFirstBrandVisit, baseTime)

	token, err := env.deps.Lock.Acquire(context.Background(), "creator-1", time.Minute)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	outcome := env.evaluate(t, "creator-1")
	if !outcome.Conflict || outcome.Sent != nil {
		t.Errorf("expected a conflict without a send, got %+v", outcome)
	}
	if pending := env.pending(t, "creator-1"); len(pending) != 1 {
		t.Errorf("expected the candidate to stay pending, got %v", pending)
	}

	if err := env.deps.Lock.Release(context.Background(), "creator-1", token); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if outcome := env.evaluate(t, "creator-1"); outcome.Sent == nil {
		t.Error("expected a send once the lease is released")
	}
}
