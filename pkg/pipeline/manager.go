package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/AccelByte/extend-creator-nudge/pkg/action"
	"github.com/AccelByte/extend-creator-nudge/pkg/common"
	"github.com/AccelByte/extend-creator-nudge/pkg/metrics"
	"github.com/AccelByte/extend-creator-nudge/pkg/nudge"
	"github.com/AccelByte/extend-creator-nudge/pkg/service"
	"github.com/AccelByte/extend-creator-nudge/pkg/signal"
	"github.com/AccelByte/extend-creator-nudge/pkg/state"
	"github.com/sirupsen/logrus"
)

// creatorLeaseTTL bounds one evaluation cycle, WhatsApp retries included.
const creatorLeaseTTL = 2 * time.Minute

// Manager orchestrates the complete nudge pipeline:
// Event → Signal → Candidates → Decision → Dispatch
type Manager struct {
	processor     *signal.Processor
	engine        *nudge.Engine
	executor      *action.Executor
	deps          *service.Dependencies
	builder       *signal.ContextBuilder
	routes        map[nudge.Channel]string
	maxPendingAge time.Duration
	logger        *logrus.Entry
}

// NewManager creates a new pipeline manager with all required components.
// routes maps each delivery channel to the action ID that serves it.
// A zero maxPendingAge keeps deferred candidates until they become eligible
// or permanently moot.
func NewManager(
	processor *signal.Processor,
	engine *nudge.Engine,
	executor *action.Executor,
	deps *service.Dependencies,
	routes map[nudge.Channel]string,
	maxPendingAge time.Duration,
) *Manager {
	if routes == nil {
		routes = make(map[nudge.Channel]string)
	}

	return &Manager{
		processor:     processor,
		engine:        engine,
		executor:      executor,
		deps:          deps,
		builder:       signal.NewContextBuilder(),
		routes:        routes,
		maxPendingAge: maxPendingAge,
		logger:        logrus.WithField("component", "pipeline"),
	}
}

// Engine returns the decision engine.
func (m *Manager) Engine() *nudge.Engine {
	return m.engine
}

// Outcome reports what one evaluation cycle did for a creator.
type Outcome struct {
	CreatorID string
	// Sent is the dispatched rule, nil when nothing went out.
	Sent       *nudge.NudgeRule
	DispatchID string
	Delivered  []nudge.Channel
	// Decisions holds the engine decision for every due candidate.
	Decisions map[string]nudge.Decision
	Dropped   []string
	// Conflict is set when another worker claimed the winning send first.
	Conflict bool
}

// ProcessEvent applies a lifecycle event, schedules the candidates it raised
// and evaluates the creator. Unknown event types are ignored.
func (m *Manager) ProcessEvent(ctx context.Context, event signal.Event) (*Outcome, error) {
	log := m.logger.WithFields(logrus.Fields{"event_type": event.Type, "creator_id": event.CreatorID})
	log.Info("processing lifecycle event through pipeline")

	// Step 1: Convert event to signal
	sig, err := m.processor.Process(ctx, event)
	if errors.Is(err, signal.ErrUnknownEventType) {
		metrics.EventsTotal.WithLabelValues(event.Type, "ignored").Inc()
		log.Debug("event type has no processor, skipping pipeline")
		return &Outcome{CreatorID: event.CreatorID}, nil
	}
	if err != nil {
		metrics.EventsTotal.WithLabelValues(event.Type, "error").Inc()
		log.WithError(err).Error("failed to process event to signal")
		return nil, fmt.Errorf("signal processing failed: %w", err)
	}
	metrics.EventsTotal.WithLabelValues(event.Type, "processed").Inc()

	// Step 2: Schedule raised candidates
	if err := m.schedule(ctx, sig); err != nil {
		return nil, err
	}

	// Step 3: Evaluate whatever is due
	return m.EvaluateCreator(ctx, event.CreatorID)
}

func (m *Manager) schedule(ctx context.Context, sig signal.Signal) error {
	for _, trigger := range sig.Triggers() {
		rule, ok := m.engine.Catalog().Get(trigger.Key)
		if !ok {
			m.logger.Debugf("trigger %s has no catalog rule, not scheduling", trigger.Key)
			continue
		}

		candidate := service.Candidate{
			Key:         trigger.Key,
			TriggeredAt: trigger.TriggeredAt,
			DueAt:       trigger.TriggeredAt.Add(rule.Delay()),
		}
		if err := m.deps.Scheduler.Schedule(ctx, sig.CreatorID(), candidate); err != nil {
			return fmt.Errorf("failed to schedule %s for creator %s: %w", trigger.Key, sig.CreatorID(), err)
		}

		m.logger.WithFields(logrus.Fields{
			"creator_id": sig.CreatorID(),
			"nudge_key":  trigger.Key,
			"due_at":     candidate.DueAt,
		}).Debug("scheduled nudge candidate")
	}
	return nil
}

// EvaluateCreator runs one decision cycle over the creator's due candidates.
// At most one nudge is dispatched. Losing candidates stay pending unless they
// are permanently moot or older than the max pending age.
//
// The cycle holds the creator's lease, so state, history and channel counts
// are read and written by one worker at a time. When another worker holds the
// lease the outcome reports Conflict and the candidates stay pending.
func (m *Manager) EvaluateCreator(ctx context.Context, creatorID string) (*Outcome, error) {
	start := time.Now()
	defer func() {
		metrics.EvaluationDuration.Observe(time.Since(start).Seconds())
	}()

	outcome := &Outcome{CreatorID: creatorID, Decisions: make(map[string]nudge.Decision)}

	if m.deps.Lock != nil {
		token, err := m.deps.Lock.Acquire(ctx, creatorID, creatorLeaseTTL)
		if errors.Is(err, service.ErrCreatorLocked) {
			outcome.Conflict = true
			metrics.DecisionsTotal.WithLabelValues("", metrics.OutcomeConflict, "creator_locked").Inc()
			m.logger.Debugf("creator %s is being evaluated by another worker", creatorID)
			return outcome, nil
		}
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := m.deps.Lock.Release(context.WithoutCancel(ctx), creatorID, token); err != nil {
				m.logger.WithError(err).Warnf("failed to release lease for creator %s", creatorID)
			}
		}()
	}

	return m.evaluate(ctx, outcome)
}

func (m *Manager) evaluate(ctx context.Context, outcome *Outcome) (*Outcome, error) {
	creatorID := outcome.CreatorID
	now := m.engine.Now()

	due, err := m.deps.Scheduler.Due(ctx, creatorID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load due candidates: %w", err)
	}
	if len(due) == 0 {
		return outcome, nil
	}

	s, err := m.deps.StateStore.GetCreatorState(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator state: %w", err)
	}
	lastSent, err := m.deps.HistoryStore.LastSent(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load nudge history: %w", err)
	}
	counts, err := m.deps.ChannelTracker.CountLast7d(ctx, creatorID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load channel counts: %w", err)
	}

	eligible := make(map[string]*nudge.NudgeRule)
	for _, c := range due {
		nctx := m.builder.Build(s, lastSent, counts, c.Key, c.TriggeredAt, now)
		decision := m.engine.Evaluate(nctx)
		outcome.Decisions[c.Key] = decision

		switch {
		case decision.Eligible:
			eligible[c.Key] = decision.Rule
		case decision.Reason.Permanent():
			outcome.Dropped = append(outcome.Dropped, c.Key)
			metrics.DecisionsTotal.WithLabelValues(c.Key, metrics.OutcomeDropped, string(decision.Reason)).Inc()
		case m.maxPendingAge > 0 && now.Sub(c.TriggeredAt) > m.maxPendingAge:
			outcome.Dropped = append(outcome.Dropped, c.Key)
			metrics.DecisionsTotal.WithLabelValues(c.Key, metrics.OutcomeDropped, "max_pending_age").Inc()
		default:
			metrics.DecisionsTotal.WithLabelValues(c.Key, metrics.OutcomeSuppressed, string(decision.Reason)).Inc()
		}

		m.logger.WithFields(logrus.Fields{
			"creator_id": creatorID,
			"nudge_key":  c.Key,
			"eligible":   decision.Eligible,
			"reason":     decision.Reason,
		}).Debug("evaluated nudge candidate")
	}

	if len(outcome.Dropped) > 0 {
		if err := m.deps.Scheduler.Remove(ctx, creatorID, outcome.Dropped...); err != nil {
			return nil, fmt.Errorf("failed to drop moot candidates: %w", err)
		}
		m.logger.Infof("dropped %d moot candidate(s) for creator %s: %v", len(outcome.Dropped), creatorID, outcome.Dropped)
	}

	if len(eligible) == 0 {
		return outcome, nil
	}

	keys := make([]string, 0, len(eligible))
	for k := range eligible {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	winner, _ := m.engine.Pick(keys)
	for _, k := range keys {
		if k != winner {
			metrics.DecisionsTotal.WithLabelValues(k, metrics.OutcomeDeferred, "lower_priority").Inc()
		}
	}

	return m.dispatch(ctx, outcome, s, *eligible[winner], lastSent, counts, now)
}

func (m *Manager) dispatch(
	ctx context.Context,
	outcome *Outcome,
	s *state.CreatorState,
	rule nudge.NudgeRule,
	lastSent map[string]time.Time,
	counts map[string]int,
	now time.Time,
) (*Outcome, error) {
	creatorID := outcome.CreatorID
	scope := common.GetScopeFromContext(ctx, "pipeline.dispatch")
	defer scope.Finish()
	scope.SetLogger(m.logger.WithFields(logrus.Fields{"creator_id": creatorID, "nudge_key": rule.Key}))
	scope.TraceTag("creator_id", creatorID)
	scope.TraceTag("nudge_key", rule.Key)
	log := scope.Log
	ctx = scope.Ctx

	routes := m.routesFor(rule, s, counts)
	if len(routes) == 0 {
		metrics.DecisionsTotal.WithLabelValues(rule.Key, metrics.OutcomeSuppressed, "no_channel").Inc()
		log.Info("no deliverable channel, keeping candidate pending")
		return outcome, nil
	}

	var expected *time.Time
	if t, ok := lastSent[rule.Key]; ok {
		expected = &t
	}
	if err := m.deps.HistoryStore.ClaimSend(ctx, creatorID, rule.Key, expected, now); err != nil {
		if errors.Is(err, service.ErrConcurrentSend) {
			outcome.Conflict = true
			metrics.DecisionsTotal.WithLabelValues(rule.Key, metrics.OutcomeConflict, "").Inc()
			log.Info("send already claimed by another worker")
			return outcome, nil
		}
		return nil, fmt.Errorf("failed to claim send: %w", err)
	}

	d := action.NewDispatch(creatorID, rule, now)
	d.Phone = s.Phone
	d.Locale = s.Locale
	scope.TraceTag("dispatch_id", d.ID)

	results, execErr := m.executor.ExecuteMultiple(ctx, routes, d)
	for _, r := range results {
		if !r.Success {
			metrics.DispatchTotal.WithLabelValues(string(r.Channel), metrics.ResultFailure).Inc()
			continue
		}
		metrics.DispatchTotal.WithLabelValues(string(r.Channel), metrics.ResultSuccess).Inc()
		outcome.Delivered = append(outcome.Delivered, r.Channel)
		if err := m.deps.ChannelTracker.Increment(ctx, creatorID, string(r.Channel), now); err != nil {
			log.WithError(err).Warnf("failed to count %s delivery", r.Channel)
		}
	}

	outcome.Sent = &rule
	outcome.DispatchID = d.ID
	metrics.DecisionsTotal.WithLabelValues(rule.Key, metrics.OutcomeSent, "").Inc()

	if err := m.deps.Scheduler.Remove(ctx, creatorID, rule.Key); err != nil {
		log.WithError(err).Warn("failed to remove dispatched candidate")
	}
	m.recordSent(ctx, creatorID, rule.Key, now)

	if execErr != nil {
		scope.TraceError(execErr)
	}
	if len(outcome.Delivered) == 0 && execErr != nil {
		log.WithError(execErr).Error("nudge claimed but no channel delivered")
		return outcome, fmt.Errorf("dispatch failed: %w", execErr)
	}
	if execErr != nil {
		log.WithError(execErr).Warn("partial dispatch failure")
	}

	log.WithField("channels", outcome.Delivered).Info("nudge dispatched")
	return outcome, nil
}

// routesFor returns the routes for the rule's channels that can be used right
// now. WhatsApp is skipped without a phone number or at the weekly ceiling.
func (m *Manager) routesFor(rule nudge.NudgeRule, s *state.CreatorState, counts map[string]int) []action.Route {
	var routes []action.Route
	for _, ch := range rule.Channels {
		if ch == nudge.ChannelWhatsApp {
			if s.Phone == "" || counts[string(ch)] >= m.engine.Limits().WhatsAppWeeklyCeiling {
				metrics.DispatchTotal.WithLabelValues(string(ch), metrics.ResultSkipped).Inc()
				continue
			}
		}
		actionID, ok := m.routes[ch]
		if !ok {
			m.logger.Warnf("no action routed for channel %s", ch)
			metrics.DispatchTotal.WithLabelValues(string(ch), metrics.ResultSkipped).Inc()
			continue
		}
		routes = append(routes, action.Route{Channel: ch, ActionID: actionID})
	}
	return routes
}

// recordSent refreshes the cached last send on the creator state. The state
// is reloaded so that concurrent event updates are not overwritten.
func (m *Manager) recordSent(ctx context.Context, creatorID, key string, now time.Time) {
	s, err := m.deps.StateStore.GetCreatorState(ctx, creatorID)
	if err != nil {
		m.logger.WithError(err).Warnf("failed to reload state for creator %s", creatorID)
		return
	}
	state.RecordNudgeSent(s, key, now)
	if err := m.deps.StateStore.UpdateCreatorState(ctx, creatorID, s); err != nil {
		m.logger.WithError(err).Warnf("failed to save state for creator %s", creatorID)
	}
}
