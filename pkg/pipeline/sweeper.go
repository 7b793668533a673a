package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/AccelByte/extend-creator-nudge/pkg/service"
	"github.com/sirupsen/logrus"
)

// Sweeper periodically evaluates creators whose delayed candidates became due.
type Sweeper struct {
	manager   *Manager
	scheduler service.Scheduler
	interval  time.Duration
	batchSize int64
}

// NewSweeper creates a sweeper. batchSize bounds the creators per tick.
func NewSweeper(manager *Manager, scheduler service.Scheduler, interval time.Duration, batchSize int64) *Sweeper {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Sweeper{
		manager:   manager,
		scheduler: scheduler,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run sweeps on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logrus.Infof("nudge sweeper started (interval: %s, batch: %d)", s.interval, s.batchSize)
	for {
		select {
		case <-ctx.Done():
			logrus.Info("nudge sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				logrus.Errorf("nudge sweep failed: %v", err)
			}
		}
	}
}

// SweepOnce evaluates one batch of due creators and returns how many nudges
// were dispatched. A failing creator is logged and does not stop the batch.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	now := s.manager.Engine().Now()
	creators, err := s.scheduler.DueCreators(ctx, now, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list due creators: %w", err)
	}

	sent := 0
	for _, creatorID := range creators {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		outcome, err := s.manager.EvaluateCreator(ctx, creatorID)
		if err != nil {
			logrus.Errorf("failed to evaluate creator %s: %v", creatorID, err)
			s.postpone(ctx, creatorID, now)
			continue
		}
		if outcome.Sent != nil {
			sent++
			continue
		}
		s.postpone(ctx, creatorID, now)
	}

	if len(creators) > 0 {
		logrus.Debugf("swept %d due creator(s), dispatched %d nudge(s)", len(creators), sent)
	}
	return sent, nil
}

// postpone pushes a creator that did not dispatch to the back of the index
// until the next tick.
func (s *Sweeper) postpone(ctx context.Context, creatorID string, now time.Time) {
	if err := s.scheduler.Postpone(ctx, creatorID, now.Add(s.interval)); err != nil {
		logrus.Warnf("failed to postpone creator %s: %v", creatorID, err)
	}
}
