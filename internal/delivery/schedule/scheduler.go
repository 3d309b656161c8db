package schedule

import (
	"context"
	"errors"
	"time"

	"tamaqBack/internal/delivery/repo"
)

const dueBatchSize = 100

// Logger provides minimal logging for the scheduler.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// TransitionsRepository lists and finishes persisted transitions.
type TransitionsRepository interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]repo.Transition, error)
	Finish(ctx context.Context, id int64) error
}

// Applier executes a single due transition.
type Applier interface {
	ApplyTransition(ctx context.Context, t repo.Transition) error
}

// Scheduler polls the order_transitions table and applies due rows.
// Because the schedule is persisted, pending transitions survive process
// restarts; a row that fails to apply stays pending and is retried on the
// next tick.
type Scheduler struct {
	transitions TransitionsRepository
	applier     Applier
	logger      Logger
	tick        time.Duration
}

// New constructs a Scheduler.
func New(transitions TransitionsRepository, applier Applier, logger Logger, tick time.Duration) *Scheduler {
	return &Scheduler{transitions: transitions, applier: applier, logger: logger, tick: tick}
}

// Run launches the polling loop until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick processes one batch of due transitions.
func (s *Scheduler) Tick(ctx context.Context) {
	due, err := s.transitions.ListDue(ctx, time.Now(), dueBatchSize)
	if err != nil {
		s.logger.Errorf("delivery schedule: list due failed: %v", err)
		return
	}
	for _, t := range due {
		if err := s.applier.ApplyTransition(ctx, t); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Errorf("delivery schedule: apply order %d %s -> %s failed: %v", t.OrderID, t.FromStatus, t.ToStatus, err)
			continue
		}
		if err := s.transitions.Finish(ctx, t.ID); err != nil {
			s.logger.Errorf("delivery schedule: finish transition %d failed: %v", t.ID, err)
		}
	}
}
