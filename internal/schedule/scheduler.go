// Package schedule owns the single recurring trigger that drives the
// reminder pipeline. At most one cron entry is active at a time and
// replacing it cancels the previous one, so two live triggers can never
// double-fire a tick.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	baseCtx context.Context
	tick    func(ctx context.Context)
	logger  *slog.Logger

	mu    sync.Mutex
	cron  *cron.Cron
	entry cron.EntryID

	// tickMu serializes pipeline runs. A trigger that fires while a tick
	// is in flight is skipped, never queued or interleaved.
	tickMu sync.Mutex
}

func New(ctx context.Context, tick func(ctx context.Context), loc *time.Location, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		baseCtx: ctx,
		tick:    tick,
		logger:  logger,
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cron.DefaultLogger)),
		),
	}
}

// Start installs the recurring trigger for the given cron expression.
// An already installed trigger is removed first.
func (s *Scheduler) Start(cronExpr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entry != 0 {
		s.cron.Remove(s.entry)
		s.entry = 0
	}

	entry, err := s.cron.AddFunc(cronExpr, s.run)
	if err != nil {
		return fmt.Errorf("schedule: invalid cron expression %q: %w", cronExpr, err)
	}
	s.entry = entry
	s.cron.Start()

	s.logger.Info("trigger installed", "cron", cronExpr)
	return nil
}

// ForceRun executes the tick handler out of band, through exactly the
// same path a scheduled trigger takes. It blocks until the tick
// completes, or returns immediately when one is already in flight.
func (s *Scheduler) ForceRun() {
	s.run()
}

// Stop cancels the trigger and returns a context that is done once any
// in-flight job has finished.
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entry != 0 {
		s.cron.Remove(s.entry)
		s.entry = 0
	}
	return s.cron.Stop()
}

func (s *Scheduler) run() {
	if !s.tickMu.TryLock() {
		s.logger.Warn("tick already in flight, skipping")
		return
	}
	defer s.tickMu.Unlock()

	s.tick(s.baseCtx)
}
