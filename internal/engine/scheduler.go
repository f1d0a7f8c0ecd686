package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a periodic mapping verification so unmapped items
// surface before the next interactive run instead of during it.
type Scheduler struct {
	cron   *cron.Cron
	engine *Engine
	log    *slog.Logger
}

// NewScheduler creates a Scheduler that verifies list mappings on an
// interval.
func NewScheduler(
	eng *Engine,
	interval time.Duration,
	log *slog.Logger,
) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:   c,
		engine: eng,
		log:    log,
	}

	if _, err := c.AddFunc(
		"@every "+interval.String(),
		s.runVerification,
	); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runVerification() {
	ctx := context.Background()
	s.log.Info("scheduled mapping verification starting")

	mapped, unmapped, err := s.engine.VerifyMappings(ctx)
	if err != nil {
		s.log.Error("scheduled mapping verification failed", "error", err)
		return
	}
	if len(unmapped) > 0 {
		s.log.Warn("list has unmapped items",
			"mapped", len(mapped),
			"unmapped", len(unmapped),
			"items", unmapped,
		)
		return
	}
	s.log.Info("all list items mapped", "mapped", len(mapped))
}
