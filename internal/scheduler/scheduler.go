// Package scheduler triggers batch runs on cron expressions.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Strangekim/jabdonsani/internal/batch"
)

// Scheduler fires batch jobs at configured cron times (UTC).
type Scheduler struct {
	runner *batch.Runner
	specs  []string
	logger *zap.SugaredLogger
	cron   *cron.Cron
}

// New creates a scheduler that triggers the runner at each cron spec.
func New(runner *batch.Runner, specs []string, logger *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		runner: runner,
		specs:  specs,
		logger: logger,
		cron:   cron.New(cron.WithLocation(time.UTC)),
	}
}

// Start registers all cron entries and starts the scheduler.
func (s *Scheduler) Start() error {
	for _, spec := range s.specs {
		spec := spec
		if _, err := s.cron.AddFunc(spec, func() { s.trigger(spec) }); err != nil {
			return fmt.Errorf("register cron %q: %w", spec, err)
		}
	}
	s.cron.Start()
	s.logger.Infow("scheduler started", "specs", s.specs)
	return nil
}

// Stop halts the scheduler. Jobs already launched keep running.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Infow("scheduler stopped")
}

func (s *Scheduler) trigger(spec string) {
	jobID, err := s.runner.Start(context.Background())
	if errors.Is(err, batch.ErrAlreadyRunning) {
		s.logger.Warnw("scheduled run skipped, batch in progress", "spec", spec)
		return
	}
	if err != nil {
		s.logger.Errorw("scheduled run failed to start", "spec", spec, "error", err)
		return
	}
	s.logger.Infow("scheduled run started", "spec", spec, "job_id", jobID)
}
