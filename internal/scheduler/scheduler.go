// Package scheduler runs periodic maintenance jobs on cron schedules:
// sweeping expired cache entries and trimming old events. The watch monitor
// has its own loop and does not go through here.
package scheduler

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps a cron runner with named jobs and structured logging.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates an empty scheduler.
func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{cron: cron.New(), logger: logger}
}

// Add registers a job under a cron expression. The job's error is logged,
// never propagated; maintenance must not take the process down.
func (s *Scheduler) Add(name, spec string, job func() error) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.logger.Info("maintenance job starting", "job", name)
		if err := job(); err != nil {
			s.logger.Error("maintenance job failed", "job", name, "error", err)
			return
		}
		s.logger.Info("maintenance job finished", "job", name)
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	return nil
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("maintenance scheduler started")
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("maintenance scheduler stopped")
}
