package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ratulDIU/RentoVerse/internal/jobs"
	"github.com/ratulDIU/RentoVerse/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner
func NewScheduler(jobRunner *jobs.JobRunner) *Scheduler {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	s.registerJobs()
	return s
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() {
	cfg := s.jobs.Config().Escrow

	// Deadline sweep, every 15 minutes by default. robfig/cron runs each
	// entry sequentially, so ticks never overlap.
	_, err := s.cron.AddFunc(cfg.SweepCron, s.jobs.SweepEscrow)
	if err != nil {
		logger.Error("Failed to register SweepEscrow job", "error", err)
		return
	}

	logger.Info("Escrow sweep registered", "cron", cfg.SweepCron)
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
}

// Stop gracefully stops the cron scheduler
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}
