package jobs

import (
	"github.com/ratulDIU/RentoVerse/internal/config"
	"github.com/ratulDIU/RentoVerse/internal/logger"
	"github.com/ratulDIU/RentoVerse/internal/service"
)

// JobRunner coordinates the scheduled escrow jobs
type JobRunner struct {
	bookingSvc service.BookingService
	config     *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(bookingSvc service.BookingService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		bookingSvc: bookingSvc,
		config:     cfg,
	}
}

// Config exposes the loaded configuration to the scheduler
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Debug("Starting job", "job", jobName)
	jobFunc()
	logger.Debug("Job completed", "job", jobName)
}
