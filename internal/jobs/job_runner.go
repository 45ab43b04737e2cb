package jobs

import (
	"dumpster-backoffice/internal/config"
	"dumpster-backoffice/internal/logger"
	"dumpster-backoffice/internal/repository"
	"dumpster-backoffice/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	repos  *Repositories
	clock  service.Clock
	config *config.Config
}

// Repositories holds the data access the jobs need
type Repositories struct {
	Assets   repository.AssetRepository
	Bookings repository.BookingRepository
	Invoices repository.InvoiceRepository
	Payments repository.PaymentRepository
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(repos *Repositories, clock service.Clock, cfg *config.Config) *JobRunner {
	return &JobRunner{
		repos:  repos,
		clock:  clock,
		config: cfg,
	}
}

// Config returns the configuration the runner was built with
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

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllNightlyJobs runs every job once (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.ReconcileInvoiceBalances()
	jr.TransitionDayDigest()
}
