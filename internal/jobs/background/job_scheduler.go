package background

import (
	"context"
	"fmt"
	"sync"
	"time"

	"marketmedia/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/labstack/gommon/log"
)

const driftAuditJob = "storage-drift-audit"

// JobScheduler runs periodic maintenance jobs for the media service
type JobScheduler struct {
	scheduler  gocron.Scheduler
	auditSvc   services.DriftAuditService
	logger     *log.Logger
	jobs       map[string]gocron.Job
	lastReport *services.DriftReport
	mu         sync.RWMutex
}

// NewJobScheduler creates a scheduler with the drift audit registered at the
// given interval. A zero interval disables the audit.
func NewJobScheduler(auditSvc services.DriftAuditService, auditInterval time.Duration, logger *log.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		auditSvc:  auditSvc,
		logger:    logger,
		jobs:      make(map[string]gocron.Job),
	}

	if auditInterval > 0 {
		if err := js.AddJob(driftAuditJob, auditInterval, js.RunDriftAudit, context.Background()); err != nil {
			return nil, fmt.Errorf("failed to create drift audit job: %w", err)
		}
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.mu.RLock()
	count := len(js.jobs)
	js.mu.RUnlock()

	js.logger.Infof("Starting background job scheduler with %d jobs", count)
	js.scheduler.Start()
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	js.logger.Infof("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// RunDriftAudit classifies every stored image URL and keeps the report.
func (js *JobScheduler) RunDriftAudit(ctx context.Context) error {
	report, err := js.auditSvc.Run(ctx)
	if err != nil {
		js.logger.Errorf("drift audit failed: %v", err)
		return err
	}

	js.mu.Lock()
	js.lastReport = report
	js.mu.Unlock()

	if !report.Clean() {
		js.logger.Warnf("drift audit found %d non-canonical image urls", len(report.Findings))
	}
	return nil
}

// LastDriftReport returns the most recent audit result, or nil before the
// first run.
func (js *JobScheduler) LastDriftReport() *services.DriftReport {
	js.mu.RLock()
	defer js.mu.RUnlock()
	return js.lastReport
}

// AddJob adds a job to the scheduler. Overlapping runs of the same job are
// skipped.
func (js *JobScheduler) AddJob(name string, interval time.Duration, taskFn any, params ...any) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	js.jobs[name] = job
	js.logger.Debugf("Added job: %s every %s", name, interval)
	return nil
}

// RemoveJob removes a job from the scheduler
func (js *JobScheduler) RemoveJob(name string) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobs[name]; exists {
		err := js.scheduler.RemoveJob(job.ID())
		delete(js.jobs, name)
		return err
	}
	return nil
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]any {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}

	status := map[string]any{
		"total_jobs": len(js.jobs),
		"jobs":       names,
	}
	if js.lastReport != nil {
		status["last_drift_audit"] = js.lastReport.FinishedAt
	}
	return status
}
