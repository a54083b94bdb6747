package jobs

import "context"

// ScheduledJob is a job the cron runner can trigger on a schedule.
type ScheduledJob interface {
	// Execute runs the job with the given context
	Execute(ctx context.Context) error

	// Name returns a human-readable name for the job
	Name() string

	// Schedule returns the cron schedule expression for this job
	// Format: "minute hour day month weekday" or "@every duration"
	Schedule() string
}

// Runner manages and schedules multiple jobs
type Runner interface {
	// RegisterJob adds a job to the runner
	RegisterJob(job ScheduledJob) error

	// Start begins executing all registered jobs according to their schedules
	Start()

	// Stop gracefully shuts down the runner
	Stop()

	// GetJobs returns all registered jobs
	GetJobs() []ScheduledJob
}
