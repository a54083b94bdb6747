package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/marketpulse/core/pkg/logger"
)

type cronRunner struct {
	cron *cron.Cron
	jobs []ScheduledJob
	log  *logger.Logger
}

// NewRunner creates a cron-backed job runner.
func NewRunner(log *logger.Logger) Runner {
	if log == nil {
		log = logger.New("job-runner")
	}
	return &cronRunner{
		cron: cron.New(cron.WithLocation(time.UTC)),
		jobs: make([]ScheduledJob, 0),
		log:  log,
	}
}

func (m *cronRunner) RegisterJob(job ScheduledJob) error {
	if job == nil {
		return fmt.Errorf("job cannot be nil")
	}

	m.log.Info().
		Str("action", "register_job").
		Str("job_name", job.Name()).
		Str("schedule", job.Schedule()).
		Msg("Registering scheduled job")

	_, err := m.cron.AddFunc(job.Schedule(), func() {
		requestID := uuid.New().String()
		jobLogger := m.log.WithRequestID(requestID).WithJob(job.Name())

		ctx := jobLogger.ToContext(context.Background())
		jobLogger.LogJobStart(job.Name(), job.Name())
		start := time.Now()

		if err := job.Execute(ctx); err != nil {
			jobLogger.Error().
				Err(err).
				Str("action", "job_failed").
				Dur("duration", time.Since(start)).
				Msg("Scheduled job failed")
		} else {
			jobLogger.LogJobComplete(job.Name(), time.Since(start), true)
		}
	})

	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", job.Name(), err)
	}

	m.jobs = append(m.jobs, job)
	return nil
}

func (m *cronRunner) Start() {
	m.log.Info().
		Str("action", "start").
		Int("job_count", len(m.jobs)).
		Msg("Starting job runner")
	m.cron.Start()
}

func (m *cronRunner) Stop() {
	m.log.Info().Str("action", "stop_initiated").Msg("Stopping job runner")
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.log.Info().Str("action", "stopped").Msg("Job runner stopped")
}

func (m *cronRunner) GetJobs() []ScheduledJob {
	return append([]ScheduledJob(nil), m.jobs...)
}
