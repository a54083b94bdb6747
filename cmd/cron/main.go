package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marketpulse/core/internal/config"
	"github.com/marketpulse/core/pkg/jobs"
	"github.com/marketpulse/core/pkg/logger"
	"github.com/marketpulse/core/pkg/progress"
	"github.com/marketpulse/core/pkg/schedule"
	"github.com/marketpulse/core/pkg/services"
	"github.com/marketpulse/core/pkg/settings"
	"github.com/marketpulse/core/pkg/tasks"
)

func main() {
	// Parse command line flags
	var (
		jobName = flag.String("job", "", "Run specific job once (spot_sync, etf_sync, history_sync, complete)")
		once    = flag.Bool("once", false, "Run job once and exit")
	)
	flag.Parse()

	logger.SetupLogger()
	log := logger.New("cron-service")

	cfg := config.Load()

	// Initialize services
	store := progress.NewStore(cfg.Data.ProgressFile, log)
	manager := settings.NewManager(cfg.Data.SettingsFile, log)
	manager.SetScheduleHook(func(entries []schedule.Entry) error {
		return schedule.WriteFile(cfg.Schedule.CrontabFile, entries, cfg.Schedule.Command, cfg.Schedule.LogFile)
	})

	client := services.NewFetchClient(cfg, log)
	syncer := jobs.NewSyncer(client, store, log)
	catalog, err := jobs.BuildCatalog(syncer)
	if err != nil {
		log.Fatal().
			Err(err).
			Str("action", "catalog_build_failed").
			Msg("Failed to build job catalog")
	}
	orchestrator := tasks.NewOrchestrator(catalog, store, cfg.Data.WorkDir, log)

	// Handle single job execution
	if *once && *jobName != "" {
		runOnce(orchestrator, *jobName, log)
		return
	}

	// Scheduled mode: register every enabled schedule entry with the
	// in-process runner. The entries all trigger the complete refresh,
	// matching the rendered scheduler file.
	runner := jobs.NewRunner(log)
	if err := jobs.RegisterScheduleEntries(runner, manager.ScheduleEntries(), jobs.JobComplete, orchestrator); err != nil {
		log.Fatal().
			Err(err).
			Str("action", "schedule_registration_failed").
			Msg("Failed to register schedule entries")
	}

	runner.Start()
	log.Info().
		Str("action", "cron_started").
		Int("job_count", len(runner.GetJobs())).
		Msg("Cron service started")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Str("action", "shutdown_initiated").Msg("Shutting down cron service")
	runner.Stop()
	orchestrator.Wait()
	log.Info().Str("action", "shutdown_complete").Msg("Cron service stopped")
}

// runOnce submits one job through normal admission and waits for it to
// finish, so one-shot runs get the same finalization as API runs.
func runOnce(orchestrator *tasks.Orchestrator, jobName string, log *logger.Logger) {
	result := orchestrator.Submit(jobName)
	if !result.Accepted {
		log.Fatal().
			Str("action", "job_rejected").
			Str("job_id", jobName).
			Str("reason", result.Reason).
			Msg("Failed to submit job")
	}

	start := time.Now()
	orchestrator.Wait()

	state, ok := orchestrator.Status(result.TaskID)
	if !ok || state.Success == nil || !*state.Success {
		message := "unknown"
		if ok {
			message = state.Message
		}
		log.Fatal().
			Str("action", "job_failed").
			Str("job_id", jobName).
			Str("task_id", result.TaskID).
			Dur("duration", time.Since(start)).
			Msg("Job failed: " + message)
	}

	log.Info().
		Str("action", "job_complete").
		Str("job_id", jobName).
		Str("task_id", result.TaskID).
		Dur("duration", time.Since(start)).
		Msg("Job completed successfully")
}
