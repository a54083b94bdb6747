package jobs

import (
	"context"
	"fmt"

	"github.com/marketpulse/core/pkg/schedule"
	"github.com/marketpulse/core/pkg/tasks"
)

// scheduleEntryJob adapts one schedule entry into a ScheduledJob that
// submits the unattended job through the orchestrator. Every entry
// triggers the same catalog job, matching the rendered scheduler file,
// where each line invokes the fixed runner command.
type scheduleEntryJob struct {
	entry schedule.Entry
	jobID string
	orch  *tasks.Orchestrator
}

// NewScheduleEntryJob wraps a schedule entry for the in-process runner.
func NewScheduleEntryJob(entry schedule.Entry, jobID string, orch *tasks.Orchestrator) ScheduledJob {
	return &scheduleEntryJob{entry: entry, jobID: jobID, orch: orch}
}

func (j *scheduleEntryJob) Name() string {
	if j.entry.Description != "" {
		return j.entry.Description
	}
	return j.jobID
}

func (j *scheduleEntryJob) Schedule() string {
	return j.entry.Cron
}

// Execute submits through normal admission control, so a trigger that
// fires while a previous run is still going is rejected, not stacked.
func (j *scheduleEntryJob) Execute(ctx context.Context) error {
	result := j.orch.Submit(j.jobID)
	if !result.Accepted {
		return fmt.Errorf("submission rejected: %s", result.Reason)
	}
	return nil
}

// RegisterScheduleEntries registers every enabled entry with the
// runner. Disabled entries are skipped, matching the rendered file.
func RegisterScheduleEntries(runner Runner, entries []schedule.Entry, jobID string, orch *tasks.Orchestrator) error {
	for _, entry := range entries {
		if !entry.IsEnabled() || entry.Cron == "" {
			continue
		}
		if err := runner.RegisterJob(NewScheduleEntryJob(entry, jobID, orch)); err != nil {
			return err
		}
	}
	return nil
}
