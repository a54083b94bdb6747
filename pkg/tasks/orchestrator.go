package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marketpulse/core/pkg/logger"
	"github.com/marketpulse/core/pkg/progress"
)

// SubmitResult is the structured outcome of a submission. A rejection
// is a normal negative result, never an error condition.
type SubmitResult struct {
	Accepted bool   `json:"accepted"`
	TaskID   string `json:"task_id,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// stateTable is the guarded mutation surface shared by both admission
// flavors; running jobs report back only through it.
type stateTable interface {
	SetMessage(taskID, message string)
	Finalize(taskID string, success bool, message string, prog float64, detail map[string]progress.Record)
}

// Orchestrator admits catalog jobs against the task tables, dispatches
// them on background goroutines and finalizes their state. Job faults
// are captured into state and logged, never propagated to the
// submitter.
type Orchestrator struct {
	catalog  *Catalog
	registry *Registry
	slot     *Slot
	store    *progress.Store

	// workDir is entered before every callable and restored after. The
	// chdir is process-wide and each admission table only excludes its
	// own entries, so a keyed task and a global-slot task running at
	// the same time can contend here.
	workDir string

	log *logger.Logger
	wg  sync.WaitGroup
}

func NewOrchestrator(catalog *Catalog, store *progress.Store, workDir string, log *logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.New("orchestrator")
	}
	return &Orchestrator{
		catalog:  catalog,
		registry: NewRegistry(),
		slot:     NewSlot(),
		store:    store,
		workDir:  workDir,
		log:      log,
	}
}

// Registry exposes the keyed task table for status queries.
func (o *Orchestrator) Registry() *Registry { return o.registry }

// Catalog exposes the job catalog.
func (o *Orchestrator) Catalog() *Catalog { return o.catalog }

// Submit admits jobID against the keyed registry and launches it in the
// background. The call returns as soon as admission is decided.
func (o *Orchestrator) Submit(jobID string) SubmitResult {
	return o.submit(jobID, o.registry.Admit, o.registry)
}

// SubmitGlobal admits jobID against the single global slot.
func (o *Orchestrator) SubmitGlobal(jobID string) SubmitResult {
	return o.submit(jobID, o.slot.Admit, o.slot)
}

func (o *Orchestrator) submit(jobID string, admit func(jobID, message string) (string, error), table stateTable) SubmitResult {
	job, ok := o.catalog.Get(jobID)
	if !ok {
		o.log.Warn().
			Str("action", "submit_rejected").
			Str("job_id", jobID).
			Str("reason", ReasonUnknownJob).
			Msg("Submission for unknown job")
		return SubmitResult{Accepted: false, Reason: ReasonUnknownJob}
	}

	taskID, err := admit(job.ID, "task admitted")
	if err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			o.log.Info().
				Str("action", "submit_rejected").
				Str("job_id", jobID).
				Str("reason", ReasonAlreadyRunning).
				Msg("Submission rejected while another job is running")
			return SubmitResult{Accepted: false, Reason: ReasonAlreadyRunning}
		}
		return SubmitResult{Accepted: false, Reason: err.Error()}
	}

	// Stale sub-task records from a previous run must not leak into
	// this execution's aggregate.
	for _, key := range job.ProgressKeys {
		o.store.Clear(key)
	}

	o.wg.Add(1)
	go o.run(taskID, job, table)

	return SubmitResult{Accepted: true, TaskID: taskID}
}

// run executes the job callable on its own goroutine and finalizes the
// task state on both outcomes.
func (o *Orchestrator) run(taskID string, job Job, table stateTable) {
	defer o.wg.Done()

	requestID := uuid.New().String()
	jobLogger := o.log.WithRequestID(requestID).WithJob(job.ID).WithTask(taskID)

	table.SetMessage(taskID, job.StatusMessage)
	jobLogger.LogJobStart(job.ID, job.DisplayName)
	start := time.Now()

	err := o.invoke(job, jobLogger)

	detail := o.store.GetMany(job.ProgressKeys)
	prog, ok := progress.Aggregate(detail)
	if !ok {
		// A finished job with no readable sub-progress reports as
		// fully complete.
		prog = 100
	}

	if err != nil {
		jobLogger.Error().
			Err(err).
			Str("action", "job_failed").
			Dur("duration", time.Since(start)).
			Msg("Job execution failed")
		table.Finalize(taskID, false, fmt.Sprintf("%s failed: %v", job.DisplayName, err), prog, detail)
	} else {
		table.Finalize(taskID, true, fmt.Sprintf("%s completed", job.DisplayName), prog, detail)
	}

	for _, key := range job.ProgressKeys {
		o.store.Clear(key)
	}

	jobLogger.LogJobComplete(job.ID, time.Since(start), err == nil)
}

// invoke runs the callable inside the working-directory scope and turns
// panics into captured errors so a misbehaving job never takes the
// process down.
func (o *Orchestrator) invoke(job Job, jobLogger *logger.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()

	if o.workDir != "" && o.workDir != "." {
		prev, wdErr := os.Getwd()
		if wdErr != nil {
			jobLogger.Warn().Err(wdErr).Msg("Could not capture working directory")
		} else if wdErr = os.Chdir(o.workDir); wdErr != nil {
			jobLogger.Warn().Err(wdErr).Str("dir", o.workDir).Msg("Could not enter job working directory")
		} else {
			defer func() {
				if rerr := os.Chdir(prev); rerr != nil {
					jobLogger.Error().Err(rerr).Str("dir", prev).Msg("Failed to restore working directory")
				}
			}()
		}
	}

	ctx := jobLogger.ToContext(context.Background())
	return job.Run(ctx)
}

// Status returns a snapshot of the identified task. While the task is
// running its progress is recomputed live from the progress store, so a
// query always reflects the freshest sub-task data.
func (o *Orchestrator) Status(taskID string) (TaskState, bool) {
	state, ok := o.registry.Get(taskID)
	if !ok {
		return TaskState{}, false
	}
	return o.refresh(state), true
}

// ActiveTasks returns live snapshots of every running task.
func (o *Orchestrator) ActiveTasks() []TaskState {
	active := o.registry.Active()
	for i, state := range active {
		active[i] = o.refresh(state)
	}
	return active
}

// GlobalStatus returns a live snapshot of the global slot.
func (o *Orchestrator) GlobalStatus() TaskState {
	return o.refresh(o.slot.Snapshot())
}

// refresh pulls current sub-task progress for a running task.
func (o *Orchestrator) refresh(state TaskState) TaskState {
	if !state.Running {
		return state
	}
	job, ok := o.catalog.Get(state.JobID)
	if !ok || len(job.ProgressKeys) == 0 {
		return state
	}
	detail := o.store.GetMany(job.ProgressKeys)
	state.ProgressDetail = detail
	if prog, ok := progress.Aggregate(detail); ok {
		state.Progress = prog
	}
	return state
}

// Wait blocks until all in-flight executions have finalized. Used on
// shutdown and in tests.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}
