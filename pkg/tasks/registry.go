package tasks

import (
	"fmt"
	"sync"
	"time"

	"github.com/marketpulse/core/pkg/progress"
)

// Registry is the keyed task-state table: every admitted execution gets
// its own addressable entry, and terminal states are kept as history.
// Admission is still globally exclusive: a submission is rejected while
// any entry is running, so at most one background job of any type runs
// at a time.
type Registry struct {
	mu    sync.Mutex
	tasks map[string]*TaskState
}

func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]*TaskState)}
}

// Admit reserves a run for jobID. It returns the generated task ID, or
// ErrAlreadyRunning when any task in the table is still running.
func (r *Registry) Admit(jobID, message string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tasks {
		if t.Running {
			return "", ErrAlreadyRunning
		}
	}

	now := time.Now()
	taskID := fmt.Sprintf("%s_%d", jobID, now.Unix())
	// Same job admitted twice within a second would collide; disambiguate.
	if _, exists := r.tasks[taskID]; exists {
		taskID = fmt.Sprintf("%s_%d", jobID, now.UnixNano())
	}

	r.tasks[taskID] = &TaskState{
		TaskID:    taskID,
		JobID:     jobID,
		Running:   true,
		Message:   message,
		StartTime: now,
	}
	return taskID, nil
}

// Get returns a snapshot of the task, if known.
func (r *Registry) Get(taskID string) (TaskState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[taskID]
	if !ok {
		return TaskState{}, false
	}
	return t.clone(), true
}

// Active returns snapshots of all running tasks.
func (r *Registry) Active() []TaskState {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []TaskState
	for _, t := range r.tasks {
		if t.Running {
			out = append(out, t.clone())
		}
	}
	return out
}

// SetMessage updates the human-readable status of a running task.
func (r *Registry) SetMessage(taskID, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[taskID]; ok {
		t.Message = message
	}
}

// Finalize transitions the task to its terminal state. Entries are
// never deleted; completed runs stay queryable.
func (r *Registry) Finalize(taskID string, success bool, message string, prog float64, detail map[string]progress.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[taskID]
	if !ok {
		return
	}
	now := time.Now()
	t.Running = false
	t.Success = &success
	t.Message = message
	t.Progress = prog
	t.ProgressDetail = detail
	t.EndTime = &now
}
