package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/marketpulse/core/pkg/utils"
)

// RunFunc is the callable supplied by the host application. It runs
// synchronously to completion and reports failure as an error; the
// orchestrator never re-raises that error to the submitter.
type RunFunc func(ctx context.Context) error

// Job is one catalog entry: a long-running unit of work identified by a
// stable string key.
type Job struct {
	// ID is the stable identifier used for submission. When empty at
	// registration it is derived as a slug of the display name.
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	Description string `json:"description,omitempty"`
	// StatusMessage is shown while the job is running.
	StatusMessage string `json:"status_message"`
	// ProgressKeys are the sub-task keys this job reports under.
	ProgressKeys []string `json:"progress_keys,omitempty"`
	Run          RunFunc  `json:"-"`
}

// Catalog maps job identifiers to their executable entries, plus an
// optional dataset-to-job lookup used by the UI to find which job
// refreshes a given dataset.
type Catalog struct {
	mu       sync.RWMutex
	jobs     map[string]Job
	order    []string
	datasets map[string]string
}

func NewCatalog() *Catalog {
	return &Catalog{
		jobs:     make(map[string]Job),
		datasets: make(map[string]string),
	}
}

// Register adds a job to the catalog. The ID defaults to a slug of the
// display name.
func (c *Catalog) Register(job Job) error {
	if job.Run == nil {
		return fmt.Errorf("job %q has no run function", job.ID)
	}
	if job.ID == "" {
		job.ID = utils.NormalizeJobID(job.DisplayName)
	}
	if job.ID == "" {
		return fmt.Errorf("job has neither id nor display name")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.jobs[job.ID]; exists {
		return fmt.Errorf("job %q already registered", job.ID)
	}
	c.jobs[job.ID] = job
	c.order = append(c.order, job.ID)
	return nil
}

// Get returns the catalog entry for id.
func (c *Catalog) Get(id string) (Job, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	job, ok := c.jobs[id]
	return job, ok
}

// List returns all jobs in registration order.
func (c *Catalog) List() []Job {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Job, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.jobs[id])
	}
	return out
}

// MapDataset associates a dataset key with the job that refreshes it.
func (c *Catalog) MapDataset(dataset, jobID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.jobs[jobID]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownJob, jobID)
	}
	c.datasets[dataset] = jobID
	return nil
}

// JobForDataset resolves the job responsible for a dataset key.
func (c *Catalog) JobForDataset(dataset string) (Job, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.datasets[dataset]
	if !ok {
		return Job{}, false
	}
	job, ok := c.jobs[id]
	return job, ok
}

// Datasets returns a copy of the dataset-to-job mapping.
func (c *Catalog) Datasets() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.datasets))
	for k, v := range c.datasets {
		out[k] = v
	}
	return out
}
