package jobs

import (
	"context"
	"fmt"

	"github.com/marketpulse/core/pkg/tasks"
)

// Job identifiers registered by BuildCatalog.
const (
	JobSpotSync    = "spot_sync"
	JobETFSync     = "etf_sync"
	JobHistorySync = "history_sync"
	JobComplete    = "complete"
)

// BuildCatalog registers the standard market-data jobs and their
// dataset mappings. The complete job refreshes every dataset in order
// and is what the scheduler triggers.
func BuildCatalog(syncer *Syncer) (*tasks.Catalog, error) {
	catalog := tasks.NewCatalog()

	entries := []tasks.Job{
		{
			ID:            JobSpotSync,
			DisplayName:   "Spot Quotes",
			Description:   "Refresh real-time equity quotes",
			StatusMessage: "Refreshing spot quotes...",
			ProgressKeys:  []string{KeySpot},
			Run:           syncer.SyncSpot,
		},
		{
			ID:            JobETFSync,
			DisplayName:   "ETF Quotes",
			Description:   "Refresh exchange-traded-fund quotes",
			StatusMessage: "Refreshing ETF quotes...",
			ProgressKeys:  []string{KeyETF},
			Run:           syncer.SyncETF,
		},
		{
			ID:            JobHistorySync,
			DisplayName:   "Daily History",
			Description:   "Refresh daily OHLCV history",
			StatusMessage: "Refreshing daily history...",
			ProgressKeys:  []string{KeyHistory},
			Run:           syncer.SyncHistory,
		},
		{
			ID:            JobComplete,
			DisplayName:   "Complete Refresh",
			Description:   "Refresh every market dataset",
			StatusMessage: "Refreshing all datasets...",
			ProgressKeys:  []string{KeySpot, KeyETF, KeyHistory},
			Run:           syncer.SyncAll,
		},
	}
	for _, job := range entries {
		if err := catalog.Register(job); err != nil {
			return nil, fmt.Errorf("failed to register job %q: %w", job.ID, err)
		}
	}

	datasets := map[string]string{
		KeySpot:    JobSpotSync,
		KeyETF:     JobETFSync,
		KeyHistory: JobHistorySync,
	}
	for dataset, jobID := range datasets {
		if err := catalog.MapDataset(dataset, jobID); err != nil {
			return nil, err
		}
	}

	return catalog, nil
}

// SyncAll refreshes every dataset sequentially. A failed dataset stops
// the run; earlier datasets keep their completed progress.
func (s *Syncer) SyncAll(ctx context.Context) error {
	steps := []func(context.Context) error{
		s.SyncSpot,
		s.SyncETF,
		s.SyncHistory,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}
