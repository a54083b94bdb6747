package jobs

import (
	"context"
	"fmt"

	"github.com/marketpulse/core/pkg/logger"
	"github.com/marketpulse/core/pkg/progress"
	"github.com/marketpulse/core/pkg/services"
)

// Progress keys the dataset jobs report under. Status readers average
// across whichever of these a job declares.
const (
	KeySpot    = "stock_spot"
	KeyETF     = "fund_etf"
	KeyHistory = "stock_history"
)

const defaultPageSize = 200

// Syncer fetches upstream market datasets page by page and reports
// per-dataset progress as it goes.
type Syncer struct {
	client *services.FetchClient
	store  *progress.Store
	log    *logger.Logger
}

func NewSyncer(client *services.FetchClient, store *progress.Store, log *logger.Logger) *Syncer {
	if log == nil {
		log = logger.New("syncer")
	}
	return &Syncer{
		client: client,
		store:  store,
		log:    log,
	}
}

// syncPaged walks every page of a paginated upstream dataset, invoking
// handle once per fetched page. Progress is reported against the total
// page count the first response announces; until then the total is
// unknown.
func (s *Syncer) syncPaged(ctx context.Context, key, path string, handle func(page int, data []byte) (int, error)) error {
	s.store.Update(key, 0, 0, "fetching "+key)

	page := 1
	totalPages := 0
	for {
		if err := ctx.Err(); err != nil {
			s.store.UpdateResult(key, int64(page-1), int64(totalPages), "cancelled", false)
			return err
		}

		data, err := s.client.FetchData(s.client.PagedURL(path, page, defaultPageSize))
		if err != nil {
			s.store.UpdateResult(key, int64(page-1), int64(totalPages), fmt.Sprintf("page %d failed", page), false)
			return fmt.Errorf("failed to fetch %s page %d: %w", key, page, err)
		}

		pages, err := handle(page, data)
		if err != nil {
			s.store.UpdateResult(key, int64(page-1), int64(totalPages), fmt.Sprintf("page %d failed", page), false)
			return fmt.Errorf("failed to process %s page %d: %w", key, page, err)
		}
		if totalPages == 0 {
			totalPages = pages
		}

		s.store.Update(key, int64(page), int64(totalPages), fmt.Sprintf("page %d of %d", page, totalPages))
		if page >= totalPages {
			break
		}
		page++
	}

	s.store.UpdateResult(key, int64(totalPages), int64(totalPages), "completed", true)
	s.log.Info().
		Str("action", "dataset_synced").
		Str("dataset", key).
		Int("pages", totalPages).
		Msg("Dataset sync completed")
	return nil
}
