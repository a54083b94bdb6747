package jobs

import (
	"context"
	"encoding/json"

	"github.com/marketpulse/core/pkg/models"
)

// SyncHistory refreshes daily OHLCV bars for the tracked universe.
func (s *Syncer) SyncHistory(ctx context.Context) error {
	return s.syncPaged(ctx, KeyHistory, "/api/stock/history", func(page int, data []byte) (int, error) {
		var resp models.PagedResponse[models.HistoryBar]
		if err := json.Unmarshal(data, &resp); err != nil {
			return 0, err
		}
		s.log.Debug().
			Str("dataset", KeyHistory).
			Int("page", page).
			Int("rows", len(resp.Items)).
			Msg("Processed history bar page")
		return resp.TotalPages, nil
	})
}
