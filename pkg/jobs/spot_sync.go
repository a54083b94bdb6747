package jobs

import (
	"context"
	"encoding/json"

	"github.com/marketpulse/core/pkg/models"
)

// SyncSpot refreshes the real-time equity quote dataset.
func (s *Syncer) SyncSpot(ctx context.Context) error {
	return s.syncPaged(ctx, KeySpot, "/api/stock/spot", func(page int, data []byte) (int, error) {
		var resp models.PagedResponse[models.SpotQuote]
		if err := json.Unmarshal(data, &resp); err != nil {
			return 0, err
		}
		s.log.Debug().
			Str("dataset", KeySpot).
			Int("page", page).
			Int("rows", len(resp.Items)).
			Msg("Processed spot quote page")
		return resp.TotalPages, nil
	})
}
