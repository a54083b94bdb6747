package jobs

import (
	"context"
	"encoding/json"

	"github.com/marketpulse/core/pkg/models"
)

// SyncETF refreshes the exchange-traded-fund quote dataset.
func (s *Syncer) SyncETF(ctx context.Context) error {
	return s.syncPaged(ctx, KeyETF, "/api/fund/etf", func(page int, data []byte) (int, error) {
		var resp models.PagedResponse[models.ETFQuote]
		if err := json.Unmarshal(data, &resp); err != nil {
			return 0, err
		}
		s.log.Debug().
			Str("dataset", KeyETF).
			Int("page", page).
			Int("rows", len(resp.Items)).
			Msg("Processed ETF quote page")
		return resp.TotalPages, nil
	})
}
