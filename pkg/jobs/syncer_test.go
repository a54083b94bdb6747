package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/marketpulse/core/internal/config"
	"github.com/marketpulse/core/pkg/models"
	"github.com/marketpulse/core/pkg/progress"
	"github.com/marketpulse/core/pkg/services"
)

func newTestSyncer(t *testing.T, handler http.Handler) (*Syncer, *progress.Store) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.External.BaseURL = server.URL
	cfg.External.Timeout = 5

	store := progress.NewStore(filepath.Join(t.TempDir(), "progress.json"), nil)
	client := services.NewFetchClient(cfg, nil)
	return NewSyncer(client, store, nil), store
}

func pagedSpotHandler(t *testing.T, totalPages int, fail map[int]bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if fail[page] {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		resp := models.PagedResponse[models.SpotQuote]{
			Page:       page,
			PageSize:   defaultPageSize,
			TotalPages: totalPages,
			Items: []models.SpotQuote{
				{Symbol: fmt.Sprintf("SYM%d", page), Price: 10.5},
			},
			HasMore: page < totalPages,
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	})
}

func TestSyncer_SyncSpotCompletes(t *testing.T) {
	syncer, store := newTestSyncer(t, pagedSpotHandler(t, 3, nil))

	if err := syncer.SyncSpot(context.Background()); err != nil {
		t.Fatalf("SyncSpot() error = %v", err)
	}

	rec, ok := store.Get(KeySpot)
	if !ok {
		t.Fatal("Expected a progress record for the spot dataset")
	}
	if rec.Success == nil || !*rec.Success {
		t.Errorf("Expected success=true, got %v", rec.Success)
	}
	if rec.Current != 3 || rec.Total == nil || *rec.Total != 3 {
		t.Errorf("Expected 3/3 pages, got %d/%v", rec.Current, rec.Total)
	}
}

func TestSyncer_SyncSpotFailureMarksRecord(t *testing.T) {
	syncer, store := newTestSyncer(t, pagedSpotHandler(t, 3, map[int]bool{2: true}))

	err := syncer.SyncSpot(context.Background())
	if err == nil {
		t.Fatal("Expected an error when a page fails")
	}

	rec, ok := store.Get(KeySpot)
	if !ok {
		t.Fatal("Expected a progress record for the spot dataset")
	}
	if rec.Success == nil || *rec.Success {
		t.Errorf("Expected success=false, got %v", rec.Success)
	}
	if rec.Current != 1 {
		t.Errorf("Expected last completed page 1, got %d", rec.Current)
	}
}

func TestSyncer_SyncAllStopsOnFailure(t *testing.T) {
	syncer, store := newTestSyncer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/fund/etf" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		pagedSpotHandler(t, 1, nil).ServeHTTP(w, r)
	}))

	if err := syncer.SyncAll(context.Background()); err == nil {
		t.Fatal("Expected the ETF failure to stop the run")
	}

	spot, ok := store.Get(KeySpot)
	if !ok || spot.Success == nil || !*spot.Success {
		t.Error("Expected the spot dataset to have completed before the failure")
	}
	if _, ok := store.Get(KeyHistory); ok {
		t.Error("Expected the history dataset to be untouched after the failure")
	}
}

func TestSyncer_CancelledContext(t *testing.T) {
	syncer, _ := newTestSyncer(t, pagedSpotHandler(t, 3, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := syncer.SyncSpot(ctx); err == nil {
		t.Fatal("Expected a cancelled context to abort the sync")
	}
}
