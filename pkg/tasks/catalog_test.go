package tasks

import (
	"context"
	"testing"
)

func noopRun(ctx context.Context) error { return nil }

func TestCatalog_RegisterAndGet(t *testing.T) {
	catalog := NewCatalog()

	err := catalog.Register(Job{
		ID:            "spot_sync",
		DisplayName:   "Spot Quotes Sync",
		StatusMessage: "Updating spot quotes...",
		ProgressKeys:  []string{"stock_spot"},
		Run:           noopRun,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	job, ok := catalog.Get("spot_sync")
	if !ok {
		t.Fatal("Expected registered job to be found")
	}
	if job.DisplayName != "Spot Quotes Sync" {
		t.Errorf("Unexpected display name %q", job.DisplayName)
	}

	if _, ok := catalog.Get("missing"); ok {
		t.Error("Expected lookup miss for unregistered job")
	}
}

func TestCatalog_RegisterDerivesIDFromDisplayName(t *testing.T) {
	catalog := NewCatalog()

	if err := catalog.Register(Job{DisplayName: "History Sync", Run: noopRun}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := catalog.Get("history_sync"); !ok {
		t.Error("Expected ID derived as slug of display name")
	}
}

func TestCatalog_RegisterRejectsInvalid(t *testing.T) {
	catalog := NewCatalog()

	if err := catalog.Register(Job{ID: "no_run"}); err == nil {
		t.Error("Expected error for job without run function")
	}
	if err := catalog.Register(Job{Run: noopRun}); err == nil {
		t.Error("Expected error for job without id or name")
	}

	if err := catalog.Register(Job{ID: "dup", Run: noopRun}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := catalog.Register(Job{ID: "dup", Run: noopRun}); err == nil {
		t.Error("Expected error for duplicate id")
	}
}

func TestCatalog_ListPreservesRegistrationOrder(t *testing.T) {
	catalog := NewCatalog()
	for _, id := range []string{"c", "a", "b"} {
		if err := catalog.Register(Job{ID: id, Run: noopRun}); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	list := catalog.List()
	if len(list) != 3 {
		t.Fatalf("Expected 3 jobs, got %d", len(list))
	}
	for i, want := range []string{"c", "a", "b"} {
		if list[i].ID != want {
			t.Errorf("Position %d: expected %q, got %q", i, want, list[i].ID)
		}
	}
}

func TestCatalog_DatasetMapping(t *testing.T) {
	catalog := NewCatalog()
	if err := catalog.Register(Job{ID: "spot_sync", Run: noopRun}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := catalog.MapDataset("stock_spot", "missing"); err == nil {
		t.Error("Expected error mapping dataset to unknown job")
	}
	if err := catalog.MapDataset("stock_spot", "spot_sync"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	job, ok := catalog.JobForDataset("stock_spot")
	if !ok || job.ID != "spot_sync" {
		t.Errorf("Expected spot_sync for stock_spot, got %+v (ok=%v)", job, ok)
	}
	if _, ok := catalog.JobForDataset("unmapped"); ok {
		t.Error("Expected miss for unmapped dataset")
	}
}
