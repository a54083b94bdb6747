package progress

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "progress.json")
	return NewStore(path, nil), path
}

func TestStore_UpdateAndGet(t *testing.T) {
	store, _ := newTestStore(t)

	store.Update("fetch_a", 50, 200, "fetching")

	rec, ok := store.Get("fetch_a")
	if !ok {
		t.Fatal("Expected record for fetch_a")
	}
	if rec.Current != 50 {
		t.Errorf("Expected current 50, got %d", rec.Current)
	}
	if rec.Total == nil || *rec.Total != 200 {
		t.Errorf("Expected total 200, got %v", rec.Total)
	}
	if rec.Percent == nil || *rec.Percent != 25.0 {
		t.Errorf("Expected percent 25.0, got %v", rec.Percent)
	}
	if rec.Message != "fetching" {
		t.Errorf("Expected message 'fetching', got %q", rec.Message)
	}
	if rec.Success != nil {
		t.Errorf("Expected unset success, got %v", *rec.Success)
	}
}

func TestStore_UpdateUnknownTotal(t *testing.T) {
	store, _ := newTestStore(t)

	store.Update("stream", 120, 0, "streaming")

	rec, ok := store.Get("stream")
	if !ok {
		t.Fatal("Expected record for stream")
	}
	if rec.Total != nil {
		t.Errorf("Expected unknown total, got %d", *rec.Total)
	}
	if rec.Percent != nil {
		t.Errorf("Expected absent percent for unknown total, got %v", *rec.Percent)
	}
}

func TestStore_UpdateResultAndCarriedOutcome(t *testing.T) {
	store, _ := newTestStore(t)

	store.UpdateResult("fetch_a", 200, 200, "done", true)

	rec, _ := store.Get("fetch_a")
	if rec.Success == nil || !*rec.Success {
		t.Fatal("Expected success=true after UpdateResult")
	}

	// A plain update keeps the previously reported outcome.
	store.Update("fetch_a", 210, 210, "verifying")
	rec, _ = store.Get("fetch_a")
	if rec.Success == nil || !*rec.Success {
		t.Error("Expected success to survive a plain update")
	}
}

func TestStore_GetMissing(t *testing.T) {
	store, _ := newTestStore(t)

	if _, ok := store.Get("never_set"); ok {
		t.Error("Expected no record for unset key")
	}
}

func TestStore_GetMany(t *testing.T) {
	store, _ := newTestStore(t)

	store.Update("fetch_a", 50, 200, "fetching")

	got := store.GetMany([]string{"fetch_a", "fetch_b"})
	if len(got) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(got))
	}
	if _, ok := got["fetch_a"]; !ok {
		t.Error("Expected fetch_a in result")
	}
	if _, ok := got["fetch_b"]; ok {
		t.Error("fetch_b was never updated and must be omitted, not nulled")
	}
}

func TestStore_Clear(t *testing.T) {
	store, _ := newTestStore(t)

	store.Update("fetch_a", 50, 200, "fetching")
	store.Clear("fetch_a")

	if _, ok := store.Get("fetch_a"); ok {
		t.Error("Expected record removed after Clear")
	}

	// Clearing an absent key or a missing store is a no-op.
	store.Clear("fetch_a")
	store.Clear("never_set")
}

func TestStore_PersistsAcrossRestart(t *testing.T) {
	store, path := newTestStore(t)

	store.Update("fetch_a", 75, 100, "almost there")

	// A new store on the same path observes the last persisted state.
	reopened := NewStore(path, nil)
	rec, ok := reopened.Get("fetch_a")
	if !ok {
		t.Fatal("Expected record to survive restart")
	}
	if rec.Percent == nil || *rec.Percent != 75.0 {
		t.Errorf("Expected percent 75.0 after restart, got %v", rec.Percent)
	}
}

func TestStore_MalformedFileReadsAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(path, nil)
	if _, ok := store.Get("anything"); ok {
		t.Error("Expected malformed store to read as empty")
	}

	// Writes still work after a corrupt read.
	store.Update("fetch_a", 1, 2, "recovering")
	if rec, ok := store.Get("fetch_a"); !ok || rec.Current != 1 {
		t.Error("Expected store to recover from corruption on next write")
	}
}

func TestStore_NoTempFileLeftBehind(t *testing.T) {
	store, path := newTestStore(t)

	store.Update("fetch_a", 50, 200, "fetching")

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("Expected temp file to be renamed away")
	}
}
