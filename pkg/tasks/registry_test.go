package tasks

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestRegistry_AdmitAndGet(t *testing.T) {
	registry := NewRegistry()

	taskID, err := registry.Admit("spot_sync", "starting")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.HasPrefix(taskID, "spot_sync_") {
		t.Errorf("Expected task id prefixed with job id, got %q", taskID)
	}

	state, ok := registry.Get(taskID)
	if !ok {
		t.Fatal("Expected admitted task to be queryable")
	}
	if !state.Running {
		t.Error("Expected running=true after admission")
	}
	if state.Success != nil {
		t.Error("Expected unset success while running")
	}
	if state.EndTime != nil {
		t.Error("Expected no end time while running")
	}
}

func TestRegistry_GlobalMutualExclusion(t *testing.T) {
	registry := NewRegistry()

	if _, err := registry.Admit("spot_sync", "starting"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// A different job type is still rejected while anything runs.
	if _, err := registry.Admit("history_sync", "starting"); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("Expected ErrAlreadyRunning, got %v", err)
	}
}

func TestRegistry_AdmitAfterFinalize(t *testing.T) {
	registry := NewRegistry()

	first, err := registry.Admit("spot_sync", "starting")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	registry.Finalize(first, true, "done", 100, nil)

	second, err := registry.Admit("history_sync", "starting")
	if err != nil {
		t.Fatalf("Expected admission after finalize, got %v", err)
	}

	// History is kept: the first task remains queryable.
	state, ok := registry.Get(first)
	if !ok {
		t.Fatal("Expected finalized task kept as history")
	}
	if state.Running {
		t.Error("Expected running=false after finalize")
	}
	if state.Success == nil || !*state.Success {
		t.Error("Expected success=true after finalize")
	}
	if state.EndTime == nil {
		t.Error("Expected end time set after finalize")
	} else if !state.EndTime.After(state.StartTime) {
		t.Error("Expected end time strictly after start time")
	}

	if second == first {
		t.Error("Expected distinct task ids for distinct runs")
	}
}

func TestRegistry_ConcurrentAdmitSingleFlight(t *testing.T) {
	registry := NewRegistry()

	const attempts = 32
	var wg sync.WaitGroup
	accepted := make(chan string, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if taskID, err := registry.Admit("spot_sync", "starting"); err == nil {
				accepted <- taskID
			}
		}()
	}
	wg.Wait()
	close(accepted)

	var winners []string
	for id := range accepted {
		winners = append(winners, id)
	}
	if len(winners) != 1 {
		t.Errorf("Expected exactly one accepted admission, got %d", len(winners))
	}
}

func TestSlot_OverwritesOnResubmission(t *testing.T) {
	slot := NewSlot()

	first, err := slot.Admit("complete", "starting")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := slot.Admit("complete", "starting"); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("Expected ErrAlreadyRunning, got %v", err)
	}

	slot.Finalize(first, true, "done", 100, nil)

	second, err := slot.Admit("basic", "starting")
	if err != nil {
		t.Fatalf("Expected admission after finalize, got %v", err)
	}

	// The slot holds only the newest execution.
	state := slot.Snapshot()
	if state.TaskID != second {
		t.Errorf("Expected slot overwritten with %q, got %q", second, state.TaskID)
	}
	if state.JobID != "basic" {
		t.Errorf("Expected job id basic, got %q", state.JobID)
	}

	// Finalizing the stale task must not clobber the new occupant.
	slot.Finalize(first, false, "stale", 0, nil)
	if state := slot.Snapshot(); !state.Running {
		t.Error("Expected stale finalize to be ignored")
	}
}

func TestSlot_ConcurrentAdmitSingleFlight(t *testing.T) {
	slot := NewSlot()

	const attempts = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	acceptedCount := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := slot.Admit("complete", "starting"); err == nil {
				mu.Lock()
				acceptedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if acceptedCount != 1 {
		t.Errorf("Expected exactly one accepted admission, got %d", acceptedCount)
	}
}
