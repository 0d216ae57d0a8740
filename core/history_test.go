package core

import (
	"fmt"
	"testing"
	"time"
)

// TestExecutionHistory_RingWraps verifies the bounded ring
// Given: a history of capacity 3
// When: 5 records are added
// Then: only the newest 3 remain, newest first
func TestExecutionHistory_RingWraps(t *testing.T) {
	h := newExecutionHistory(3)

	for i := range 5 {
		h.Add(TaskExecutionRecord{Name: fmt.Sprintf("task-%d", i)})
	}

	records := h.Recent(0)
	if len(records) != 3 {
		t.Fatalf("len(Recent) = %d, want 3", len(records))
	}
	for i, want := range []string{"task-4", "task-3", "task-2"} {
		if records[i].Name != want {
			t.Errorf("Recent[%d].Name = %q, want %q", i, records[i].Name, want)
		}
	}
}

// TestExecutionHistory_Limit verifies the limit argument
// Given: a history with 4 records
// When: Recent(2) is called
// Then: only the 2 newest are returned
func TestExecutionHistory_Limit(t *testing.T) {
	h := newExecutionHistory(10)
	for i := range 4 {
		h.Add(TaskExecutionRecord{Name: fmt.Sprintf("task-%d", i), FinishedAt: time.Now()})
	}

	records := h.Recent(2)
	if len(records) != 2 {
		t.Fatalf("len(Recent(2)) = %d, want 2", len(records))
	}
	if records[0].Name != "task-3" {
		t.Errorf("Recent(2)[0].Name = %q, want %q", records[0].Name, "task-3")
	}
}

// TestExecutionHistory_Empty verifies the empty case
// Given: a fresh history
// When: Recent is called
// Then: nil is returned
func TestExecutionHistory_Empty(t *testing.T) {
	h := newExecutionHistory(5)
	if got := h.Recent(10); got != nil {
		t.Errorf("Recent on empty history = %v, want nil", got)
	}
}
