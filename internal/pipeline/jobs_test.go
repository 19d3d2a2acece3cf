package pipeline

import (
	"testing"
	"time"
)

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusLoading, "loading"},
		{StatusGrouping, "grouping"},
		{StatusComparing, "comparing"},
		{StatusStoring, "storing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_SetStatusFailed(t *testing.T) {
	job := &Job{
		ID:        "test-fail",
		Status:    StatusComparing,
		UpdatedAt: time.Now(),
	}
	job.SetStatus(StatusFailed, "comparing")
	if job.Status != StatusFailed {
		t.Errorf("expected status %q, got %q", StatusFailed, job.Status)
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("load: bad header")
	job.AddError("save run: disk full")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "load: bad header" {
		t.Errorf("expected first error %q, got %q", "load: bad header", snap.Progress.Errors[0])
	}
}

func TestJob_SetGrouping(t *testing.T) {
	job := &Job{ID: "group-test", UpdatedAt: time.Now()}
	job.SetGrouping(120, 14, 3, 7140)

	snap := job.Snapshot()
	if snap.Progress.ParsedCitations != 120 {
		t.Errorf("expected 120 parsed citations, got %d", snap.Progress.ParsedCitations)
	}
	if snap.Progress.Unparseable != 14 {
		t.Errorf("expected 14 unparseable, got %d", snap.Progress.Unparseable)
	}
	if snap.Progress.Rescued != 3 {
		t.Errorf("expected 3 rescued, got %d", snap.Progress.Rescued)
	}
	if snap.Progress.TotalComparisons != 7140 {
		t.Errorf("expected 7140 total comparisons, got %d", snap.Progress.TotalComparisons)
	}
}

func TestJob_SetComparisons(t *testing.T) {
	job := &Job{ID: "cmp-test", UpdatedAt: time.Now()}
	job.SetComparisons(500, 42)
	job.SetComparisons(1200, 97)

	snap := job.Snapshot()
	if snap.Progress.Comparisons != 1200 {
		t.Errorf("expected 1200 comparisons, got %d", snap.Progress.Comparisons)
	}
	if snap.Progress.SameArticleMatches != 97 {
		t.Errorf("expected 97 matches, got %d", snap.Progress.SameArticleMatches)
	}
}

func TestJob_SetElements(t *testing.T) {
	job := &Job{ID: "elem-test", UpdatedAt: time.Now()}
	job.SetElements(42)

	snap := job.Snapshot()
	if snap.Progress.Elements != 42 {
		t.Errorf("expected 42 elements, got %d", snap.Progress.Elements)
	}
}

func TestJob_FileData(t *testing.T) {
	job := &Job{ID: "data-test"}
	data := []byte("uuid,part_number,analysis\n")
	job.SetFileData(data)
	got := job.FileData()
	if string(got) != string(data) {
		t.Errorf("expected file data %q, got %q", data, got)
	}
	job.ClearFileData()
	if job.FileData() != nil {
		t.Error("expected nil file data after clear")
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}

func TestLoadElements_FormatDispatch(t *testing.T) {
	csv := "uuid,part_number,analysis\nu1,1,\"{\"\"articles de loi\"\": [\"\"art. 41 CO\"\"]}\"\n"
	elements, err := loadElements("data.csv", []byte(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) != 1 {
		t.Fatalf("expected 1 element, got %d", len(elements))
	}

	jsonl := `{"uuid":"u1","part_number":1,"analysis":{"articles de loi":["art. 41 CO"]}}` + "\n"
	elements, err = loadElements("data.jsonl", []byte(jsonl))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) != 1 {
		t.Fatalf("expected 1 element, got %d", len(elements))
	}

	if _, err := loadElements("data.xml", nil); err == nil {
		t.Error("expected error for unsupported format")
	}
}
