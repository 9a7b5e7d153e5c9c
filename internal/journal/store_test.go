package journal_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"chronoreel/internal/journal"
)

func openStore(t *testing.T) *journal.Store {
	t.Helper()
	store, err := journal.Open(context.Background(), filepath.Join(t.TempDir(), "db", "journal.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenAppliesMigrations(t *testing.T) {
	store := openStore(t)
	versions, err := store.SchemaVersions(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersions failed: %v", err)
	}
	if diff := cmp.Diff([]string{"001_runs"}, versions); diff != "" {
		t.Fatalf("versions mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	for i := 0; i < 2; i++ {
		store, err := journal.Open(context.Background(), path)
		if err != nil {
			t.Fatalf("open %d failed: %v", i, err)
		}
		_ = store.Close()
	}
}

func TestRunLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := store.StartRun(ctx, journal.Run{ID: "run-1", InputDir: "/in", OutputDir: "/out", StartedAt: started}); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if err := store.SetItemsTotal(ctx, "run-1", 6); err != nil {
		t.Fatalf("SetItemsTotal failed: %v", err)
	}
	for i := 1; i <= 2; i++ {
		part := journal.Part{
			RunID:     "run-1",
			Index:     i,
			Path:      filepath.Join("/out", "p.mp4"),
			FirstDate: started,
			LastDate:  started.Add(time.Hour),
			Count:     3,
			SizeBytes: 1024,
		}
		if err := store.RecordPart(ctx, part); err != nil {
			t.Fatalf("RecordPart %d failed: %v", i, err)
		}
	}
	if err := store.FinishRun(ctx, "run-1", journal.Outcome{Status: journal.StatusSucceeded, PartsTotal: 2, PhotosTotal: 6}); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	run, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Status != journal.StatusSucceeded || run.ItemsTotal != 6 || run.PartsTotal != 2 || run.PhotosTotal != 6 {
		t.Fatalf("unexpected run: %+v", run)
	}
	if !run.StartedAt.Equal(started) {
		t.Fatalf("started_at = %v, want %v", run.StartedAt, started)
	}
	if run.FinishedAt.IsZero() {
		t.Fatal("expected finished_at to be set")
	}

	parts, err := store.Parts(ctx, "run-1")
	if err != nil {
		t.Fatalf("Parts failed: %v", err)
	}
	if len(parts) != 2 || parts[0].Index != 1 || parts[1].Index != 2 {
		t.Fatalf("unexpected parts: %+v", parts)
	}
}

func TestFinishRunRejectsRunningStatus(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	if err := store.StartRun(ctx, journal.Run{ID: "r", OutputDir: "/out"}); err != nil {
		t.Fatal(err)
	}
	if err := store.FinishRun(ctx, "r", journal.Outcome{Status: journal.StatusRunning}); err == nil {
		t.Fatal("expected error for non-terminal status")
	}
}

func TestGetRunMissing(t *testing.T) {
	store := openStore(t)
	_, err := store.GetRun(context.Background(), "nope")
	if !errors.Is(err, journal.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := store.StartRun(ctx, journal.Run{ID: id, OutputDir: "/out", StartedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	var ids []string
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]string{"c", "b"}, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkAbandoned(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	_ = store.StartRun(ctx, journal.Run{ID: "stale", OutputDir: "/out"})
	_ = store.StartRun(ctx, journal.Run{ID: "other", OutputDir: "/elsewhere"})

	n, err := store.MarkAbandoned(ctx, "/out")
	if err != nil {
		t.Fatalf("MarkAbandoned failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 abandoned run, got %d", n)
	}
	run, _ := store.GetRun(ctx, "stale")
	if run.Status != journal.StatusFailed {
		t.Fatalf("expected failed status, got %s", run.Status)
	}
	other, _ := store.GetRun(ctx, "other")
	if other.Status != journal.StatusRunning {
		t.Fatalf("unrelated run changed: %s", other.Status)
	}
}
