package runner_test

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"chronoreel/internal/config"
	"chronoreel/internal/encoding"
	"chronoreel/internal/journal"
	"chronoreel/internal/logging"
	"chronoreel/internal/runner"
	"chronoreel/internal/services"
	"chronoreel/internal/testsupport"
)

// writeDatedPhotos writes one photo per day starting 2022-01-01, named so the
// filename carries the timestamp. Files are created in reverse order so
// discovery order differs from chronological order.
func writeDatedPhotos(t *testing.T, cfg *config.Config, n int) {
	t.Helper()
	for i := n - 1; i >= 0; i-- {
		name := fmt.Sprintf("IMG_202201%02d_120000.jpg", i+1)
		sub := "a"
		if i%2 == 1 {
			sub = "b"
		}
		testsupport.WriteImage(t, filepath.Join(cfg.Paths.InputDir, sub, name), 40, 30, color.White)
	}
}

func testOptions(backend encoding.Backend) runner.Options {
	return runner.Options{
		Logger:        logging.NewNop(),
		Backend:       backend,
		SkipPreflight: true,
	}
}

func TestBuildWritesPartsMergesAndRecordsRun(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBatchSize(2), testsupport.WithMaxClipsPerPart(3), testsupport.WithMerge())
	writeDatedPhotos(t, cfg, 5)
	backend := &testsupport.RecordingBackend{}

	summary, err := runner.Build(context.Background(), cfg, testOptions(backend))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	var names []string
	for _, p := range summary.Parts {
		names = append(names, p.Name())
	}
	want := []string{
		"2022-01-01_2022-01-03_3-photos_001.mp4",
		"2022-01-04_2022-01-05_2-photos_002.mp4",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("part names mismatch (-want +got):\n%s", diff)
	}
	if summary.Merge == nil || filepath.Base(summary.Merge.Path) != "2022_5-photos.mp4" {
		t.Fatalf("unexpected merge result: %+v", summary.Merge)
	}
	if summary.Items != 5 || summary.Photos() != 5 {
		t.Fatalf("unexpected summary counts: %+v", summary)
	}

	store, err := journal.Open(context.Background(), cfg.Paths.JournalPath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	run, err := store.GetRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Status != journal.StatusSucceeded || run.PartsTotal != 2 || run.PhotosTotal != 5 || run.ItemsTotal != 5 {
		t.Fatalf("unexpected journal run: %+v", run)
	}
	if run.MergedPath != summary.Merge.Path {
		t.Fatalf("merged path not recorded: %q", run.MergedPath)
	}
	parts, err := store.Parts(context.Background(), summary.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 2 {
		t.Fatalf("expected 2 journal parts, got %d", len(parts))
	}
	if _, err := os.Stat(runner.LockPath(cfg.Paths.OutputDir)); err != nil {
		t.Fatalf("expected lock file beside output dir: %v", err)
	}
}

func TestBuildEmptyCorpusFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.InputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.InputDir, "notes.txt"), 10)

	summary, err := runner.Build(context.Background(), cfg, testOptions(&testsupport.RecordingBackend{}))
	if !errors.Is(err, services.ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
	if services.ExitCode(err) != services.ExitEmptyCorpus {
		t.Fatalf("unexpected exit code %d", services.ExitCode(err))
	}

	store, err := journal.Open(context.Background(), cfg.Paths.JournalPath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	run, err := store.GetRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != journal.StatusFailed || run.ErrorMessage == "" {
		t.Fatalf("expected failed run with message, got %+v", run)
	}
}

func TestBuildRefusesLockedOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutJournal())
	writeDatedPhotos(t, cfg, 1)

	held, err := runner.AcquireOutputLock(cfg.Paths.OutputDir)
	if err != nil {
		t.Fatalf("AcquireOutputLock failed: %v", err)
	}
	defer held.Release()

	backend := &testsupport.RecordingBackend{}
	_, err = runner.Build(context.Background(), cfg, testOptions(backend))
	if !errors.Is(err, services.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if len(backend.Calls()) != 0 {
		t.Fatal("no encoding should happen while locked")
	}
}

func TestBuildCanceledIsRecorded(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeDatedPhotos(t, cfg, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := runner.Build(ctx, cfg, testOptions(&testsupport.RecordingBackend{}))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	store, err := journal.Open(context.Background(), cfg.Paths.JournalPath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	run, err := store.GetRun(context.Background(), summary.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != journal.StatusCanceled {
		t.Fatalf("expected canceled status, got %s", run.Status)
	}
}

func TestBuildPreflightFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutJournal())
	writeDatedPhotos(t, cfg, 1)
	cfg.Encoding.FFmpegBinary = "chronoreel-missing-ffmpeg"

	opts := testOptions(&testsupport.RecordingBackend{})
	opts.SkipPreflight = false
	_, err := runner.Build(context.Background(), cfg, opts)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestMergeOnlyCleansScratchAndMerges(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	out := cfg.Paths.OutputDir
	testsupport.WriteFile(t, filepath.Join(out, ".scratch-002", "frame-000001.jpg"), 10)
	testsupport.WriteFile(t, filepath.Join(out, "2022-01-01_2022-01-02_4-photos_001.mp4"), 10)

	result, err := runner.MergeOnly(context.Background(), cfg, testOptions(&testsupport.RecordingBackend{}))
	if err != nil {
		t.Fatalf("MergeOnly failed: %v", err)
	}
	if filepath.Base(result.Path) != "2022_4-photos.mp4" {
		t.Fatalf("unexpected merged path %s", result.Path)
	}
	if _, err := os.Stat(filepath.Join(out, ".scratch-002")); !os.IsNotExist(err) {
		t.Fatalf("expected orphaned scratch removed, stat err = %v", err)
	}
}

func TestBuildOrdersUndatedPhotosBySidecar(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutJournal())
	sidecars := map[string]string{
		"holiday.jpg": `{"creationTime": {"timestamp": "1646481600"}}`,
		"beach.png":   `{"creationTime": {"timestamp": 1646136000}}`,
	}
	for name, body := range sidecars {
		path := filepath.Join(cfg.Paths.InputDir, name)
		testsupport.WriteImage(t, path, 40, 30, color.White)
		testsupport.WriteSidecar(t, path, body)
	}
	backend := &testsupport.RecordingBackend{}

	summary, err := runner.Build(context.Background(), cfg, testOptions(backend))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(summary.Parts) != 1 || summary.Parts[0].Name() != "2022-03-01_2022-03-05_2-photos_001.mp4" {
		t.Fatalf("unexpected parts: %+v", summary.Parts)
	}
	if got := filepath.Dir(runner.LockPath(cfg.Paths.OutputDir)); got != testsupport.BaseDir(cfg) {
		t.Fatalf("lock dir = %s, want %s", got, testsupport.BaseDir(cfg))
	}
}
