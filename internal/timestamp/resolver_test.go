package timestamp_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chronoreel/internal/logging"
	"chronoreel/internal/sidecar"
	"chronoreel/internal/timestamp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestResolvePrefersFilenameOverSidecar(t *testing.T) {
	dir := t.TempDir()
	photo := filepath.Join(dir, "IMG_20220101_120000.jpg")
	writeFile(t, photo, "x")
	writeFile(t, sidecar.Path(photo), `{"creationTime": {"timestamp": "1500000000"}}`)

	r := timestamp.New(time.UTC, logging.NewNop())
	got := r.Resolve(photo)
	want := time.Date(2022, 1, 1, 12, 0, 0, 0, time.UTC).Unix()
	if got.Epoch != want || got.Source != timestamp.SourceFilename {
		t.Fatalf("got %+v want epoch %d from filename", got, want)
	}
}

func TestResolveUsesSidecarWhenFilenameUnparseable(t *testing.T) {
	dir := t.TempDir()
	photo := filepath.Join(dir, "holiday.jpg")
	writeFile(t, photo, "x")
	writeFile(t, sidecar.Path(photo), `{"creationTime": {"timestamp": "1500000000"}}`)

	got := timestamp.New(time.UTC, logging.NewNop()).Resolve(photo)
	if got.Epoch != 1500000000 || got.Source != timestamp.SourceSidecar {
		t.Fatalf("unexpected resolution: %+v", got)
	}
}

func TestResolveInvalidFilenameDateFallsThroughToSidecar(t *testing.T) {
	dir := t.TempDir()
	photo := filepath.Join(dir, "IMG_20221301_120000.jpg")
	writeFile(t, photo, "x")
	writeFile(t, sidecar.Path(photo), `{"creationTime": {"timestamp": 1500000000}}`)

	got := timestamp.New(time.UTC, logging.NewNop()).Resolve(photo)
	if got.Source != timestamp.SourceSidecar || got.Epoch != 1500000000 {
		t.Fatalf("expected sidecar fallback, got %+v", got)
	}
}

func TestResolveMalformedSidecarFallsBackToFilesystem(t *testing.T) {
	dir := t.TempDir()
	photo := filepath.Join(dir, "holiday.jpg")
	writeFile(t, photo, "x")
	writeFile(t, sidecar.Path(photo), `{"creationTime": `)

	fsTime := int64(1400000000)
	r := timestamp.New(time.UTC, logging.NewNop(), timestamp.WithFileTimes(func(string) (int64, timestamp.Source, error) {
		return fsTime, timestamp.SourceBirthTime, nil
	}))
	got := r.Resolve(photo)
	if got.Epoch != fsTime || got.Source != timestamp.SourceBirthTime {
		t.Fatalf("unexpected resolution: %+v", got)
	}
}

func TestResolveFilesystemFallbackLogsWarning(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "resolver.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "warn", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	dir := t.TempDir()
	photo := filepath.Join(dir, "holiday.jpg")
	writeFile(t, photo, "x")

	got := timestamp.New(time.UTC, logger).Resolve(photo)
	switch got.Source {
	case timestamp.SourceBirthTime, timestamp.SourceChangeTime, timestamp.SourceModTime:
	default:
		t.Fatalf("expected filesystem source, got %+v", got)
	}
	if got.Epoch <= 0 {
		t.Fatalf("expected positive epoch, got %d", got.Epoch)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(content), "timestamp_fallback_filesystem") || !strings.Contains(string(content), photo) {
		t.Fatalf("expected fallback warning naming the photo, got %s", content)
	}
}

func TestResolveFallsBackToNowWhenStatFails(t *testing.T) {
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	r := timestamp.New(time.UTC, logging.NewNop(),
		timestamp.WithSidecarReader(func(string) (sidecar.Metadata, error) { return sidecar.Metadata{}, sidecar.ErrNotFound }),
		timestamp.WithFileTimes(func(string) (int64, timestamp.Source, error) { return 0, "", errors.New("gone") }),
		timestamp.WithClock(func() time.Time { return fixed }),
	)
	got := r.Resolve("/missing/holiday.jpg")
	if got.Epoch != fixed.Unix() || got.Source != timestamp.SourceNow {
		t.Fatalf("unexpected resolution: %+v", got)
	}
}
