package merge_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"chronoreel/internal/logging"
	"chronoreel/internal/merge"
	"chronoreel/internal/services"
	"chronoreel/internal/testsupport"
)

func writePart(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestMergeOrdersByPartIndex(t *testing.T) {
	dir := t.TempDir()
	// Created out of index order on purpose.
	writePart(t, dir, "2022-03-01_2022-03-05_40-photos_003.mp4", "c")
	writePart(t, dir, "2021-12-30_2022-01-10_100-photos_001.mp4", "a")
	writePart(t, dir, "2022-01-11_2022-02-28_150-photos_002.mp4", "b")

	backend := &testsupport.RecordingBackend{}
	result, err := merge.New(backend, logging.NewNop()).Merge(context.Background(), dir)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	concat := backend.CallsOf("concat")
	if len(concat) != 1 {
		t.Fatalf("expected one concat call, got %d", len(concat))
	}
	var names []string
	for _, in := range concat[0].Inputs {
		names = append(names, filepath.Base(in))
	}
	want := []string{
		"2021-12-30_2022-01-10_100-photos_001.mp4",
		"2022-01-11_2022-02-28_150-photos_002.mp4",
		"2022-03-01_2022-03-05_40-photos_003.mp4",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("concat order mismatch (-want +got):\n%s", diff)
	}
	if got := filepath.Base(result.Path); got != "2021_290-photos.mp4" {
		t.Fatalf("merged name = %q", got)
	}
	data, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "abc" {
		t.Fatalf("merged content = %q, want abc", data)
	}
}

func TestMergeSkipsNonConformingNames(t *testing.T) {
	dir := t.TempDir()
	writePart(t, dir, "2022-01-01_2022-01-02_5-photos_001.mp4", "a")
	writePart(t, dir, "2022-01-03_notes_5-photos_002.mp4", "x")
	writePart(t, dir, "2022-01-03_2022-01-04_5-photos_002.mp4", "b")

	backend := &testsupport.RecordingBackend{}
	result, err := merge.New(backend, logging.NewNop()).Merge(context.Background(), dir)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(result.Inputs) != 2 || result.Total != 10 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestMergeSinglePartCopies(t *testing.T) {
	dir := t.TempDir()
	writePart(t, dir, "2023-05-01_2023-05-02_7-photos_001.mp4", "only")

	backend := &testsupport.RecordingBackend{}
	result, err := merge.New(backend, logging.NewNop()).Merge(context.Background(), dir)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if !result.Copied {
		t.Fatal("expected single part to be copied")
	}
	if len(backend.Calls()) != 0 {
		t.Fatalf("expected no backend calls, got %+v", backend.Calls())
	}
	if filepath.Base(result.Path) != "2023_7-photos.mp4" {
		t.Fatalf("unexpected merged path %s", result.Path)
	}
}

func TestMergeWithoutPartsWritesNothing(t *testing.T) {
	dir := t.TempDir()
	writePart(t, dir, "holiday.mp4", "x")

	_, err := merge.New(&testsupport.RecordingBackend{}, logging.NewNop()).Merge(context.Background(), dir)
	if !errors.Is(err, services.ErrNoParts) {
		t.Fatalf("expected ErrNoParts, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected directory untouched, got %d entries", len(entries))
	}
}

func TestMergeIsRepeatable(t *testing.T) {
	dir := t.TempDir()
	writePart(t, dir, "2022-01-01_2022-01-02_5-photos_001.mp4", "a")
	writePart(t, dir, "2022-01-03_2022-01-04_6-photos_002.mp4", "b")

	m := merge.New(&testsupport.RecordingBackend{}, logging.NewNop())
	first, err := m.Merge(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.Merge(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if first.Path != second.Path || second.Total != 11 || len(second.Inputs) != 2 {
		t.Fatalf("merge not repeatable: %+v vs %+v", first, second)
	}
}

func TestMergeConcatFailure(t *testing.T) {
	dir := t.TempDir()
	writePart(t, dir, "2022-01-01_2022-01-02_5-photos_001.mp4", "a")
	writePart(t, dir, "2022-01-03_2022-01-04_6-photos_002.mp4", "b")

	backend := &testsupport.RecordingBackend{FailConcat: errors.New("mux failed")}
	_, err := merge.New(backend, logging.NewNop()).Merge(context.Background(), dir)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "2022_11-photos.mp4")); !os.IsNotExist(statErr) {
		t.Fatalf("expected no merged output, stat err = %v", statErr)
	}
}
