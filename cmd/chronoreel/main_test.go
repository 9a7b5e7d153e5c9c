package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chronoreel/internal/services"
	"chronoreel/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	inputDir   string
	outputDir  string
	configPath string
}

// stubFFmpeg touches whichever .mp4 path appears in its arguments.
const stubFFmpeg = `#!/bin/sh
for arg; do
  case "$arg" in
    *.mp4) out="$arg" ;;
  esac
done
[ -n "$out" ] && echo stub > "$out"
exit 0
`

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("CHRONOREEL_INPUT_DIR", "")
	t.Setenv("CHRONOREEL_OUTPUT_DIR", "")

	ffmpeg := filepath.Join(base, "bin", "ffmpeg")
	if err := os.MkdirAll(filepath.Dir(ffmpeg), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ffmpeg, []byte(stubFFmpeg), 0o755); err != nil {
		t.Fatal(err)
	}

	env := &cliTestEnv{
		baseDir:    base,
		inputDir:   filepath.Join(base, "photos"),
		outputDir:  filepath.Join(base, "results"),
		configPath: filepath.Join(base, "chronoreel.toml"),
	}
	if err := os.MkdirAll(env.inputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	body := fmt.Sprintf(`[paths]
input_dir = %q
output_dir = %q
log_dir = %q
journal_db = %q

[render]
width = 64
height = 36
timezone = "UTC"

[caption]
enabled = false

[encoding]
batch_size = 2
max_clips_per_part = 3
ffmpeg_binary = %q

[validation]
probe_parts = false

[logging]
level = "error"
`, env.inputDir, env.outputDir, filepath.Join(base, "logs"), filepath.Join(base, "journal.db"), ffmpeg)
	if err := os.WriteFile(env.configPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return env
}

func (e *cliTestEnv) writePhotos(t *testing.T, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		path := filepath.Join(e.inputDir, fmt.Sprintf("IMG_202301%02d_080000.jpg", i))
		testsupport.WriteImage(t, path, 40, 30, color.Gray{Y: uint8(i * 20)})
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n%s", needle, haystack)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
}

func TestConfigShowPrintsEffectiveValues(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "batch_size = 2")
	requireContains(t, out, env.inputDir)
}

func TestOrderPrintsChronologicalTable(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writePhotos(t, 3)

	out, err := runCLI(t, []string{"order"}, env.configPath)
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	first := strings.Index(out, "2023-01-01 08:00:00")
	last := strings.Index(out, "2023-01-03 08:00:00")
	if first < 0 || last < 0 || first > last {
		t.Fatalf("expected chronological rows:\n%s", out)
	}
	requireContains(t, out, "3 photos (filename: 3)")
}

func TestBuildMergeAndHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writePhotos(t, 5)

	out, err := runCLI(t, []string{"build", "--merge", "--no-progress"}, env.configPath)
	if err != nil {
		t.Fatalf("build: %v\n%s", err, out)
	}
	requireContains(t, out, "2023-01-01_2023-01-03_3-photos_001.mp4")
	requireContains(t, out, "2023-01-04_2023-01-05_2-photos_002.mp4")
	requireContains(t, out, "2023_5-photos.mp4")

	out, err = runCLI(t, []string{"parts"}, env.configPath)
	if err != nil {
		t.Fatalf("parts: %v", err)
	}
	requireContains(t, out, "2 parts, 5 photos")

	out, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "succeeded")

	out, err = runCLI(t, []string{"merge"}, env.configPath)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	requireContains(t, out, "Merged 2 parts (5 photos)")
}

func TestBuildEmptyCorpusExitCode(t *testing.T) {
	env := setupCLITestEnv(t)

	_, err := runCLI(t, []string{"build", "--no-progress"}, env.configPath)
	if !errors.Is(err, services.ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
	if code := services.ExitCode(err); code != services.ExitEmptyCorpus {
		t.Fatalf("exit code = %d, want %d", code, services.ExitEmptyCorpus)
	}
}

func TestMergeWithoutPartsExitCode(t *testing.T) {
	env := setupCLITestEnv(t)
	_, err := runCLI(t, []string{"merge"}, env.configPath)
	if code := services.ExitCode(err); code != services.ExitNoParts {
		t.Fatalf("exit code = %d (%v), want %d", code, err, services.ExitNoParts)
	}
}

func TestOutputOverrideMustDifferFromInput(t *testing.T) {
	env := setupCLITestEnv(t)
	_, err := runCLI(t, []string{"build", "--output", env.inputDir}, env.configPath)
	if code := services.ExitCode(err); code != services.ExitConfiguration {
		t.Fatalf("exit code = %d (%v), want %d", code, err, services.ExitConfiguration)
	}
}

func TestDoctorReportsChecks(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := runCLI(t, []string{"doctor"}, env.configPath)
	requireContains(t, out, "Input directory:")
	requireContains(t, out, "FFmpeg:")
	// The stub ffmpeg lists no encoders, so the encoder check fails.
	if code := services.ExitCode(err); code != services.ExitConfiguration {
		t.Fatalf("exit code = %d (%v), want %d", code, err, services.ExitConfiguration)
	}
}
