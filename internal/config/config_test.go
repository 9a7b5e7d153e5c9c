package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"chronoreel/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("CHRONOREEL_INPUT_DIR", "")
	t.Setenv("CHRONOREEL_OUTPUT_DIR", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Paths.InputDir != filepath.Join(tempHome, "Pictures") {
		t.Fatalf("unexpected input dir: %q", cfg.Paths.InputDir)
	}
	wantLogs := filepath.Join(tempHome, ".local", "share", "chronoreel", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) {
		t.Fatalf("expected absolute output dir, got %q", cfg.Paths.OutputDir)
	}
	if cfg.Encoding.BatchSize != 10 {
		t.Fatalf("unexpected batch size: %d", cfg.Encoding.BatchSize)
	}
	if cfg.Encoding.MaxClipsPerPart != 3000 {
		t.Fatalf("unexpected max clips per part: %d", cfg.Encoding.MaxClipsPerPart)
	}
	if cfg.Render.Width != 1920 || cfg.Render.Height != 1080 {
		t.Fatalf("unexpected frame size: %dx%d", cfg.Render.Width, cfg.Render.Height)
	}
	if cfg.Caption.Anchor != "bottom-right" {
		t.Fatalf("unexpected caption anchor: %q", cfg.Caption.Anchor)
	}
	if cfg.Merge.Enabled {
		t.Fatal("expected merge disabled by default")
	}
	if !cfg.Validation.ProbeParts {
		t.Fatal("expected part probing enabled by default")
	}
	if cfg.Location() != time.Local {
		t.Fatalf("expected local zone, got %v", cfg.Location())
	}
}

func TestLoadCustomConfig(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("CHRONOREEL_INPUT_DIR", "")
	t.Setenv("CHRONOREEL_OUTPUT_DIR", "")

	configPath := filepath.Join(tempHome, "config.toml")
	content := `[paths]
input_dir = "~/photos"
output_dir = "~/reels"

[render]
width = 1280
height = 720
photo_duration = 0.5
timezone = "UTC"

[caption]
anchor = "Top-Left"
fill_color = "#ff0000"

[encoding]
batch_size = 4
max_clips_per_part = 12
fps = 24

[merge]
enabled = true

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.InputDir != filepath.Join(tempHome, "photos") {
		t.Fatalf("unexpected input dir: %q", cfg.Paths.InputDir)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "reels") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Render.Width != 1280 || cfg.Render.Height != 720 {
		t.Fatalf("unexpected frame size: %dx%d", cfg.Render.Width, cfg.Render.Height)
	}
	if cfg.Render.PhotoDuration != 0.5 {
		t.Fatalf("unexpected photo duration: %v", cfg.Render.PhotoDuration)
	}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", cfg.Location())
	}
	if cfg.Caption.Anchor != "top-left" {
		t.Fatalf("expected anchor lowercased, got %q", cfg.Caption.Anchor)
	}
	if cfg.Caption.OutlineColor != "#000000" {
		t.Fatalf("expected default outline color retained, got %q", cfg.Caption.OutlineColor)
	}
	if cfg.Encoding.BatchSize != 4 || cfg.Encoding.MaxClipsPerPart != 12 || cfg.Encoding.FPS != 24 {
		t.Fatalf("unexpected encoding values: %+v", cfg.Encoding)
	}
	if cfg.Encoding.Codec != "libx264" {
		t.Fatalf("expected default codec retained, got %q", cfg.Encoding.Codec)
	}
	if !cfg.Merge.Enabled {
		t.Fatal("expected merge enabled")
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoadEnvOverridesDirectories(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	input := filepath.Join(tempHome, "in")
	output := filepath.Join(tempHome, "out")
	t.Setenv("CHRONOREEL_INPUT_DIR", input)
	t.Setenv("CHRONOREEL_OUTPUT_DIR", output)

	cfg, _, _, err := config.Load(filepath.Join(tempHome, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.InputDir != input {
		t.Fatalf("expected env input dir, got %q", cfg.Paths.InputDir)
	}
	if cfg.Paths.OutputDir != output {
		t.Fatalf("expected env output dir, got %q", cfg.Paths.OutputDir)
	}
}

func TestValidateRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"zero batch", func(c *config.Config) { c.Encoding.BatchSize = 0 }, "encoding.batch_size"},
		{"zero part ceiling", func(c *config.Config) { c.Encoding.MaxClipsPerPart = 0 }, "encoding.max_clips_per_part"},
		{"zero fps", func(c *config.Config) { c.Encoding.FPS = 0 }, "encoding.fps"},
		{"negative width", func(c *config.Config) { c.Render.Width = -1 }, "render.width"},
		{"zero duration", func(c *config.Config) { c.Render.PhotoDuration = 0 }, "render.photo_duration"},
		{"bad zone", func(c *config.Config) { c.Render.Timezone = "Mars/Olympus" }, "render.timezone"},
		{"bad anchor", func(c *config.Config) { c.Caption.Anchor = "middle" }, "caption.anchor"},
		{"bad color", func(c *config.Config) { c.Caption.FillColor = "white" }, "caption.fill_color"},
		{"same dirs", func(c *config.Config) { c.Paths.InputDir = c.Paths.OutputDir }, "must differ"},
		{"input inside output", func(c *config.Config) { c.Paths.InputDir = filepath.Join(c.Paths.OutputDir, "photos") }, "must not be inside"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestValidateIgnoresCaptionStyleWhenDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Caption.Enabled = false
	cfg.Caption.Anchor = "nowhere"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected disabled caption to skip style checks, got %v", err)
	}
}

func TestParseHexColor(t *testing.T) {
	got, err := config.ParseHexColor("#102030")
	if err != nil {
		t.Fatalf("ParseHexColor: %v", err)
	}
	if got.R != 0x10 || got.G != 0x20 || got.B != 0x30 || got.A != 0xFF {
		t.Fatalf("unexpected color: %+v", got)
	}
	withAlpha, err := config.ParseHexColor("#10203080")
	if err != nil {
		t.Fatalf("ParseHexColor alpha: %v", err)
	}
	if withAlpha.A != 0x80 {
		t.Fatalf("unexpected alpha: %d", withAlpha.A)
	}
	if _, err := config.ParseHexColor("#12345"); err == nil {
		t.Fatal("expected error for short color")
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("CHRONOREEL_INPUT_DIR", "")
	t.Setenv("CHRONOREEL_OUTPUT_DIR", "")

	path := filepath.Join(tempHome, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	if decoded.Encoding.MaxClipsPerPart != config.Default().Encoding.MaxClipsPerPart {
		t.Fatalf("sample max_clips_per_part drifted from default: %d", decoded.Encoding.MaxClipsPerPart)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("Load sample: %v", err)
	}
}

func TestEnsureDirectoriesCreatesLogAndJournalParents(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.JournalPath = filepath.Join(base, "state", "journal.db")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, filepath.Dir(cfg.Paths.JournalPath)} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}
}
