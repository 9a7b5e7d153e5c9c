package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains input, output, and bookkeeping locations.
type Paths struct {
	InputDir    string `toml:"input_dir"`
	OutputDir   string `toml:"output_dir"`
	LogDir      string `toml:"log_dir"`
	JournalPath string `toml:"journal_db"`
}

// Render contains frame geometry and timing.
type Render struct {
	Width         int     `toml:"width"`
	Height        int     `toml:"height"`
	PhotoDuration float64 `toml:"photo_duration"`
	Timezone      string  `toml:"timezone"`
	DateFormat    string  `toml:"date_format"`
}

// Caption contains the style of the burned-in caption.
type Caption struct {
	Enabled      bool   `toml:"enabled"`
	FontPath     string `toml:"font_path"`
	FontSize     int    `toml:"font_size"`
	Anchor       string `toml:"anchor"`
	Margin       int    `toml:"margin"`
	FillColor    string `toml:"fill_color"`
	OutlineColor string `toml:"outline_color"`
	OutlineWidth int    `toml:"outline_width"`
}

// Encoding contains batching limits and encoder parameters.
type Encoding struct {
	BatchSize       int    `toml:"batch_size"`
	MaxClipsPerPart int    `toml:"max_clips_per_part"`
	FPS             int    `toml:"fps"`
	Bitrate         string `toml:"bitrate"`
	Codec           string `toml:"codec"`
	Preset          string `toml:"preset"`
	PixelFormat     string `toml:"pixel_format"`
	FFmpegBinary    string `toml:"ffmpeg_binary"`
	FFprobeBinary   string `toml:"ffprobe_binary"`
}

// Merge controls the final concatenation pass.
type Merge struct {
	Enabled bool `toml:"enabled"`
}

// Validation contains post-encode checks.
type Validation struct {
	ProbeParts bool `toml:"probe_parts"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for chronoreel.
//
// Configuration sections by subsystem:
//   - Paths: input tree, output directory, logs, run journal
//   - Render: frame size, photo duration, time zone, date format
//   - Caption: caption font and placement
//   - Encoding: batch window, part ceiling, ffmpeg parameters
//   - Merge: final concatenation after a build
//   - Validation: ffprobe checks on produced parts
//   - Logging: log format, level, and retention
type Config struct {
	Paths      Paths      `toml:"paths"`
	Render     Render     `toml:"render"`
	Caption    Caption    `toml:"caption"`
	Encoding   Encoding   `toml:"encoding"`
	Merge      Merge      `toml:"merge"`
	Validation Validation `toml:"validation"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/chronoreel/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("chronoreel.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log directory and the parent of the journal.
// The output directory is owned by the part driver, which resets it per run.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir}
	if strings.TrimSpace(c.Paths.JournalPath) != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.JournalPath))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Location returns the time zone used for filename dates and captions.
// Unknown names fall back to the local zone; Validate rejects them earlier.
func (c *Config) Location() *time.Location {
	loc, err := loadLocation(c.Render.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func loadLocation(name string) (*time.Location, error) {
	switch strings.TrimSpace(name) {
	case "", "Local", "local":
		return time.Local, nil
	case "UTC", "utc":
		return time.UTC, nil
	default:
		return time.LoadLocation(strings.TrimSpace(name))
	}
}

// ParseHexColor parses "#RRGGBB" or "#RRGGBBAA" into an opaque-by-default RGBA.
func ParseHexColor(value string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("color %q: expected #RRGGBB or #RRGGBBAA", value)
	}
	parsed, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", value, err)
	}
	if len(hex) == 6 {
		parsed = parsed<<8 | 0xFF
	}
	return color.RGBA{
		R: uint8(parsed >> 24),
		G: uint8(parsed >> 16),
		B: uint8(parsed >> 8),
		A: uint8(parsed),
	}, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := renameio.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
