package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRender()
	c.normalizeCaption()
	c.normalizeEncoding()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("CHRONOREEL_INPUT_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.InputDir = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("CHRONOREEL_OUTPUT_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.OutputDir = strings.TrimSpace(value)
	}

	var err error
	if c.Paths.InputDir, err = expandPath(strings.TrimSpace(c.Paths.InputDir)); err != nil {
		return fmt.Errorf("paths.input_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	// An empty journal path disables run history.
	if c.Paths.JournalPath, err = expandPath(strings.TrimSpace(c.Paths.JournalPath)); err != nil {
		return fmt.Errorf("paths.journal_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeRender() {
	c.Render.Timezone = strings.TrimSpace(c.Render.Timezone)
	if c.Render.Timezone == "" {
		c.Render.Timezone = defaultTimezone
	}
	if strings.TrimSpace(c.Render.DateFormat) == "" {
		c.Render.DateFormat = defaultDateFormat
	}
}

func (c *Config) normalizeCaption() {
	c.Caption.FontPath = strings.TrimSpace(c.Caption.FontPath)
	if c.Caption.FontPath != "" {
		if expanded, err := expandPath(c.Caption.FontPath); err == nil {
			c.Caption.FontPath = expanded
		}
	}
	c.Caption.Anchor = strings.ToLower(strings.TrimSpace(c.Caption.Anchor))
	if c.Caption.Anchor == "" {
		c.Caption.Anchor = defaultCaptionAnchor
	}
	if strings.TrimSpace(c.Caption.FillColor) == "" {
		c.Caption.FillColor = defaultFillColor
	}
	if strings.TrimSpace(c.Caption.OutlineColor) == "" {
		c.Caption.OutlineColor = defaultOutlineColor
	}
	if c.Caption.OutlineWidth < 0 {
		c.Caption.OutlineWidth = 0
	}
}

func (c *Config) normalizeEncoding() {
	defaults := map[*string]string{
		&c.Encoding.Bitrate:       defaultBitrate,
		&c.Encoding.Codec:         defaultCodec,
		&c.Encoding.Preset:        defaultPreset,
		&c.Encoding.PixelFormat:   defaultPixelFormat,
		&c.Encoding.FFmpegBinary:  defaultFFmpegBinary,
		&c.Encoding.FFprobeBinary: defaultFFprobeBinary,
	}
	for field, fallback := range defaults {
		*field = strings.TrimSpace(*field)
		if *field == "" {
			*field = fallback
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
