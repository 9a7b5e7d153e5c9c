package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var captionAnchors = map[string]struct{}{
	"top-left":      {},
	"top-center":    {},
	"top-right":     {},
	"bottom-left":   {},
	"bottom-center": {},
	"bottom-right":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateCaption(); err != nil {
		return err
	}
	if err := c.validateEncoding(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.InputDir != "" && c.Paths.InputDir == c.Paths.OutputDir {
		return errors.New("paths.output_dir must differ from paths.input_dir (the output directory is reset on every build)")
	}
	if c.Paths.InputDir != "" && strings.HasPrefix(c.Paths.InputDir, c.Paths.OutputDir+string(filepath.Separator)) {
		return errors.New("paths.input_dir must not be inside paths.output_dir (the output directory is reset on every build)")
	}
	return nil
}

func (c *Config) validateRender() error {
	if err := ensurePositiveMap(map[string]int{
		"render.width":  c.Render.Width,
		"render.height": c.Render.Height,
	}); err != nil {
		return err
	}
	if c.Render.PhotoDuration <= 0 {
		return errors.New("render.photo_duration must be positive (seconds)")
	}
	if _, err := loadLocation(c.Render.Timezone); err != nil {
		return fmt.Errorf("render.timezone: %w", err)
	}
	return nil
}

func (c *Config) validateCaption() error {
	if !c.Caption.Enabled {
		return nil
	}
	if c.Caption.FontSize <= 0 {
		return errors.New("caption.font_size must be positive")
	}
	if c.Caption.Margin < 0 {
		return errors.New("caption.margin must be >= 0")
	}
	if _, ok := captionAnchors[c.Caption.Anchor]; !ok {
		return fmt.Errorf("caption.anchor %q is not supported (expected top-left|top-center|top-right|bottom-left|bottom-center|bottom-right)", c.Caption.Anchor)
	}
	if _, err := ParseHexColor(c.Caption.FillColor); err != nil {
		return fmt.Errorf("caption.fill_color: %w", err)
	}
	if _, err := ParseHexColor(c.Caption.OutlineColor); err != nil {
		return fmt.Errorf("caption.outline_color: %w", err)
	}
	return nil
}

func (c *Config) validateEncoding() error {
	if err := ensurePositiveMap(map[string]int{
		"encoding.batch_size":         c.Encoding.BatchSize,
		"encoding.max_clips_per_part": c.Encoding.MaxClipsPerPart,
		"encoding.fps":                c.Encoding.FPS,
	}); err != nil {
		return err
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
