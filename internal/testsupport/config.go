package testsupport

import (
	"path/filepath"
	"testing"

	"chronoreel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Frames are small and captions are off so fixtures render quickly.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.InputDir = filepath.Join(base, "input")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.JournalPath = filepath.Join(base, "journal.db")
	cfgVal.Render.Width = 64
	cfgVal.Render.Height = 36
	cfgVal.Render.Timezone = "UTC"
	cfgVal.Caption.Enabled = false
	cfgVal.Validation.ProbeParts = false
	cfgVal.Logging.RetentionDays = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithBatchSize overrides the window size.
func WithBatchSize(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Encoding.BatchSize = n
	}
}

// WithMaxClipsPerPart overrides the part ceiling.
func WithMaxClipsPerPart(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Encoding.MaxClipsPerPart = n
	}
}

// WithMerge enables the final concatenation.
func WithMerge() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Merge.Enabled = true
	}
}

// WithoutJournal disables run history.
func WithoutJournal() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.JournalPath = ""
	}
}

// BaseDir returns the temp directory that holds every configured path.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
