package staging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"chronoreel/internal/logging"
)

// ResetOutput deletes outputDir and everything in it, then recreates it empty.
// It refuses the filesystem root, the user's home directory, and any directory
// that is or contains one of the protected paths.
func ResetOutput(outputDir string, logger *slog.Logger, protected ...string) error {
	outputDir = strings.TrimSpace(outputDir)
	if outputDir == "" || outputDir == string(filepath.Separator) {
		return fmt.Errorf("refusing to reset output directory %q", outputDir)
	}
	if err := checkResettable(outputDir, protected); err != nil {
		return err
	}
	existing := 0
	if entries, err := os.ReadDir(outputDir); err == nil {
		existing = len(entries)
	}
	if err := os.RemoveAll(outputDir); err != nil {
		return fmt.Errorf("remove output directory: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if logger != nil {
		logger.Info("output directory reset",
			logging.String(logging.FieldEventType, "output_reset"),
			logging.String(logging.FieldPath, outputDir),
			logging.Int("removed_entries", existing),
		)
	}
	return nil
}

func checkResettable(outputDir string, protected []string) error {
	target, err := filepath.Abs(outputDir)
	if err != nil {
		return fmt.Errorf("resolve output directory: %w", err)
	}
	if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
		if home, err = filepath.Abs(home); err == nil && contains(target, home) {
			return fmt.Errorf("refusing to reset output directory %q: it is or contains the home directory", outputDir)
		}
	}
	for _, path := range protected {
		if strings.TrimSpace(path) == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			continue
		}
		if contains(target, abs) {
			return fmt.Errorf("refusing to reset output directory %q: it is or contains %s", outputDir, abs)
		}
	}
	return nil
}

// contains reports whether path is dir or lies below it.
func contains(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
