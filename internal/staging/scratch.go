package staging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chronoreel/internal/logging"
)

// ScratchPrefix names per-part scratch directories inside the output directory.
const ScratchPrefix = ".scratch-"

// Scratch is a per-part working directory.
type Scratch struct {
	Path string
}

// AcquireScratch creates an empty scratch directory for partIndex. Any leftover
// directory with the same name is replaced.
func AcquireScratch(outputDir string, partIndex int) (*Scratch, error) {
	path := filepath.Join(outputDir, fmt.Sprintf("%s%03d", ScratchPrefix, partIndex))
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("clear scratch directory: %w", err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}
	return &Scratch{Path: path}, nil
}

// File returns a path inside the scratch directory.
func (s *Scratch) File(name string) string {
	return filepath.Join(s.Path, name)
}

// Release removes the scratch directory. It is safe to call more than once.
func (s *Scratch) Release() error {
	if s == nil || s.Path == "" {
		return nil
	}
	if err := os.RemoveAll(s.Path); err != nil {
		return fmt.Errorf("remove scratch directory: %w", err)
	}
	return nil
}

// CleanResult contains the outcome of an orphan cleanup.
type CleanResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanOrphaned removes scratch directories left in outputDir by an interrupted run.
func CleanOrphaned(ctx context.Context, outputDir string, logger *slog.Logger) CleanResult {
	result := CleanResult{}

	outputDir = strings.TrimSpace(outputDir)
	if outputDir == "" {
		return result
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: outputDir, Error: err})
		}
		return result
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return result
		}
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), ScratchPrefix) {
			continue
		}
		dirPath := filepath.Join(outputDir, entry.Name())
		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			logging.WarnWithContext(logger, "failed to remove orphaned scratch directory", "scratch_cleanup_failed",
				logging.String(logging.FieldPath, dirPath),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check output_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, dirPath)
		if logger != nil {
			logger.Info("removed orphaned scratch directory",
				logging.String(logging.FieldPath, dirPath),
				logging.String(logging.FieldEventType, "scratch_cleanup"),
			)
		}
	}

	return result
}

// DirInfo contains metadata about a scratch directory.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// ListScratch returns the scratch directories present in outputDir.
func ListScratch(outputDir string) ([]DirInfo, error) {
	outputDir = strings.TrimSpace(outputDir)
	if outputDir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), ScratchPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirPath := filepath.Join(outputDir, entry.Name())
		size, _ := dirSize(dirPath)
		dirs = append(dirs, DirInfo{
			Name:    entry.Name(),
			Path:    dirPath,
			ModTime: info.ModTime(),
			Size:    size,
		})
	}
	return dirs, nil
}

func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.WalkDir(path, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			if info, err := d.Info(); err == nil {
				size += info.Size()
			}
		}
		return nil
	})
	return size, err
}
