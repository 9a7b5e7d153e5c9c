// Package merge concatenates the part files of an output directory into one
// video named for the year of the first part and the total photo count.
package merge

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"

	"chronoreel/internal/fileutil"
	"chronoreel/internal/logging"
	"chronoreel/internal/partname"
	"chronoreel/internal/services"
)

// Concatenator joins video files end to end.
type Concatenator interface {
	Concat(ctx context.Context, inputs []string, out string) error
}

// Input is one part file that takes part in a merge.
type Input struct {
	Path string
	Part partname.Part
}

// Result describes a finished merge.
type Result struct {
	Path      string
	Inputs    []Input
	Year      int
	Total     int
	SizeBytes int64
	Copied    bool
}

// Merger merges part files found in an output directory.
type Merger struct {
	backend Concatenator
	logger  *slog.Logger
}

// New returns a merger that concatenates through backend.
func New(backend Concatenator, logger *slog.Logger) *Merger {
	return &Merger{backend: backend, logger: logging.NewComponentLogger(logger, "merge")}
}

// Scan returns the conforming part files in outputDir sorted by part index.
// Files that match the part glob but not the part grammar are skipped with a
// warning.
func Scan(outputDir string, logger *slog.Logger) ([]Input, error) {
	matches, err := filepath.Glob(filepath.Join(outputDir, partname.Glob))
	if err != nil {
		return nil, fmt.Errorf("scan parts: %w", err)
	}
	inputs := make([]Input, 0, len(matches))
	for _, path := range matches {
		part, err := partname.Parse(filepath.Base(path))
		if err != nil {
			logging.WarnWithContext(logger, "skipping file with non-conforming part name", "merge_part_skipped",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "rename to YYYY-MM-DD_YYYY-MM-DD_N-photos_NNN.mp4 or move it out of output_dir"),
				logging.String(logging.FieldImpact, "file not included in the merged video"),
			)
			continue
		}
		inputs = append(inputs, Input{Path: path, Part: part})
	}
	sort.SliceStable(inputs, func(i, j int) bool {
		return inputs[i].Part.Index < inputs[j].Part.Index
	})
	return inputs, nil
}

// Merge writes {year}_{total}-photos.mp4 into outputDir from the parts found
// there, in part index order. It returns services.ErrNoParts, writing nothing,
// when no conforming part exists. A single part is copied instead of
// re-muxed.
func (m *Merger) Merge(ctx context.Context, outputDir string) (Result, error) {
	inputs, err := Scan(outputDir, m.logger)
	if err != nil {
		return Result{}, services.Wrap(services.ErrValidation, "merge", "scan", outputDir, err)
	}
	if len(inputs) == 0 {
		return Result{}, services.Wrap(services.ErrNoParts, "merge", "scan",
			fmt.Sprintf("no %s files in %s", partname.Glob, outputDir), nil)
	}

	year := inputs[0].Part.Year()
	total := 0
	paths := make([]string, len(inputs))
	for i, in := range inputs {
		total += in.Part.Count
		paths[i] = in.Path
	}
	out := filepath.Join(outputDir, partname.Merged(year, total))
	result := Result{Path: out, Inputs: inputs, Year: year, Total: total}

	m.logger.Info("merging parts",
		logging.Int("parts", len(inputs)),
		logging.Int("photos", total),
		logging.String(logging.FieldPath, out),
		logging.String(logging.FieldEventType, "merge_start"),
	)

	if len(inputs) == 1 {
		if err := fileutil.CopyFileVerified(paths[0], out); err != nil {
			return Result{}, services.Wrap(services.ErrValidation, "merge", "copy single part", out, err)
		}
		result.Copied = true
	} else if err := m.backend.Concat(ctx, paths, out); err != nil {
		_ = os.Remove(out)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		return Result{}, services.Wrap(services.ErrExternalTool, "merge", "concat parts", out, err)
	}

	result.SizeBytes = fileutil.FileSize(out)
	m.logger.Info("merged video written",
		logging.String(logging.FieldPath, out),
		logging.Int("parts", len(inputs)),
		logging.Int("photos", total),
		logging.String("size", humanize.Bytes(uint64(max(result.SizeBytes, 0)))),
		logging.Bool("copied", result.Copied),
		logging.String(logging.FieldEventType, "merge_complete"),
	)
	return result, nil
}
