package encoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"chronoreel/internal/corpus"
	"chronoreel/internal/fileutil"
	"chronoreel/internal/logging"
	"chronoreel/internal/partname"
	"chronoreel/internal/services"
	"chronoreel/internal/staging"
)

// PartResult describes one assembled part file.
type PartResult struct {
	Path      string
	Index     int
	First     time.Time
	Last      time.Time
	Count     int
	Segments  int
	SizeBytes int64
}

// Name returns the base name of the part file.
func (p PartResult) Name() string {
	return filepath.Base(p.Path)
}

// Hooks receive progress callbacks. Nil fields are ignored.
type Hooks struct {
	// Photo is called after each inspected photo with the part index, the
	// number of photos inspected in the run so far, and the run total.
	Photo func(part, done, total int)
	// Part is called after a part file is written.
	Part func(PartResult)
}

// PartBuilder folds windows into part files.
type PartBuilder struct {
	encoder   *BatchEncoder
	backend   Backend
	outputDir string
	maxClips  int
	loc       *time.Location
	logger    *slog.Logger
	hooks     Hooks
	sampler   *logging.ProgressSampler

	done  int
	total int
}

// NewPartBuilder returns a builder writing parts of at most maxClips photos
// into outputDir.
func NewPartBuilder(encoder *BatchEncoder, backend Backend, outputDir string, maxClips int, loc *time.Location, logger *slog.Logger) *PartBuilder {
	if loc == nil {
		loc = time.Local
	}
	return &PartBuilder{
		encoder:   encoder,
		backend:   backend,
		outputDir: outputDir,
		maxClips:  max(maxClips, 1),
		loc:       loc,
		logger:    logging.NewComponentLogger(logger, "parts"),
		sampler:   logging.NewProgressSampler(10),
	}
}

// SetHooks installs progress callbacks.
func (b *PartBuilder) SetHooks(h Hooks) {
	b.hooks = h
}

// SetTotal sets the photo total used for progress reporting.
func (b *PartBuilder) SetTotal(total int) {
	b.total = total
	b.done = 0
	b.sampler.Reset()
}

// BuildPart renders items from the front of remaining until it is exhausted or
// the clip ceiling is reached, and writes the resulting part file. It returns
// the part and the unconsumed suffix. Photos that fail to render are consumed.
//
// When no segment is produced the result is nil, remaining is returned
// unchanged, and the error is marked services.ErrPartFailed. On cancellation
// the error wraps the context error.
func (b *PartBuilder) BuildPart(ctx context.Context, remaining corpus.Ordered, partIndex int) (*PartResult, corpus.Ordered, error) {
	if len(remaining) == 0 {
		return nil, remaining, services.Wrap(services.ErrPartFailed, "parts", "build part", "no photos remaining", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, remaining, err
	}
	logger := b.logger.With(logging.Int(logging.FieldPartIndex, partIndex))

	scratch, err := staging.AcquireScratch(b.outputDir, partIndex)
	if err != nil {
		return nil, remaining, services.Wrap(services.ErrPartFailed, "parts", "acquire scratch", b.outputDir, err)
	}
	defer func() {
		if err := scratch.Release(); err != nil {
			logging.WarnWithContext(logger, "failed to remove scratch directory", "scratch_release_failed",
				logging.String(logging.FieldPath, scratch.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run chronoreel merge to clean orphaned scratch directories"),
			)
		}
	}()

	var (
		segments []Segment
		win      window
		rendered int
		consumed int
		batchIdx int
	)
	win.clips = make([]pendingClip, 0, b.encoder.Size())

	for consumed < len(remaining) && rendered < b.maxClips {
		item := remaining[consumed]
		consumed++
		b.done++

		if err := b.encoder.add(&win, item, scratch); err != nil {
			logging.WarnWithContext(logger, "skipping photo that could not be rendered", "photo_skipped",
				logging.String(logging.FieldPath, item.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check that the file is a readable, supported image"),
				logging.String(logging.FieldImpact, "photo omitted from the video"),
			)
		} else {
			rendered++
		}
		b.reportPhoto(logger, partIndex)

		full := win.inspected >= b.encoder.Size()
		exhausted := consumed == len(remaining)
		atCeiling := rendered >= b.maxClips
		if !full && !exhausted && !atCeiling {
			continue
		}

		batchIdx++
		segment, err := b.encoder.flush(ctx, &win, scratch, batchIdx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, remaining, fmt.Errorf("part %d canceled: %w", partIndex, ctxErr)
			}
			logging.ErrorWithContext(logger, "dropping batch", "batch_failed",
				logging.Int(logging.FieldBatchIndex, batchIdx),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "inspect the ffmpeg error and the photos in this batch"),
				logging.String(logging.FieldImpact, "photos in this batch are missing from the part"),
			)
		} else {
			segments = append(segments, segment)
			logger.Debug("batch encoded",
				logging.Int(logging.FieldBatchIndex, batchIdx),
				logging.Int("clips", segment.Count),
				logging.String(logging.FieldEventType, "batch_encoded"),
			)
		}

		if err := ctx.Err(); err != nil {
			return nil, remaining, fmt.Errorf("part %d canceled: %w", partIndex, err)
		}
	}

	if len(segments) == 0 {
		return nil, remaining, services.Wrap(services.ErrPartFailed, "parts", "build part",
			fmt.Sprintf("part %d produced no segments from %d photos", partIndex, consumed), nil)
	}

	result, err := b.assemble(ctx, segments, partIndex)
	if err != nil {
		return nil, remaining, err
	}
	logger.Info("part assembled",
		logging.String(logging.FieldEventType, "part_complete"),
		logging.String(logging.FieldPath, result.Path),
		logging.Int("photos", result.Count),
		logging.Int("segments", result.Segments),
		logging.Int("inspected", consumed),
	)
	return result, remaining[consumed:], nil
}

func (b *PartBuilder) assemble(ctx context.Context, segments []Segment, partIndex int) (*PartResult, error) {
	count := 0
	inputs := make([]string, len(segments))
	for i, seg := range segments {
		count += seg.Count
		inputs[i] = seg.Path
	}
	first := time.Unix(segments[0].First, 0).In(b.loc)
	last := time.Unix(segments[len(segments)-1].Last, 0).In(b.loc)
	out := filepath.Join(b.outputDir, partname.Format(first, last, count, partIndex))

	if err := b.backend.Concat(ctx, inputs, out); err != nil {
		_ = os.Remove(out)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("part %d canceled: %w", partIndex, errors.Join(ctxErr, err))
		}
		return nil, services.Wrap(services.ErrPartFailed, "parts", "concat segments", filepath.Base(out), err)
	}
	for _, seg := range segments {
		_ = os.Remove(seg.Path)
	}
	return &PartResult{
		Path:      out,
		Index:     partIndex,
		First:     first,
		Last:      last,
		Count:     count,
		Segments:  len(segments),
		SizeBytes: fileutil.FileSize(out),
	}, nil
}

func (b *PartBuilder) reportPhoto(logger *slog.Logger, partIndex int) {
	if b.hooks.Photo != nil {
		b.hooks.Photo(partIndex, b.done, b.total)
	}
	if b.sampler.ShouldLog(partIndex, b.done, b.total) {
		attrs := []logging.Attr{
			logging.Int("done", b.done),
			logging.String(logging.FieldEventType, "render_progress"),
		}
		if b.total > 0 {
			attrs = append(attrs,
				logging.Int("total", b.total),
				logging.Float64("progress_percent", float64(b.done)*100/float64(b.total)),
			)
		}
		logger.Info("render progress", logging.Args(attrs...)...)
	}
}
