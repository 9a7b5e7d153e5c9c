package encoding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"chronoreel/internal/corpus"
	"chronoreel/internal/logging"
	"chronoreel/internal/media/ffprobe"
	"chronoreel/internal/services"
	"chronoreel/internal/staging"
)

// ProbeFunc inspects a media file.
type ProbeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Driver owns the output directory for one run and builds parts until the
// corpus is consumed.
type Driver struct {
	builder   *PartBuilder
	outputDir string
	logger    *slog.Logger

	probe         ProbeFunc
	ffprobeBinary string
	protected     []string
}

// NewDriver returns a driver that writes parts into outputDir.
func NewDriver(builder *PartBuilder, outputDir string, logger *slog.Logger) *Driver {
	return &Driver{
		builder:   builder,
		outputDir: outputDir,
		logger:    logging.NewComponentLogger(logger, "driver"),
	}
}

// WithProbe enables ffprobe validation of each assembled part.
func (d *Driver) WithProbe(binary string, probe ProbeFunc) *Driver {
	if probe == nil {
		probe = ffprobe.Inspect
	}
	d.ffprobeBinary = binary
	d.probe = probe
	return d
}

// WithProtected names paths the output reset must never remove.
func (d *Driver) WithProtected(paths ...string) *Driver {
	d.protected = append(d.protected, paths...)
	return d
}

// Run resets the output directory and builds parts numbered from 1 until items
// are consumed. A failed part stops the run; parts written before it are kept
// and returned alongside the error.
func (d *Driver) Run(ctx context.Context, items corpus.Ordered) ([]PartResult, error) {
	if err := staging.ResetOutput(d.outputDir, d.logger, d.protected...); err != nil {
		return nil, services.Wrap(services.ErrValidation, "driver", "reset output", d.outputDir, err)
	}
	d.builder.SetTotal(len(items))

	var parts []PartResult
	remaining := items
	for index := 1; len(remaining) > 0; index++ {
		if err := ctx.Err(); err != nil {
			return parts, err
		}
		partCtx := services.WithPartIndex(ctx, index)
		result, rest, err := d.builder.BuildPart(partCtx, remaining, index)
		if err != nil {
			logging.ErrorWithContext(d.logger, "part failed; stopping run", "part_failed",
				logging.Int(logging.FieldPartIndex, index),
				logging.Error(err),
				logging.Int("parts_kept", len(parts)),
				logging.Int("photos_remaining", len(remaining)),
				logging.String(logging.FieldErrorHint, "earlier parts are intact; fix the cause and rerun"),
				logging.String(logging.FieldImpact, "remaining photos were not encoded"),
			)
			return parts, err
		}
		remaining = rest

		d.validate(partCtx, *result)
		d.logger.Info("part written",
			logging.Int(logging.FieldPartIndex, index),
			logging.String(logging.FieldPath, result.Path),
			logging.Int("photos", result.Count),
			logging.String("size", humanize.Bytes(uint64(max(result.SizeBytes, 0)))),
			logging.Int("photos_remaining", len(remaining)),
			logging.String(logging.FieldEventType, "part_written"),
		)
		if d.builder.hooks.Part != nil {
			d.builder.hooks.Part(*result)
		}
		parts = append(parts, *result)
	}

	stats := d.builder.encoder.Stats()
	d.logger.Info("all parts written",
		logging.Int("parts", len(parts)),
		logging.Int("photos_rendered", stats.Rendered),
		logging.Int("photos_skipped", stats.Skipped),
		logging.Int("batches", stats.Batches),
		logging.Int("batches_failed", stats.FailedBatches),
		logging.Int("peak_pending_frames", stats.PeakPendingFrames),
		logging.String(logging.FieldEventType, "run_parts_complete"),
	)
	return parts, nil
}

// validate logs an error when the part has no video stream. The file is kept.
func (d *Driver) validate(ctx context.Context, part PartResult) {
	if d.probe == nil {
		return
	}
	result, err := d.probe(ctx, d.ffprobeBinary, part.Path)
	if err != nil {
		logging.WarnWithContext(d.logger, "could not probe part", "part_probe_failed",
			logging.String(logging.FieldPath, part.Path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check encoding.ffprobe_binary"),
			logging.String(logging.FieldImpact, "part was not validated"),
		)
		return
	}
	if result.VideoStreamCount() == 0 {
		logging.ErrorWithContext(d.logger, "part has no video stream", "part_invalid",
			logging.Alert("validation"),
			logging.String(logging.FieldPath, part.Path),
			logging.String(logging.FieldErrorHint, "inspect the part with ffprobe; re-run the build"),
			logging.String(logging.FieldImpact, fmt.Sprintf("part %d may not play", part.Index)),
		)
		return
	}
	if video, ok := result.VideoStream(); ok {
		d.logger.Debug("part validated",
			logging.String(logging.FieldPath, part.Path),
			logging.Int("width", video.Width),
			logging.Int("height", video.Height),
			logging.Float64("duration_seconds", result.DurationSeconds()),
		)
	}
}

// Stats returns the batch encoder counters.
func (d *Driver) Stats() Stats {
	return d.builder.encoder.Stats()
}
