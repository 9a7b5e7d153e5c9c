package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"chronoreel/internal/caption"
	"chronoreel/internal/config"
	"chronoreel/internal/corpus"
	"chronoreel/internal/encoding"
	"chronoreel/internal/journal"
	"chronoreel/internal/logging"
	"chronoreel/internal/merge"
	"chronoreel/internal/preflight"
	"chronoreel/internal/services"
	"chronoreel/internal/staging"
	"chronoreel/internal/timestamp"
)

// Options customizes a run. Zero values select the production collaborators.
type Options struct {
	// Logger replaces the per-run log file logger.
	Logger *slog.Logger
	// Backend replaces the ffmpeg backend.
	Backend encoding.Backend
	// Walker replaces the filesystem walker.
	Walker corpus.Walker
	// Probe replaces ffprobe for part validation.
	Probe encoding.ProbeFunc
	// Hooks receive progress callbacks.
	Hooks encoding.Hooks
	// SkipPreflight disables directory and binary checks.
	SkipPreflight bool
}

// Summary reports what a run did. It is filled as far as the run got, so it is
// meaningful alongside an error.
type Summary struct {
	RunID     string
	LogPath   string
	Items     int
	Sources   map[timestamp.Source]int
	Parts     []encoding.PartResult
	Stats     encoding.Stats
	Merge     *merge.Result
	StartedAt time.Time
	Duration  time.Duration
}

// Photos returns the number of photos across all written parts.
func (s Summary) Photos() int {
	total := 0
	for _, p := range s.Parts {
		total += p.Count
	}
	return total
}

// Build runs the full pipeline for cfg.
func Build(ctx context.Context, cfg *config.Config, opts Options) (summary Summary, err error) {
	if cfg == nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "runner", "build", "config is required", nil)
	}
	summary = Summary{RunID: uuid.NewString(), StartedAt: time.Now()}
	ctx = services.WithRunID(ctx, summary.RunID)

	logger := opts.Logger
	if logger == nil {
		runLogger, logPath, logErr := logging.NewForRun(cfg, summary.RunID)
		if logErr != nil {
			return summary, services.Wrap(services.ErrConfiguration, "runner", "init logger", cfg.Paths.LogDir, logErr)
		}
		logger = runLogger
		summary.LogPath = logPath
		logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
			Dir:     cfg.Paths.LogDir,
			Pattern: logging.RunLogPattern,
			Exclude: []string{logPath},
		})
	}
	logger = logging.NewComponentLogger(logger, "runner")

	lock, err := AcquireOutputLock(cfg.Paths.OutputDir)
	if err != nil {
		return summary, err
	}
	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil {
			logger.Warn("failed to release output lock", logging.Error(releaseErr), logging.String(logging.FieldPath, lock.Path()))
		}
	}()

	if !opts.SkipPreflight {
		if err := runPreflight(ctx, cfg, logger); err != nil {
			return summary, err
		}
	}

	store := openJournal(ctx, cfg, logger)
	defer store.Close()
	if store != nil {
		if err := store.StartRun(ctx, journal.Run{
			ID:        summary.RunID,
			InputDir:  cfg.Paths.InputDir,
			OutputDir: cfg.Paths.OutputDir,
			StartedAt: summary.StartedAt,
		}); err != nil {
			logger.Warn("failed to record run start", logging.Error(err))
			store = nil
		}
	}
	defer func() {
		summary.Duration = time.Since(summary.StartedAt)
		finishJournal(ctx, store, summary, err, logger)
		logOutcome(logger, summary, err)
	}()

	logger.Info("build started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("input_dir", cfg.Paths.InputDir),
		logging.String("output_dir", cfg.Paths.OutputDir),
		logging.Int("batch_size", cfg.Encoding.BatchSize),
		logging.Int("max_clips_per_part", cfg.Encoding.MaxClipsPerPart),
	)

	loc := cfg.Location()
	walker := opts.Walker
	if walker == nil {
		walker = corpus.DirWalker{Logger: logger}
	}
	resolver := timestamp.New(loc, logger)
	items, err := corpus.NewOrderer(walker, resolver, loc, logger).Order(ctx, cfg.Paths.InputDir)
	if err != nil {
		return summary, err
	}
	summary.Items = len(items)
	summary.Sources = items.SourceCounts()
	if store != nil {
		if err := store.SetItemsTotal(ctx, summary.RunID, len(items)); err != nil {
			logger.Warn("failed to record corpus size", logging.Error(err))
		}
	}

	renderer, closeRenderer, err := newRenderer(cfg, loc, logger)
	if err != nil {
		return summary, err
	}
	defer closeRenderer()

	backend := opts.Backend
	if backend == nil {
		backend = encoding.NewFFmpegBackend(cfg.Encoding.FFmpegBinary, encoding.ParamsFromConfig(cfg.Encoding), logger)
	}
	frames := encoding.FramesPerPhoto(cfg.Render.PhotoDuration, cfg.Encoding.FPS)
	encoder := encoding.NewBatchEncoder(backend, renderer, cfg.Encoding.BatchSize, frames, logger)
	builder := encoding.NewPartBuilder(encoder, backend, cfg.Paths.OutputDir, cfg.Encoding.MaxClipsPerPart, loc, logger)
	builder.SetHooks(journalHooks(ctx, opts.Hooks, store, summary.RunID, logger))
	driver := encoding.NewDriver(builder, cfg.Paths.OutputDir, logger).
		WithProtected(cfg.Paths.InputDir, cfg.Paths.LogDir, cfg.Paths.JournalPath)
	if cfg.Validation.ProbeParts {
		driver.WithProbe(cfg.Encoding.FFprobeBinary, opts.Probe)
	}

	summary.Parts, err = driver.Run(ctx, items)
	summary.Stats = driver.Stats()
	if err != nil {
		return summary, err
	}

	if cfg.Merge.Enabled {
		result, mergeErr := merge.New(backend, logger).Merge(ctx, cfg.Paths.OutputDir)
		if mergeErr != nil {
			return summary, mergeErr
		}
		summary.Merge = &result
	}
	return summary, nil
}

// MergeOnly removes orphaned scratch directories and merges the parts already
// present in the output directory.
func MergeOnly(ctx context.Context, cfg *config.Config, opts Options) (merge.Result, error) {
	if cfg == nil {
		return merge.Result{}, services.Wrap(services.ErrConfiguration, "runner", "merge", "config is required", nil)
	}
	logger := opts.Logger
	if logger == nil {
		var err error
		logger, err = logging.NewFromConfig(cfg)
		if err != nil {
			return merge.Result{}, services.Wrap(services.ErrConfiguration, "runner", "init logger", "", err)
		}
	}
	lock, err := AcquireOutputLock(cfg.Paths.OutputDir)
	if err != nil {
		return merge.Result{}, err
	}
	defer lock.Release()

	cleaned := staging.CleanOrphaned(ctx, cfg.Paths.OutputDir, logger)
	if len(cleaned.Removed) > 0 {
		logger.Info("orphaned scratch removed", logging.Int("directories", len(cleaned.Removed)))
	}

	backend := opts.Backend
	if backend == nil {
		backend = encoding.NewFFmpegBackend(cfg.Encoding.FFmpegBinary, encoding.ParamsFromConfig(cfg.Encoding), logger)
	}
	return merge.New(backend, logger).Merge(ctx, cfg.Paths.OutputDir)
}

func runPreflight(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	failed := preflight.Failed(preflight.RunAll(ctx, cfg, preflight.Options{Input: true}))
	if len(failed) == 0 {
		return nil
	}
	details := make([]string, 0, len(failed))
	for _, f := range failed {
		details = append(details, fmt.Sprintf("%s: %s", f.Name, f.Detail))
		logging.ErrorWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", f.Name),
			logging.String("detail", f.Detail),
			logging.String(logging.FieldErrorHint, "run chronoreel doctor for details"),
		)
	}
	return services.Wrap(services.ErrConfiguration, "runner", "preflight", strings.Join(details, "; "), nil)
}

func openJournal(ctx context.Context, cfg *config.Config, logger *slog.Logger) *journal.Store {
	if strings.TrimSpace(cfg.Paths.JournalPath) == "" {
		return nil
	}
	store, err := journal.Open(ctx, cfg.Paths.JournalPath)
	if err != nil {
		logging.WarnWithContext(logger, "run journal unavailable", "journal_open_failed",
			logging.String(logging.FieldPath, cfg.Paths.JournalPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.journal_db or set it to \"\" to disable"),
			logging.String(logging.FieldImpact, "this run is not recorded in history"),
		)
		return nil
	}
	if n, err := store.MarkAbandoned(ctx, cfg.Paths.OutputDir); err != nil {
		logger.Warn("failed to close abandoned runs", logging.Error(err))
	} else if n > 0 {
		logger.Info("marked abandoned runs as failed", logging.Int64("runs", n))
	}
	return store
}

func journalHooks(ctx context.Context, hooks encoding.Hooks, store *journal.Store, runID string, logger *slog.Logger) encoding.Hooks {
	if store == nil {
		return hooks
	}
	next := hooks.Part
	hooks.Part = func(part encoding.PartResult) {
		err := store.RecordPart(context.WithoutCancel(ctx), journal.Part{
			RunID:     runID,
			Index:     part.Index,
			Path:      part.Path,
			FirstDate: part.First,
			LastDate:  part.Last,
			Count:     part.Count,
			SizeBytes: part.SizeBytes,
		})
		if err != nil {
			logger.Warn("failed to record part", logging.Int(logging.FieldPartIndex, part.Index), logging.Error(err))
		}
		if next != nil {
			next(part)
		}
	}
	return hooks
}

func finishJournal(ctx context.Context, store *journal.Store, summary Summary, runErr error, logger *slog.Logger) {
	if store == nil {
		return
	}
	outcome := journal.Outcome{
		Status:      journal.StatusSucceeded,
		PartsTotal:  len(summary.Parts),
		PhotosTotal: summary.Photos(),
	}
	if summary.Merge != nil {
		outcome.MergedPath = summary.Merge.Path
	}
	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled):
		outcome.Status = journal.StatusCanceled
		outcome.ErrorMessage = runErr.Error()
	default:
		outcome.Status = journal.StatusFailed
		outcome.ErrorMessage = runErr.Error()
	}
	if err := store.FinishRun(context.WithoutCancel(ctx), summary.RunID, outcome); err != nil {
		logger.Warn("failed to record run outcome", logging.Error(err))
	}
}

func logOutcome(logger *slog.Logger, summary Summary, err error) {
	attrs := []logging.Attr{
		logging.Int("photos_ordered", summary.Items),
		logging.Int("parts", len(summary.Parts)),
		logging.Int("photos_encoded", summary.Photos()),
		logging.Int("photos_skipped", summary.Stats.Skipped),
		logging.Duration("elapsed", summary.Duration.Round(time.Millisecond)),
	}
	if summary.Merge != nil {
		attrs = append(attrs, logging.String("merged", summary.Merge.Path))
	}
	if err == nil {
		attrs = append(attrs, logging.String(logging.FieldEventType, "run_complete"))
		logger.Info("build finished", logging.Args(attrs...)...)
		return
	}
	attrs = append(attrs,
		logging.Error(err),
		logging.String("tier", services.Tier(err)),
		logging.String(logging.FieldEventType, "run_failed"),
	)
	logger.Error("build failed", logging.Args(attrs...)...)
}

func newRenderer(cfg *config.Config, loc *time.Location, logger *slog.Logger) (*encoding.PhotoRenderer, func(), error) {
	text := caption.NewTextBuilder(loc, cfg.Render.DateFormat)
	if !cfg.Caption.Enabled {
		return encoding.NewPhotoRenderer(cfg.Render.Width, cfg.Render.Height, text, nil), func() {}, nil
	}
	style, err := caption.StyleFromConfig(cfg.Caption)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, "runner", "caption style", "", err)
	}
	captions, err := caption.NewRenderer(style, logger)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, "runner", "caption font", "", err)
	}
	closeFn := func() { _ = captions.Close() }
	return encoding.NewPhotoRenderer(cfg.Render.Width, cfg.Render.Height, text, captions), closeFn, nil
}
