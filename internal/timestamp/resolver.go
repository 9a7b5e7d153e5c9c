package timestamp

import (
	"errors"
	"log/slog"
	"time"

	"chronoreel/internal/logging"
	"chronoreel/internal/sidecar"
)

// Source names the tier that produced a timestamp.
type Source string

const (
	SourceFilename   Source = "filename"
	SourceSidecar    Source = "sidecar"
	SourceBirthTime  Source = "birth_time"
	SourceChangeTime Source = "change_time"
	SourceModTime    Source = "mod_time"
	SourceNow        Source = "now"
)

// Resolution is the outcome of resolving one photo.
type Resolution struct {
	Epoch  int64
	Source Source
}

// Time converts the resolution to a time in loc.
func (r Resolution) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(r.Epoch, 0).In(loc)
}

// Resolver assigns timestamps. The zero value is not usable; use New.
type Resolver struct {
	loc         *time.Location
	logger      *slog.Logger
	readSidecar func(string) (sidecar.Metadata, error)
	fileTimes   func(string) (int64, Source, error)
	now         func() time.Time
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithSidecarReader replaces the sidecar lookup.
func WithSidecarReader(read func(string) (sidecar.Metadata, error)) Option {
	return func(r *Resolver) {
		if read != nil {
			r.readSidecar = read
		}
	}
}

// WithFileTimes replaces the filesystem time lookup.
func WithFileTimes(lookup func(string) (int64, Source, error)) Option {
	return func(r *Resolver) {
		if lookup != nil {
			r.fileTimes = lookup
		}
	}
}

// WithClock replaces the clock used for the last-resort fallback.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// New constructs a Resolver. Filename dates are interpreted in loc.
func New(loc *time.Location, logger *slog.Logger, opts ...Option) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	r := &Resolver{
		loc:         loc,
		logger:      logging.NewComponentLogger(logger, "timestamp"),
		readSidecar: sidecar.Read,
		fileTimes:   fileTimes,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Location returns the zone used for filename dates.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Resolve returns the capture time for path. It never fails.
func (r *Resolver) Resolve(path string) Resolution {
	if epoch, ok := FromFilename(path, r.loc); ok {
		r.logger.Debug("timestamp from filename",
			logging.String(logging.FieldPath, path),
			logging.Int64("epoch", epoch),
		)
		return Resolution{Epoch: epoch, Source: SourceFilename}
	}

	meta, err := r.readSidecar(path)
	switch {
	case err == nil && meta.CreationTime > 0:
		r.logger.Debug("timestamp from sidecar",
			logging.String(logging.FieldPath, path),
			logging.Int64("epoch", meta.CreationTime),
		)
		return Resolution{Epoch: meta.CreationTime, Source: SourceSidecar}
	case err == nil:
		logging.WarnWithContext(r.logger, "sidecar has no creationTime.timestamp", "sidecar_field_missing",
			logging.String(logging.FieldPath, sidecar.Path(path)),
			logging.String(logging.FieldErrorHint, "check the export that produced the sidecar"),
			logging.String(logging.FieldImpact, "falling back to filesystem time"),
		)
	case errors.Is(err, sidecar.ErrNotFound):
	default:
		logging.WarnWithContext(r.logger, "sidecar unreadable", "sidecar_malformed",
			logging.String(logging.FieldPath, sidecar.Path(path)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix or remove the sidecar file"),
			logging.String(logging.FieldImpact, "falling back to filesystem time"),
		)
	}

	epoch, source, err := r.fileTimes(path)
	if err != nil {
		now := r.now().Unix()
		logging.WarnWithContext(r.logger, "photo has no usable timestamp; using current time", "timestamp_fallback_now",
			logging.String(logging.FieldPath, path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "rename the photo with its capture date or add a sidecar"),
			logging.String(logging.FieldImpact, "photo is placed at the end of the ordering"),
		)
		return Resolution{Epoch: now, Source: SourceNow}
	}
	logging.WarnWithContext(r.logger, "timestamp from filesystem metadata", "timestamp_fallback_filesystem",
		logging.String(logging.FieldPath, path),
		logging.String("source", string(source)),
		logging.String(logging.FieldErrorHint, "rename the photo with its capture date or add a sidecar"),
		logging.String(logging.FieldImpact, "ordering may reflect copy time instead of capture time"),
	)
	return Resolution{Epoch: epoch, Source: source}
}
