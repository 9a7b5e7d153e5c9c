package corpus

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"chronoreel/internal/logging"
	"chronoreel/internal/services"
	"chronoreel/internal/timestamp"
)

// previewCount is how many leading items are logged after ordering.
const previewCount = 10

// Resolver assigns a timestamp to a photo path.
type Resolver interface {
	Resolve(path string) timestamp.Resolution
}

// Orderer builds the ordered corpus.
type Orderer struct {
	walker   Walker
	resolver Resolver
	logger   *slog.Logger
	loc      *time.Location
}

// NewOrderer constructs an Orderer. loc is used only for log formatting.
func NewOrderer(walker Walker, resolver Resolver, loc *time.Location, logger *slog.Logger) *Orderer {
	if walker == nil {
		walker = DirWalker{Logger: logger}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Orderer{
		walker:   walker,
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "corpus"),
		loc:      loc,
	}
}

// Order discovers images under root, resolves their timestamps, and sorts them.
// An input tree without supported images returns an error marked ErrEmptyCorpus.
func (o *Orderer) Order(ctx context.Context, root string) (Ordered, error) {
	started := time.Now()
	var items Ordered
	skipped := 0
	err := o.walker.Walk(ctx, root, func(path string) error {
		if !IsImage(path) {
			skipped++
			return nil
		}
		res := o.resolver.Resolve(path)
		items = append(items, Item{
			Path:      path,
			Timestamp: res.Epoch,
			Source:    res.Source,
			Seq:       len(items),
		})
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, services.Wrap(services.ErrValidation, "corpus", "walk", root, err)
	}
	if len(items) == 0 {
		return nil, services.Wrap(services.ErrEmptyCorpus, "corpus", "order", root, nil)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp < items[j].Timestamp
	})

	o.logger.Info("corpus ordered",
		logging.String(logging.FieldEventType, "corpus_ordered"),
		logging.String("input_dir", root),
		logging.Int("photo_count", len(items)),
		logging.Int("non_image_files", skipped),
		logging.String("first_photo", items[0].Time(o.loc).Format(time.DateTime)),
		logging.String("last_photo", items[len(items)-1].Time(o.loc).Format(time.DateTime)),
		logging.Duration("elapsed", time.Since(started)),
	)
	for i, item := range items {
		if i >= previewCount {
			break
		}
		o.logger.Debug("ordered photo",
			logging.Int("position", i+1),
			logging.String(logging.FieldPath, item.Path),
			logging.String("taken", item.Time(o.loc).Format(time.DateTime)),
			logging.String("source", string(item.Source)),
		)
	}
	return items, nil
}

// SourceCounts tallies how many items each resolver tier produced.
func (c Ordered) SourceCounts() map[timestamp.Source]int {
	counts := make(map[timestamp.Source]int)
	for _, item := range c {
		counts[item.Source]++
	}
	return counts
}
