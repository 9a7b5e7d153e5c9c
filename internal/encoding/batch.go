package encoding

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"chronoreel/internal/corpus"
	"chronoreel/internal/logging"
	"chronoreel/internal/services"
	"chronoreel/internal/staging"
)

// Stats are counters kept by a BatchEncoder across its lifetime.
type Stats struct {
	// PeakPendingFrames is the largest number of frames held by one window.
	PeakPendingFrames int
	// PeakLiveRasters is the largest number of photos being rendered at once.
	PeakLiveRasters int
	Rendered        int
	Skipped         int
	Batches         int
	FailedBatches   int
}

// Segment is the encoded video of one flushed window.
type Segment struct {
	Path  string
	Index int
	Count int
	First int64
	Last  int64
}

type pendingClip struct {
	clip Clip
	item corpus.Item
}

// window is the set of items inspected since the last flush.
type window struct {
	inspected int
	clips     []pendingClip
}

func (w *window) reset() {
	w.inspected = 0
	w.clips = w.clips[:0]
}

// BatchEncoder renders photos into frame files and flushes windows of them
// into segments. It is not safe for concurrent use.
type BatchEncoder struct {
	backend  Backend
	renderer FrameRenderer
	size     int
	frames   int
	logger   *slog.Logger

	live     int
	frameSeq int
	stats    Stats
}

// NewBatchEncoder returns an encoder with windows of size items, each photo
// held for framesPerPhoto frames.
func NewBatchEncoder(backend Backend, renderer FrameRenderer, size, framesPerPhoto int, logger *slog.Logger) *BatchEncoder {
	return &BatchEncoder{
		backend:  backend,
		renderer: renderer,
		size:     max(size, 1),
		frames:   max(framesPerPhoto, 1),
		logger:   logging.NewComponentLogger(logger, "encoder"),
	}
}

// Size returns the window size.
func (e *BatchEncoder) Size() int {
	return e.size
}

// Stats returns a snapshot of the counters.
func (e *BatchEncoder) Stats() Stats {
	return e.stats
}

// add renders item into scratch and appends it to w. A photo that fails to
// render is reported with ErrItemSkipped and leaves w's clips unchanged.
func (e *BatchEncoder) add(w *window, item corpus.Item, scratch *staging.Scratch) error {
	w.inspected++
	e.frameSeq++
	dst := scratch.File(fmt.Sprintf("frame-%06d.jpg", e.frameSeq))

	e.live++
	e.stats.PeakLiveRasters = max(e.stats.PeakLiveRasters, e.live)
	err := e.renderer.RenderFrame(item, dst)
	e.live--

	if err != nil {
		_ = os.Remove(dst)
		e.stats.Skipped++
		return services.Wrap(services.ErrItemSkipped, "encoder", "render frame", item.Path, err)
	}
	e.stats.Rendered++
	w.clips = append(w.clips, pendingClip{clip: Clip{Path: dst, Frames: e.frames}, item: item})
	e.stats.PeakPendingFrames = max(e.stats.PeakPendingFrames, len(w.clips))
	return nil
}

// flush encodes w into a segment inside scratch and deletes its frame files.
// The window is reset whether or not the encode succeeds.
func (e *BatchEncoder) flush(ctx context.Context, w *window, scratch *staging.Scratch, index int) (Segment, error) {
	defer func() {
		for _, pending := range w.clips {
			_ = os.Remove(pending.clip.Path)
		}
		w.reset()
	}()

	e.stats.Batches++
	if len(w.clips) == 0 {
		e.stats.FailedBatches++
		return Segment{}, services.Wrap(services.ErrBatchFailed, "encoder", "flush",
			fmt.Sprintf("none of %d photos could be rendered", w.inspected), nil)
	}

	clips := make([]Clip, len(w.clips))
	for i, pending := range w.clips {
		clips[i] = pending.clip
	}
	out := scratch.File(fmt.Sprintf("segment-%04d.mp4", index))
	if err := e.backend.EncodeClips(ctx, clips, out); err != nil {
		_ = os.Remove(out)
		e.stats.FailedBatches++
		return Segment{}, services.Wrap(services.ErrBatchFailed, "encoder", "encode clips",
			fmt.Sprintf("window of %d clips", len(clips)), err)
	}
	return Segment{
		Path:  out,
		Index: index,
		Count: len(clips),
		First: w.clips[0].item.Timestamp,
		Last:  w.clips[len(w.clips)-1].item.Timestamp,
	}, nil
}
