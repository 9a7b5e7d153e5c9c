package encoding

import (
	"context"
	"math"

	"chronoreel/internal/config"
)

// Clip is one rendered frame file shown for a fixed number of video frames.
type Clip struct {
	Path   string
	Frames int
}

// Backend encodes clips into video and joins videos end to end.
type Backend interface {
	EncodeClips(ctx context.Context, clips []Clip, out string) error
	Concat(ctx context.Context, inputs []string, out string) error
}

// Params are the encoder settings shared by every segment of a run.
type Params struct {
	Codec       string
	FPS         int
	Bitrate     string
	Preset      string
	PixelFormat string
}

// ParamsFromConfig extracts encoder settings from cfg.
func ParamsFromConfig(cfg config.Encoding) Params {
	return Params{
		Codec:       cfg.Codec,
		FPS:         cfg.FPS,
		Bitrate:     cfg.Bitrate,
		Preset:      cfg.Preset,
		PixelFormat: cfg.PixelFormat,
	}
}

// FramesPerPhoto returns how many video frames one photo occupies. The result
// is floor(duration*fps) with a small tolerance for float error, and never
// less than one frame.
func FramesPerPhoto(durationSeconds float64, fps int) int {
	if fps <= 0 || durationSeconds <= 0 {
		return 1
	}
	frames := int(math.Floor(durationSeconds*float64(fps) + 1e-9))
	return max(frames, 1)
}
