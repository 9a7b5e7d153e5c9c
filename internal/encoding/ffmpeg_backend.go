package encoding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"chronoreel/internal/logging"
)

// FFmpegBackend drives ffmpeg through the concat demuxer. Argument lists are
// built with ffmpeg-go and executed under the caller's context.
type FFmpegBackend struct {
	Binary string
	Params Params
	Logger *slog.Logger
}

// NewFFmpegBackend returns a backend for the given binary and parameters.
func NewFFmpegBackend(binary string, params Params, logger *slog.Logger) *FFmpegBackend {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &FFmpegBackend{Binary: binary, Params: params, Logger: logging.NewComponentLogger(logger, "ffmpeg")}
}

// EncodeClips writes a still-image slideshow of clips to out. The inputs are
// stills, so the output has no audio track.
func (b *FFmpegBackend) EncodeClips(ctx context.Context, clips []Clip, out string) error {
	if len(clips) == 0 {
		return errors.New("encode clips: no clips")
	}
	listPath := out + ".clips.txt"
	if err := writeConcatList(listPath, clipEntries(clips, b.Params.FPS)); err != nil {
		return err
	}
	defer os.Remove(listPath)

	output := ffmpeg.KwArgs{
		"c:v":      b.Params.Codec,
		"r":        strconv.Itoa(max(b.Params.FPS, 1)),
		"fps_mode": "cfr",
		"pix_fmt":  b.Params.PixelFormat,
		// The repeated final list entry would otherwise add one frame.
		"frames:v": strconv.Itoa(totalFrames(clips)),
	}
	if strings.TrimSpace(b.Params.Bitrate) != "" {
		output["b:v"] = b.Params.Bitrate
	}
	if strings.TrimSpace(b.Params.Preset) != "" {
		output["preset"] = b.Params.Preset
	}
	stream := ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": "0"}).
		Output(out, output).
		OverWriteOutput().
		GlobalArgs("-hide_banner", "-loglevel", "error", "-nostdin")
	return b.run(ctx, "encode clips", stream.GetArgs())
}

// Concat joins inputs in order into out without re-encoding.
func (b *FFmpegBackend) Concat(ctx context.Context, inputs []string, out string) error {
	if len(inputs) == 0 {
		return errors.New("concat: no inputs")
	}
	listPath := out + ".parts.txt"
	entries := make([]concatEntry, 0, len(inputs))
	for _, input := range inputs {
		entries = append(entries, concatEntry{path: input})
	}
	if err := writeConcatList(listPath, entries); err != nil {
		return err
	}
	defer os.Remove(listPath)

	stream := ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": "0"}).
		Output(out, ffmpeg.KwArgs{"c": "copy", "movflags": "+faststart"}).
		OverWriteOutput().
		GlobalArgs("-hide_banner", "-loglevel", "error", "-nostdin")
	return b.run(ctx, "concat", stream.GetArgs())
}

func (b *FFmpegBackend) run(ctx context.Context, op string, args []string) error {
	if b.Logger != nil {
		b.Logger.Debug("running ffmpeg",
			logging.String("operation", op),
			logging.String("command", b.Binary+" "+strings.Join(args, " ")),
		)
	}
	cmd := exec.CommandContext(ctx, b.Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("ffmpeg %s: %w", op, ctxErr)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("ffmpeg %s: %w: %s", op, err, lastLine(detail))
		}
		return fmt.Errorf("ffmpeg %s: %w", op, err)
	}
	return nil
}

type concatEntry struct {
	path     string
	duration float64
}

func clipEntries(clips []Clip, fps int) []concatEntry {
	fps = max(fps, 1)
	entries := make([]concatEntry, 0, len(clips)+1)
	for _, clip := range clips {
		entries = append(entries, concatEntry{
			path:     clip.Path,
			duration: float64(max(clip.Frames, 1)) / float64(fps),
		})
	}
	// The demuxer ignores the duration of the final entry unless the file is
	// listed once more.
	entries = append(entries, concatEntry{path: clips[len(clips)-1].Path})
	return entries
}

func totalFrames(clips []Clip) int {
	total := 0
	for _, clip := range clips {
		total += max(clip.Frames, 1)
	}
	return total
}

func writeConcatList(path string, entries []concatEntry) error {
	var buf bytes.Buffer
	buf.WriteString("ffconcat version 1.0\n")
	for _, entry := range entries {
		fmt.Fprintf(&buf, "file '%s'\n", escapeConcatPath(entry.path))
		if entry.duration > 0 {
			fmt.Fprintf(&buf, "duration %s\n", strconv.FormatFloat(entry.duration, 'f', 6, 64))
		}
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}

func escapeConcatPath(path string) string {
	return strings.ReplaceAll(path, "'", `'\''`)
}

func lastLine(text string) string {
	if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
		return text[idx+1:]
	}
	return text
}
