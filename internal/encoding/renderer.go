package encoding

import (
	"fmt"
	"image"

	"chronoreel/internal/caption"
	"chronoreel/internal/corpus"
	"chronoreel/internal/frame"
)

// FrameRenderer writes the video frame for one photo to dst.
type FrameRenderer interface {
	RenderFrame(item corpus.Item, dst string) error
}

// Captioner draws caption text onto a raster.
type Captioner interface {
	Render(dst *image.RGBA, text string)
}

// PhotoRenderer decodes a photo, scales it to fit the frame, draws its caption
// and letterboxes it onto a black canvas of the frame size.
type PhotoRenderer struct {
	Width    int
	Height   int
	Text     func(path string) string
	Captions Captioner
}

// NewPhotoRenderer returns a renderer for width x height frames. Odd sizes are
// rounded down to even. A nil captioner disables captions.
func NewPhotoRenderer(width, height int, text caption.TextBuilder, captions Captioner) *PhotoRenderer {
	w, h := frame.EvenSize(width, height)
	r := &PhotoRenderer{Width: w, Height: h, Captions: captions}
	if captions != nil {
		r.Text = text.Text
	}
	return r
}

// RenderFrame implements FrameRenderer.
func (r *PhotoRenderer) RenderFrame(item corpus.Item, dst string) error {
	src, err := frame.Load(item.Path)
	if err != nil {
		return err
	}
	scaled := frame.Fit(src, r.Width, r.Height)
	if r.Captions != nil && r.Text != nil {
		if text := r.Text(item.Path); text != "" {
			r.Captions.Render(scaled, text)
		}
	}
	canvas := frame.Letterbox(scaled, r.Width, r.Height)
	if err := frame.WriteJPEG(dst, canvas); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
