package caption

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"chronoreel/internal/config"
	"chronoreel/internal/logging"
)

// Anchor values accepted by Style.
const (
	AnchorTopLeft      = "top-left"
	AnchorTopCenter    = "top-center"
	AnchorTopRight     = "top-right"
	AnchorBottomLeft   = "bottom-left"
	AnchorBottomCenter = "bottom-center"
	AnchorBottomRight  = "bottom-right"
)

// Style controls caption appearance.
type Style struct {
	FontPath     string
	FontSize     float64
	Anchor       string
	Margin       int
	Fill         color.RGBA
	Outline      color.RGBA
	OutlineWidth int
}

// StyleFromConfig converts the caption section of the configuration.
func StyleFromConfig(cfg config.Caption) (Style, error) {
	fill, err := config.ParseHexColor(cfg.FillColor)
	if err != nil {
		return Style{}, fmt.Errorf("caption fill: %w", err)
	}
	outline, err := config.ParseHexColor(cfg.OutlineColor)
	if err != nil {
		return Style{}, fmt.Errorf("caption outline: %w", err)
	}
	return Style{
		FontPath:     cfg.FontPath,
		FontSize:     float64(cfg.FontSize),
		Anchor:       cfg.Anchor,
		Margin:       cfg.Margin,
		Fill:         fill,
		Outline:      outline,
		OutlineWidth: cfg.OutlineWidth,
	}, nil
}

// Renderer draws captions onto RGBA rasters. It is not safe for concurrent use.
type Renderer struct {
	style Style
	face  font.Face
}

// NewRenderer loads the configured font. When the font cannot be loaded the
// built-in Go Regular face is used and a warning is logged.
func NewRenderer(style Style, logger *slog.Logger) (*Renderer, error) {
	logger = logging.NewComponentLogger(logger, "caption")
	if style.FontSize <= 0 {
		style.FontSize = 48
	}
	if style.Anchor == "" {
		style.Anchor = AnchorBottomRight
	}

	var face font.Face
	if path := strings.TrimSpace(style.FontPath); path != "" {
		loaded, err := loadFace(path, style.FontSize)
		if err != nil {
			logging.WarnWithContext(logger, "caption font unavailable; using built-in font", "caption_font_fallback",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "set caption.font_path to a readable TrueType or OpenType file"),
				logging.String(logging.FieldImpact, "captions use Go Regular"),
			)
		} else {
			face = loaded
		}
	}
	if face == nil {
		parsed, err := opentype.Parse(goregular.TTF)
		if err != nil {
			return nil, fmt.Errorf("parse built-in font: %w", err)
		}
		face, err = newFace(parsed, style.FontSize)
		if err != nil {
			return nil, err
		}
	}
	return &Renderer{style: style, face: face}, nil
}

func loadFace(path string, size float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font file: %w", err)
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return newFace(parsed, size)
}

func newFace(parsed *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}

// Close releases the font face.
func (r *Renderer) Close() error {
	if r == nil || r.face == nil {
		return nil
	}
	return r.face.Close()
}

// Render draws text onto dst. Empty text draws nothing.
func (r *Renderer) Render(dst *image.RGBA, text string) {
	text = strings.TrimSpace(text)
	if r == nil || dst == nil || text == "" {
		return
	}
	drawer := &font.Drawer{Dst: dst, Face: r.face}
	bounds, _ := drawer.BoundString(text)
	origin := r.origin(dst.Bounds(), bounds)

	if w := r.style.OutlineWidth; w > 0 {
		drawer.Src = image.NewUniform(r.style.Outline)
		for dx := -w; dx <= w; dx++ {
			for dy := -w; dy <= w; dy++ {
				if dx == 0 && dy == 0 {
					continue
				}
				drawer.Dot = origin.Add(fixed.P(dx, dy))
				drawer.DrawString(text)
			}
		}
	}
	drawer.Src = image.NewUniform(r.style.Fill)
	drawer.Dot = origin
	drawer.DrawString(text)
}

// origin returns the baseline start so the text's bounding box sits at the
// anchor, inset by the margin.
func (r *Renderer) origin(canvas image.Rectangle, bounds fixed.Rectangle26_6) fixed.Point26_6 {
	margin := fixed.I(r.style.Margin)
	width := bounds.Max.X - bounds.Min.X
	minX, maxX := fixed.I(canvas.Min.X), fixed.I(canvas.Max.X)
	minY, maxY := fixed.I(canvas.Min.Y), fixed.I(canvas.Max.Y)

	var x, y fixed.Int26_6
	switch {
	case strings.HasSuffix(r.style.Anchor, "-left"):
		x = minX + margin - bounds.Min.X
	case strings.HasSuffix(r.style.Anchor, "-center"):
		x = minX + (maxX-minX-width)/2 - bounds.Min.X
	default:
		x = maxX - margin - bounds.Max.X
	}
	if strings.HasPrefix(r.style.Anchor, "top-") {
		y = minY + margin - bounds.Min.Y
	} else {
		y = maxY - margin - bounds.Max.Y
	}
	return fixed.Point26_6{X: x, Y: y}
}
