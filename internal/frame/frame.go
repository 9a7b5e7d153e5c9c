// Package frame decodes photos and produces fixed-size video frames: the photo
// is downscaled to fit the target resolution (never upscaled), then centred on
// a black canvas.
package frame

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"

	// Decoders for the supported extensions.
	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// JPEGQuality is the quality used for intermediate frame files.
const JPEGQuality = 92

// Load decodes the image at path, applying the EXIF orientation of JPEGs so
// camera photos come out upright. GIFs yield their first frame.
func Load(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	img, err := imaging.Decode(bufio.NewReader(file), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, errors.New("decode image: empty raster")
	}
	return img, nil
}

// EvenSize rounds both dimensions down to even values, as yuv420p requires.
func EvenSize(width, height int) (int, int) {
	width -= width % 2
	height -= height % 2
	if width < 2 {
		width = 2
	}
	if height < 2 {
		height = 2
	}
	return width, height
}

// FitSize returns the largest size with the source aspect ratio that fits in
// maxW x maxH. Sources that already fit are returned unchanged.
func FitSize(srcW, srcH, maxW, maxH int) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0
	}
	if srcW <= maxW && srcH <= maxH {
		return srcW, srcH
	}
	// Compare srcW/srcH against maxW/maxH without floating point.
	if int64(srcW)*int64(maxH) >= int64(srcH)*int64(maxW) {
		h := int(int64(srcH) * int64(maxW) / int64(srcW))
		return maxW, max(h, 1)
	}
	w := int(int64(srcW) * int64(maxH) / int64(srcH))
	return max(w, 1), maxH
}

// Fit returns src scaled to fit maxW x maxH as a new RGBA raster.
func Fit(src image.Image, maxW, maxH int) *image.RGBA {
	bounds := src.Bounds()
	w, h := FitSize(bounds.Dx(), bounds.Dy(), maxW, maxH)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == bounds.Dx() && h == bounds.Dy() {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	return dst
}

// Letterbox centres src on a black width x height canvas.
func Letterbox(src image.Image, width, height int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	bounds := src.Bounds()
	offset := image.Pt((width-bounds.Dx())/2, (height-bounds.Dy())/2)
	target := image.Rectangle{Min: offset, Max: offset.Add(bounds.Size())}
	draw.Draw(canvas, target, src, bounds.Min, draw.Over)
	return canvas
}

// WriteJPEG encodes img to path.
func WriteJPEG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frame: %w", err)
	}
	writer := bufio.NewWriter(file)
	if err := jpeg.Encode(writer, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		file.Close()
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("flush frame: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close frame: %w", err)
	}
	return nil
}
