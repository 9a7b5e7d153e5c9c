package caption

import (
	"fmt"
	"strings"
	"time"

	"chronoreel/internal/sidecar"
	"chronoreel/internal/timestamp"
)

const geoSeparator = " | "

// TextBuilder derives caption text for a photo.
type TextBuilder struct {
	Location    *time.Location
	DateFormat  string
	ReadSidecar func(string) (sidecar.Metadata, error)
}

// NewTextBuilder returns a builder that reads real sidecars.
func NewTextBuilder(loc *time.Location, dateFormat string) TextBuilder {
	return TextBuilder{Location: loc, DateFormat: dateFormat, ReadSidecar: sidecar.Read}
}

// Text returns the caption for path, or "" when nothing is known.
func (b TextBuilder) Text(path string) string {
	read := b.ReadSidecar
	if read == nil {
		read = sidecar.Read
	}
	if meta, err := read(path); err == nil {
		if text := b.fromMetadata(meta); text != "" {
			return text
		}
	}
	if epoch, ok := timestamp.FromFilename(path, b.location()); ok {
		return b.format(epoch)
	}
	return ""
}

func (b TextBuilder) fromMetadata(meta sidecar.Metadata) string {
	var text string
	if epoch := meta.CaptionTime(); epoch > 0 {
		text = b.format(epoch)
	}
	if meta.HasLocation() {
		geo := fmt.Sprintf("Lat: %.6f, Lon: %.6f", meta.Latitude, meta.Longitude)
		if text == "" {
			return geo
		}
		text += geoSeparator + geo
	}
	return strings.TrimSpace(text)
}

func (b TextBuilder) format(epoch int64) string {
	layout := b.DateFormat
	if layout == "" {
		layout = time.DateTime
	}
	return time.Unix(epoch, 0).In(b.location()).Format(layout)
}

func (b TextBuilder) location() *time.Location {
	if b.Location == nil {
		return time.Local
	}
	return b.Location
}
