package corpus

import (
	"path/filepath"
	"strings"
	"time"

	"chronoreel/internal/timestamp"
)

// Item is one photo in the corpus. Timestamp is assigned once by the resolver
// and never changes afterwards.
type Item struct {
	Path      string
	Timestamp int64
	Source    timestamp.Source
	Seq       int
}

// Time returns the item's timestamp in loc.
func (i Item) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(i.Timestamp, 0).In(loc)
}

// Ordered is a corpus sorted ascending by timestamp, ties broken by discovery order.
type Ordered []Item

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".bmp":  {},
	".gif":  {},
	".tiff": {},
}

// IsImage reports whether path has a supported image extension.
func IsImage(path string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}
