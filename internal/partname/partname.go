// Package partname owns the output filename grammar. Both the part driver,
// which writes names, and the merger, which reads them, go through this
// package so the format stays a single contract.
//
// Part files:   {first:YYYY-MM-DD}_{last:YYYY-MM-DD}_{count}-photos_{index:03d}.mp4
// Merged files: {year:YYYY}_{total}-photos.mp4
package partname

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Glob matches candidate part files. It is looser than Parse.
const Glob = "*_*-photos_*.mp4"

const dateLayout = "2006-01-02"

var partPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})_(\d{4}-\d{2}-\d{2})_(\d+)-photos_(\d{3,})\.mp4$`)

// ErrNotPart reports a name that does not follow the part grammar.
var ErrNotPart = errors.New("not a part filename")

// Part is the information encoded in a part filename.
type Part struct {
	First time.Time
	Last  time.Time
	Count int
	Index int
}

// Year returns the year of the first date.
func (p Part) Year() int {
	return p.First.Year()
}

// Format renders a part filename. Dates are taken in the location of first and last.
func Format(first, last time.Time, count, index int) string {
	return fmt.Sprintf("%s_%s_%d-photos_%03d.mp4", first.Format(dateLayout), last.Format(dateLayout), count, index)
}

// Parse decodes a part filename (basename only).
func Parse(name string) (Part, error) {
	m := partPattern.FindStringSubmatch(name)
	if m == nil {
		return Part{}, fmt.Errorf("%w: %q", ErrNotPart, name)
	}
	first, err := time.Parse(dateLayout, m[1])
	if err != nil {
		return Part{}, fmt.Errorf("%w: %q: first date: %w", ErrNotPart, name, err)
	}
	last, err := time.Parse(dateLayout, m[2])
	if err != nil {
		return Part{}, fmt.Errorf("%w: %q: last date: %w", ErrNotPart, name, err)
	}
	count, err := strconv.Atoi(m[3])
	if err != nil {
		return Part{}, fmt.Errorf("%w: %q: count: %w", ErrNotPart, name, err)
	}
	index, err := strconv.Atoi(m[4])
	if err != nil {
		return Part{}, fmt.Errorf("%w: %q: index: %w", ErrNotPart, name, err)
	}
	return Part{First: first, Last: last, Count: count, Index: index}, nil
}

// Merged renders the merged output filename.
func Merged(year, total int) string {
	return fmt.Sprintf("%04d_%d-photos.mp4", year, total)
}
