package timestamp

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

const filenameDateLayout = "20060102 150405"

var (
	fbPattern  = regexp.MustCompile(`(?i)^FB_IMG_(\d+)\.[a-z0-9]+$`)
	imgPattern = regexp.MustCompile(`(?i)^IMG_(\d{8})_(\d{6})\d{0,3}(?:_HDR)?\.[a-z0-9]+$`)
)

// FromFilename extracts a capture time from the photo's basename. Patterns are
// tried in order; a pattern that matches but yields an impossible date falls
// through to the next one.
func FromFilename(path string, loc *time.Location) (int64, bool) {
	if loc == nil {
		loc = time.Local
	}
	name := norm.NFC.String(filepath.Base(path))

	if m := fbPattern.FindStringSubmatch(name); m != nil {
		if ms, err := strconv.ParseInt(m[1], 10, 64); err == nil && ms > 0 {
			if seconds := ms / 1000; seconds > 0 {
				return seconds, true
			}
		}
	}

	if m := imgPattern.FindStringSubmatch(name); m != nil {
		if epoch, ok := parseWallClock(m[1], m[2], loc); ok {
			return epoch, true
		}
	}

	fields := strings.Split(name, "_")
	if len(fields) > 2 {
		clock := fields[2]
		if len(clock) > 6 {
			clock = clock[:6]
		}
		if epoch, ok := parseWallClock(fields[1], clock, loc); ok {
			return epoch, true
		}
	}
	return 0, false
}

func parseWallClock(date, clock string, loc *time.Location) (int64, bool) {
	if len(date) != 8 || len(clock) != 6 || !allDigits(date) || !allDigits(clock) {
		return 0, false
	}
	parsed, err := time.ParseInLocation(filenameDateLayout, date+" "+clock, loc)
	if err != nil {
		return 0, false
	}
	return parsed.Unix(), true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
