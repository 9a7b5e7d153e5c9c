// Package sidecar reads the JSON metadata files that photo exports place next
// to each image as <photo>.json.
package sidecar

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

var (
	// ErrNotFound reports that the photo has no sidecar. This is the normal case
	// for photos that did not come from an export.
	ErrNotFound = errors.New("sidecar not found")
	// ErrMalformed reports a sidecar that exists but cannot be decoded.
	ErrMalformed = errors.New("sidecar malformed")
)

// Metadata holds the fields chronoreel reads from a sidecar. Missing fields are
// zero values.
type Metadata struct {
	CreationTime   int64
	PhotoTakenTime int64
	Latitude       float64
	Longitude      float64
}

// HasLocation reports whether either coordinate is set.
func (m Metadata) HasLocation() bool {
	return m.Latitude != 0 || m.Longitude != 0
}

// CaptionTime returns the photo-taken time, else the creation time, else 0.
func (m Metadata) CaptionTime() int64 {
	if m.PhotoTakenTime > 0 {
		return m.PhotoTakenTime
	}
	return m.CreationTime
}

// Path returns the sidecar location for a photo.
func Path(photoPath string) string {
	return photoPath + ".json"
}

type document struct {
	CreationTime   *timeField `json:"creationTime"`
	PhotoTakenTime *timeField `json:"photoTakenTime"`
	GeoData        *geoField  `json:"geoData"`
}

type timeField struct {
	Timestamp epoch `json:"timestamp"`
}

type geoField struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// epoch accepts a JSON string or number of whole seconds.
type epoch int64

func (e *epoch) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*e = 0
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return err
		}
		raw = strings.TrimSpace(unquoted)
		if raw == "" {
			*e = 0
			return nil
		}
	}
	if value, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*e = epoch(value)
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("timestamp %q is not numeric", raw)
	}
	*e = epoch(int64(value))
	return nil
}

// Read loads the sidecar for photoPath. A missing file returns ErrNotFound; a
// file that cannot be parsed returns an error wrapping ErrMalformed.
func Read(photoPath string) (Metadata, error) {
	data, err := os.ReadFile(Path(photoPath))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Metadata{}, ErrNotFound
		}
		return Metadata{}, fmt.Errorf("read sidecar: %w", err)
	}
	return Parse(data)
}

// Parse decodes sidecar JSON.
func Parse(data []byte) (Metadata, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Metadata{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	var meta Metadata
	if doc.CreationTime != nil {
		meta.CreationTime = int64(doc.CreationTime.Timestamp)
	}
	if doc.PhotoTakenTime != nil {
		meta.PhotoTakenTime = int64(doc.PhotoTakenTime.Timestamp)
	}
	if doc.GeoData != nil {
		meta.Latitude = doc.GeoData.Latitude
		meta.Longitude = doc.GeoData.Longitude
	}
	return meta, nil
}
