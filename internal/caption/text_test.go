package caption_test

import (
	"testing"
	"time"

	"chronoreel/internal/caption"
	"chronoreel/internal/sidecar"
)

func builder(meta sidecar.Metadata, err error) caption.TextBuilder {
	return caption.TextBuilder{
		Location:   time.UTC,
		DateFormat: "2006-01-02 15:04:05",
		ReadSidecar: func(string) (sidecar.Metadata, error) {
			return meta, err
		},
	}
}

func TestTextPrefersPhotoTakenTimeAndAddsLocation(t *testing.T) {
	meta := sidecar.Metadata{
		CreationTime:   1600000000,
		PhotoTakenTime: 1599999000,
		Latitude:       55.751244,
		Longitude:      37.618423,
	}
	got := builder(meta, nil).Text("/p/holiday.jpg")
	want := "2020-09-13 12:10:00 | Lat: 55.751244, Lon: 37.618423"
	if got != want {
		t.Fatalf("Text = %q want %q", got, want)
	}
}

func TestTextUsesCreationTimeWithoutLocation(t *testing.T) {
	got := builder(sidecar.Metadata{CreationTime: 1600000000}, nil).Text("/p/holiday.jpg")
	if got != "2020-09-13 12:26:40" {
		t.Fatalf("Text = %q", got)
	}
}

func TestTextFallsBackToFilename(t *testing.T) {
	got := builder(sidecar.Metadata{}, sidecar.ErrNotFound).Text("/p/IMG_20220101_120000.jpg")
	if got != "2022-01-01 12:00:00" {
		t.Fatalf("Text = %q", got)
	}
	got = builder(sidecar.Metadata{}, nil).Text("/p/IMG_20220101_120000.jpg")
	if got != "2022-01-01 12:00:00" {
		t.Fatalf("empty sidecar should fall back to filename, got %q", got)
	}
}

func TestTextEmptyWhenNothingKnown(t *testing.T) {
	if got := builder(sidecar.Metadata{}, sidecar.ErrMalformed).Text("/p/holiday.jpg"); got != "" {
		t.Fatalf("expected empty caption, got %q", got)
	}
}

func TestTextLocationOnly(t *testing.T) {
	got := builder(sidecar.Metadata{Latitude: 1.5}, nil).Text("/p/holiday.jpg")
	if got != "Lat: 1.500000, Lon: 0.000000" {
		t.Fatalf("Text = %q", got)
	}
}
