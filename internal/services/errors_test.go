package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"chronoreel/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "encoder", "concat", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"encoder", "concat", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestExitCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, services.ExitOK},
		{"empty corpus", services.Wrap(services.ErrEmptyCorpus, "corpus", "order", "", nil), services.ExitEmptyCorpus},
		{"no parts", services.Wrap(services.ErrNoParts, "merge", "scan", "", nil), services.ExitNoParts},
		{"part failed", services.Wrap(services.ErrPartFailed, "driver", "build part", "", errors.New("x")), services.ExitPartFailed},
		{"config", services.Wrap(services.ErrConfiguration, "config", "load", "", nil), services.ExitConfiguration},
		{"locked", fmt.Errorf("acquire: %w", services.ErrLocked), services.ExitLocked},
		{"canceled", fmt.Errorf("run: %w", context.Canceled), services.ExitCanceled},
		{"other", errors.New("disk full"), services.ExitFailure},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.ExitCode(tc.err); got != tc.want {
				t.Fatalf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestTierClassification(t *testing.T) {
	if tier := services.Tier(services.Wrap(services.ErrItemSkipped, "renderer", "decode", "", nil)); tier != "item" {
		t.Fatalf("expected item tier, got %q", tier)
	}
	if tier := services.Tier(services.Wrap(services.ErrBatchFailed, "encoder", "flush", "", nil)); tier != "batch" {
		t.Fatalf("expected batch tier, got %q", tier)
	}
	if tier := services.Tier(services.Wrap(services.ErrPartFailed, "driver", "", "", nil)); tier != "part" {
		t.Fatalf("expected part tier, got %q", tier)
	}
	if tier := services.Tier(errors.New("x")); tier != "run" {
		t.Fatalf("expected run tier, got %q", tier)
	}
	if tier := services.Tier(nil); tier != "" {
		t.Fatalf("expected empty tier for nil, got %q", tier)
	}
}
