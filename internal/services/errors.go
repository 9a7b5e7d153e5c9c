package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")

	// ErrItemSkipped marks a photo that could not be rendered. Callers log and move on.
	ErrItemSkipped = errors.New("item skipped")
	// ErrBatchFailed marks a window whose clips could not be encoded. The window is dropped.
	ErrBatchFailed = errors.New("batch failed")
	// ErrPartFailed marks a part that produced no segments or could not be assembled.
	ErrPartFailed = errors.New("part failed")
	// ErrEmptyCorpus reports an input tree without a single supported image.
	ErrEmptyCorpus = errors.New("no supported images found")
	// ErrNoParts reports an output directory without conforming part files.
	ErrNoParts = errors.New("no part files found")
	// ErrLocked reports another run holding the output directory.
	ErrLocked = errors.New("output directory locked")
)

// Exit codes returned by the CLI for run-level failures.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitConfiguration = 2
	ExitEmptyCorpus   = 3
	ExitNoParts       = 4
	ExitPartFailed    = 5
	ExitLocked        = 6
	ExitCanceled      = 130
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps a run error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitCanceled
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrValidation):
		return ExitConfiguration
	case errors.Is(err, ErrEmptyCorpus):
		return ExitEmptyCorpus
	case errors.Is(err, ErrNoParts):
		return ExitNoParts
	case errors.Is(err, ErrPartFailed):
		return ExitPartFailed
	case errors.Is(err, ErrLocked):
		return ExitLocked
	default:
		return ExitFailure
	}
}

// Tier names the recovery tier an error belongs to, for logs and the run journal.
func Tier(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrItemSkipped):
		return "item"
	case errors.Is(err, ErrBatchFailed):
		return "batch"
	case errors.Is(err, ErrPartFailed):
		return "part"
	default:
		return "run"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
