// Package logging assembles structured slog loggers and formatting helpers used
// across chronoreel.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with run IDs, part indices, and batch indices. The package also
// provides a no-op logger for tests and wiring code that cannot fail, plus
// retention of per-run log files.
package logging
