// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// chronoreel uses it to validate parts after assembly (a part must carry one
// video stream and a positive duration) and to show durations in part
// listings.
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
package ffprobe
