package preflight

import (
	"context"

	"chronoreel/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Options selects which checks RunAll performs.
type Options struct {
	// Input includes the input directory check.
	Input bool
	// Encoder includes the ffmpeg encoder listing, which runs ffmpeg.
	Encoder bool
}

// RunAll executes the applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if opts.Input {
		results = append(results, CheckReadableDirectory("Input directory", cfg.Paths.InputDir))
	}
	results = append(results, CheckCreatableDirectory("Output directory", cfg.Paths.OutputDir))

	ffmpegAvailable := false
	for _, status := range CheckSystemDeps(cfg) {
		detail := status.Command
		if !status.Available {
			detail = status.Detail
		}
		if status.Name == "FFmpeg" && status.Available {
			ffmpegAvailable = true
		}
		results = append(results, Result{
			Name:     status.Name,
			Passed:   status.Available,
			Optional: status.Optional,
			Detail:   detail,
		})
	}

	if opts.Encoder && ffmpegAvailable {
		results = append(results, CheckEncoder(ctx, cfg))
	}
	return results
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}
