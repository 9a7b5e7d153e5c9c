// Package main hosts the chronoreel CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, applies per-command path
// overrides, and hands off to the internal packages: runner for builds and
// merges, corpus for ordering previews, journal for history, and preflight for
// doctor. Exit codes follow services.ExitCode so scripts can tell an empty
// corpus or a locked output directory from a generic failure.
package main
