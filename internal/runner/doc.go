// Package runner executes one chronoreel build end to end.
//
// A build takes the output lock, opens the run journal, orders the input
// corpus, drives the part builder, and optionally merges the parts. The CLI
// and tests share this entry point; tests inject a recording backend in place
// of ffmpeg through Options.
package runner
