package logging_test

import (
	"testing"

	"chronoreel/internal/logging"
)

func TestProgressSamplerEmitsOnBucketAndPartChanges(t *testing.T) {
	sampler := logging.NewProgressSampler(25)

	steps := []struct {
		part, done, total int
		want              bool
	}{
		{1, 0, 100, true},   // first part
		{1, 10, 100, false}, // same bucket
		{1, 25, 100, true},  // crossed 25%
		{1, 30, 100, false},
		{1, 99, 100, true}, // crossed 75%
		{1, 100, 100, true},
		{1, 100, 100, false},
		{2, 1, 100, true}, // new part resets buckets
		{2, 2, 100, false},
	}
	for i, step := range steps {
		if got := sampler.ShouldLog(step.part, step.done, step.total); got != step.want {
			t.Fatalf("step %d (%+v): got %v want %v", i, step, got, step.want)
		}
	}
}

func TestProgressSamplerResetAndNil(t *testing.T) {
	var nilSampler *logging.ProgressSampler
	if !nilSampler.ShouldLog(1, 1, 1) {
		t.Fatal("nil sampler should always log")
	}
	sampler := logging.NewProgressSampler(0)
	sampler.ShouldLog(1, 50, 100)
	sampler.Reset()
	if !sampler.ShouldLog(1, 50, 100) {
		t.Fatal("expected emit after reset")
	}
}
