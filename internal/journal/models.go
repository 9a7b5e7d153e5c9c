package journal

import "time"

// Status is the lifecycle state of a recorded run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// IsTerminal reports whether the run has finished.
func (s Status) IsTerminal() bool {
	return s != StatusRunning
}

// Run is one build invocation.
type Run struct {
	ID           string
	Status       Status
	InputDir     string
	OutputDir    string
	ItemsTotal   int
	PartsTotal   int
	PhotosTotal  int
	MergedPath   string
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Duration returns the wall time of a finished run, or zero while it runs.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Part is one assembled part file belonging to a run.
type Part struct {
	RunID     string
	Index     int
	Path      string
	FirstDate time.Time
	LastDate  time.Time
	Count     int
	SizeBytes int64
	CreatedAt time.Time
}

// Outcome finalizes a run row.
type Outcome struct {
	Status       Status
	PartsTotal   int
	PhotosTotal  int
	MergedPath   string
	ErrorMessage string
}
