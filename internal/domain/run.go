package domain

import "time"

// Run represents a single launch of the workflow engine
type Run struct {
	ID          string
	SampleSheet string
	Outdir      string
	Version     string
	Args        []string // full argv including the engine executable
	Status      RunStatus
	ExitCode    *int
	StartedAt   time.Time
	FinishedAt  *time.Time
}

// Duration returns how long the run took, or 0 if it has not finished
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
