package model

import "time"

// RunSummary holds the counts reported at the end of a triage run.
type RunSummary struct {
	RunID    string
	Examined int
	Resolved int // Threads resolved, or that would be resolved in dry-run mode.
	Failed   int // Threads selected for resolution whose resolve call failed.
	DryRun   bool
}

// CheckReport is the result of a connectivity check: team load and thread
// listing without any resolution.
type CheckReport struct {
	Username     string
	Teams        int
	Unread       int
	PullRequests int
}

// Run is a triage run as recorded in the run ledger.
type Run struct {
	ID         string
	Username   string
	DryRun     bool
	Status     RunStatus
	Examined   int
	Resolved   int
	Failed     int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time // Zero while the run is in progress.
}

// Duration returns how long the run took, or zero while it is still running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// ThreadOutcome records the action taken for one thread during a run.
type ThreadOutcome struct {
	ThreadID   string
	Repository string
	Title      string
	Action     OutcomeAction
	Rule       string
	RecordedAt time.Time
}
