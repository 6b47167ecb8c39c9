// Package db provides SQLite storage for the x402Arcade feature tracker.
package db

import "time"

// RunStatus represents the outcome of a consolidation run.
type RunStatus string

const (
	RunRunning RunStatus = "running"
	RunOK      RunStatus = "ok"
	RunInvalid RunStatus = "invalid"
	RunFailed  RunStatus = "failed"
)

// Feature is one row of the features table.
//
// BlockedBy is a weak reference to an intervention record kept outside this
// database; it may be NULL or dangle and is deliberately not enforced with a
// foreign key.
type Feature struct {
	ID          int64
	Priority    int
	Category    string
	Name        string
	Description string
	Steps       []string
	Passes      bool
	InProgress  bool
	BlockedBy   *int64 // nullable
	Deferred    bool
}

// StepCount returns the number of steps across the given features.
func StepCount(features []*Feature) int {
	total := 0
	for _, f := range features {
		total += len(f.Steps)
	}
	return total
}

// Run records one consolidation execution, successful or not. Previews are
// deliberately not recorded so they stay free of side effects.
type Run struct {
	ID          string
	Before      int
	After       int
	StepsBefore int
	StepsAfter  int
	Status      RunStatus
	BackupTable string
	Detail      string
	StartedAt   time.Time
	FinishedAt  *time.Time // nullable
}
