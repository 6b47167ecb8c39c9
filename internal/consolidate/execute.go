package consolidate

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/x402arcade/featdb/internal/db"
	"github.com/x402arcade/featdb/internal/log"
)

// Result is the outcome of a committed consolidation.
type Result struct {
	RunID       string
	BackupTable string
	Warnings    []string
}

// Execute validates the plan and atomically replaces the features table,
// recording the run either way. The previous table contents survive under
// the returned backup name; backups are never dropped here.
func (c *Consolidator) Execute(plan *Plan) (*Result, error) {
	warnings, err := c.Validate(plan)
	if err != nil {
		if recErr := c.recordOutcome(plan, db.RunInvalid, "", err.Error()); recErr != nil {
			log.Warn("failed to record invalid run", "error", recErr)
		}
		return nil, err
	}

	run := &db.Run{
		ID:          uuid.New().String(),
		Before:      plan.Stats.Before,
		After:       plan.Stats.After,
		StepsBefore: plan.Stats.StepsBefore,
		StepsAfter:  plan.Stats.StepsAfter,
	}
	if err := c.db.CreateRun(run); err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	backup, err := c.db.ReplaceFeatures(plan.Consolidated)
	if err != nil {
		if completeErr := c.db.CompleteRun(run.ID, db.RunFailed, "", err.Error()); completeErr != nil {
			log.Warn("failed to record failed run", "run", run.ID, "error", completeErr)
		}
		return nil, err
	}

	if err := c.db.CompleteRun(run.ID, db.RunOK, backup, strings.Join(warnings, "; ")); err != nil {
		log.Warn("failed to record completed run", "run", run.ID, "error", err)
	}

	log.Debug("consolidation committed",
		"run", run.ID, "before", plan.Stats.Before, "after", plan.Stats.After, "backup", backup)
	return &Result{RunID: run.ID, BackupTable: backup, Warnings: warnings}, nil
}

// recordOutcome stores a run that never reached the swap.
func (c *Consolidator) recordOutcome(plan *Plan, status db.RunStatus, backup, detail string) error {
	run := &db.Run{
		ID:          uuid.New().String(),
		Before:      plan.Stats.Before,
		After:       plan.Stats.After,
		StepsBefore: plan.Stats.StepsBefore,
		StepsAfter:  plan.Stats.StepsAfter,
	}
	if err := c.db.CreateRun(run); err != nil {
		return err
	}
	return c.db.CompleteRun(run.ID, status, backup, detail)
}
