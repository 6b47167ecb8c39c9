package consolidate

import "fmt"

// InvariantError reports a consolidation whose outcome violates a safety
// invariant. Nothing is ever written when one is returned.
type InvariantError struct {
	Reason string
	Before int
	After  int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("consolidation invariant violated: %s (%d -> %d records)", e.Reason, e.Before, e.After)
}

// Validate checks a plan against the safety invariants: the record count
// must strictly decrease and land inside the configured target range.
// Warnings describe suspicious but tolerated outcomes; a non-nil error means
// the plan must not be committed.
//
// A falling step count is only a warning because the merge should add one
// marker line per child on top of the preserved steps; a decrease means
// something upstream already lost content, which the operator should judge.
func (c *Consolidator) Validate(plan *Plan) ([]string, error) {
	before := len(plan.Original)
	after := len(plan.Consolidated)

	if after >= before {
		return nil, &InvariantError{Reason: "no reduction occurred", Before: before, After: after}
	}
	if after < c.opts.TargetMin || after > c.opts.TargetMax {
		return nil, &InvariantError{
			Reason: fmt.Sprintf("target range [%d, %d] missed", c.opts.TargetMin, c.opts.TargetMax),
			Before: before,
			After:  after,
		}
	}

	var warnings []string
	if plan.Stats.StepsAfter < plan.Stats.StepsBefore {
		warnings = append(warnings, fmt.Sprintf(
			"step count decreased from %d to %d; content may have been lost",
			plan.Stats.StepsBefore, plan.Stats.StepsAfter))
	}
	return warnings, nil
}
