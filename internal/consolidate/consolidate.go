package consolidate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/x402arcade/featdb/internal/db"
)

// Consolidator plans and commits feature consolidations against one database.
type Consolidator struct {
	db   *db.DB
	opts Options
}

// New creates a Consolidator. The options are checked once here so every
// later operation can trust them.
func New(database *db.DB, opts Options) (*Consolidator, error) {
	if database == nil {
		return nil, fmt.Errorf("database is required")
	}
	if opts.TargetMin < 1 || opts.TargetMax < opts.TargetMin {
		return nil, fmt.Errorf("invalid target range [%d, %d]", opts.TargetMin, opts.TargetMax)
	}
	if opts.SmallFactor < 2 || opts.LargeFactor < 2 {
		return nil, fmt.Errorf("consolidation factors must be at least 2")
	}
	if opts.NoMergeMax < 1 {
		return nil, fmt.Errorf("no-merge limit must be at least 1")
	}
	return &Consolidator{db: database, opts: opts}, nil
}

// Plan is the outcome of consolidating a snapshot of the features table,
// before anything is written back.
type Plan struct {
	Original     []*db.Feature
	Consolidated []*db.Feature
	Stats        *Stats
}

// Plan loads every feature and computes the consolidated replacement set.
// It performs no writes; committing is a separate, explicit step.
func (c *Consolidator) Plan() (*Plan, error) {
	features, err := c.db.AllFeatures()
	if err != nil {
		return nil, fmt.Errorf("failed to load features: %w", err)
	}

	groups, categories := groupByCategory(features)

	var consolidated []*db.Feature
	stats := &Stats{
		Before:      len(features),
		StepsBefore: db.StepCount(features),
	}
	for _, category := range categories {
		records := groups[category]
		merged, err := c.consolidateCategory(category, records)
		if err != nil {
			return nil, err
		}
		consolidated = append(consolidated, merged...)
		stats.ByCategory = append(stats.ByCategory, CategoryStat{
			Category: category,
			Before:   len(records),
			After:    len(merged),
		})
	}
	stats.After = len(consolidated)
	stats.StepsAfter = db.StepCount(consolidated)

	return &Plan{Original: features, Consolidated: consolidated, Stats: stats}, nil
}

// groupByCategory partitions features by category, preserving priority order
// within each group. Categories come back sorted so downstream output is
// deterministic.
func groupByCategory(features []*db.Feature) (map[string][]*db.Feature, []string) {
	groups := make(map[string][]*db.Feature)
	var categories []string
	for _, f := range features {
		if _, ok := groups[f.Category]; !ok {
			categories = append(categories, f.Category)
		}
		groups[f.Category] = append(groups[f.Category], f)
	}
	sort.Strings(categories)
	return groups, categories
}

// consolidateCategory merges one category's records according to its rule.
// Categories at or below the no-merge limit pass through untouched.
func (c *Consolidator) consolidateCategory(category string, records []*db.Feature) ([]*db.Feature, error) {
	if len(records) <= c.opts.NoMergeMax {
		return records, nil
	}

	switch rule := c.opts.ruleFor(category, len(records)).(type) {
	case PartitionRule:
		merged, err := mergePartitions(records, rule.Groups)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", category, err)
		}
		return merged, nil
	case FactorRule:
		return mergeChunks(records, rule.Factor), nil
	default:
		return nil, fmt.Errorf("category %q: unknown rule %T", category, rule)
	}
}

// mergeChunks merges consecutive runs of factor records. The final chunk may
// be shorter; even a single trailing record is rebundled so its steps carry
// the same markers as every other parent.
func mergeChunks(records []*db.Feature, factor int) []*db.Feature {
	merged := make([]*db.Feature, 0, (len(records)+factor-1)/factor)
	for start := 0; start < len(records); start += factor {
		end := start + factor
		if end > len(records) {
			end = len(records)
		}
		merged = append(merged, mergeGroup(records[start:end], ""))
	}
	return merged
}

// mergePartitions merges the explicit ranges of a PartitionRule. Groups must
// be ordered, non-overlapping, and inside the record count; records not
// covered by any group pass through unchanged.
func mergePartitions(records []*db.Feature, groups []PartitionGroup) ([]*db.Feature, error) {
	merged := make([]*db.Feature, 0, len(records))
	next := 0
	for _, g := range groups {
		if g.Start < next || g.End <= g.Start || g.End > len(records) {
			return nil, fmt.Errorf("partition group %q [%d, %d) is invalid for %d records", g.Name, g.Start, g.End, len(records))
		}
		merged = append(merged, records[next:g.Start]...)
		merged = append(merged, mergeGroup(records[g.Start:g.End], g.Name))
		next = g.End
	}
	merged = append(merged, records[next:]...)
	return merged, nil
}

// mergeGroup synthesizes the parent record for a group of sibling features.
// The parent keeps the first child's id and category, takes the minimum
// priority, passes only when every child passes, and is in progress or
// deferred when any child is. Intervention blocks never carry over; they
// refer to the child records, which no longer exist after a commit.
func mergeGroup(group []*db.Feature, name string) *db.Feature {
	first := group[0]
	if name == "" {
		name = first.Name
		if len(group) > 1 {
			name = fmt.Sprintf("Implement %s Subsystem", firstWord(first.Name))
		}
	}

	priority := first.Priority
	passes := true
	inProgress := false
	deferred := false
	lines := make([]string, 0, len(group)+1)
	lines = append(lines, fmt.Sprintf("Bundle of %d related features:", len(group)))
	for _, child := range group {
		if child.Priority < priority {
			priority = child.Priority
		}
		passes = passes && child.Passes
		inProgress = inProgress || child.InProgress
		deferred = deferred || child.Deferred
		lines = append(lines, "- "+child.Name)
	}

	return &db.Feature{
		ID:          first.ID,
		Priority:    priority,
		Category:    first.Category,
		Name:        name,
		Description: strings.Join(lines, "\n"),
		Steps:       mergeSteps(group),
		Passes:      passes,
		InProgress:  inProgress,
		BlockedBy:   nil,
		Deferred:    deferred,
	}
}

// mergeSteps flattens child features into one checklist. Each child
// contributes a status marker line followed by its own steps, indented and
// in their original order.
func mergeSteps(children []*db.Feature) []string {
	var steps []string
	for _, child := range children {
		icon := "○"
		if child.Passes {
			icon = "✓"
		}
		steps = append(steps, fmt.Sprintf("[%s] %s", icon, child.Name))
		for _, step := range child.Steps {
			steps = append(steps, "    - "+step)
		}
	}
	return steps
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}
	return fields[0]
}
