// Package consolidate merges sibling feature records into bundled parents so
// the tracker's backlog shrinks without losing any implementation steps.
package consolidate

// Rule is the grouping strategy for one category. Exactly two kinds exist:
// FactorRule merges consecutive runs of a fixed size, PartitionRule merges
// explicit index ranges.
type Rule interface {
	isRule()
}

// FactorRule merges consecutive chunks of Factor records. The final chunk
// may be shorter.
type FactorRule struct {
	Factor int
}

func (FactorRule) isRule() {}

// PartitionRule merges explicit ranges of a category's priority-ordered
// records. Records outside every range pass through unchanged.
type PartitionRule struct {
	Groups []PartitionGroup
}

func (PartitionRule) isRule() {}

// PartitionGroup is one half-open range [Start, End) of a category's
// priority-ordered records, merged into a single record under Name. An empty
// Name falls back to the synthesized bundle name.
type PartitionGroup struct {
	Start int
	End   int
	Name  string
}

// Options configures how a Consolidator groups and validates.
type Options struct {
	// TargetMin and TargetMax bound the acceptable record count after
	// consolidation, inclusive on both ends.
	TargetMin int
	TargetMax int

	// NoMergeMax is the largest category size returned unchanged.
	NoMergeMax int

	// SmallFactor and LargeFactor are the chunk sizes for categories at or
	// below and above LargeThreshold.
	SmallFactor    int
	LargeFactor    int
	LargeThreshold int

	// Partitions overrides factor chunking for specific categories.
	Partitions map[string][]PartitionGroup
}

// DefaultOptions returns the production consolidation policy.
func DefaultOptions() Options {
	return Options{
		TargetMin:      250,
		TargetMax:      600,
		NoMergeMax:     3,
		SmallFactor:    3,
		LargeFactor:    4,
		LargeThreshold: 50,
	}
}

// ruleFor returns the grouping rule for a category of the given size.
func (o Options) ruleFor(category string, count int) Rule {
	if groups, ok := o.Partitions[category]; ok {
		return PartitionRule{Groups: groups}
	}
	if count > o.LargeThreshold {
		return FactorRule{Factor: o.LargeFactor}
	}
	return FactorRule{Factor: o.SmallFactor}
}
