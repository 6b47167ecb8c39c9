package consolidate

import "fmt"

// CategoryStat summarizes one category's reduction.
type CategoryStat struct {
	Category string
	Before   int
	After    int
}

// Reduction returns the percentage drop with one decimal, e.g. "66.7%".
func (s CategoryStat) Reduction() string {
	return reduction(s.Before, s.After)
}

// Stats summarizes a consolidation plan. ByCategory is in lexicographic
// category order.
type Stats struct {
	Before      int
	After       int
	StepsBefore int
	StepsAfter  int
	ByCategory  []CategoryStat
}

// Reduction returns the overall percentage drop with one decimal.
func (s *Stats) Reduction() string {
	return reduction(s.Before, s.After)
}

func reduction(before, after int) string {
	if before == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(before-after)/float64(before)*100)
}
