package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/x402arcade/featdb/internal/consolidate"
)

var (
	reportTitleStyle = lipgloss.NewStyle().Bold(true)
	reportDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#727072"))
	reportOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#a9dc76")).Bold(true)
	reportWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffd866"))
	reportFailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff6188")).Bold(true)
)

// renderReport writes the per-category breakdown and totals of a plan.
func renderReport(w io.Writer, stats *consolidate.Stats) {
	fmt.Fprintln(w, reportTitleStyle.Render("Consolidation plan"))
	fmt.Fprintln(w)

	// Pad the name column to the widest category by display width, so
	// wide runes in category names don't skew the table.
	nameWidth := runewidth.StringWidth("Category")
	for _, cs := range stats.ByCategory {
		if width := runewidth.StringWidth(cs.Category); width > nameWidth {
			nameWidth = width
		}
	}

	header := fmt.Sprintf("  %s  %7s  %7s  %10s",
		runewidth.FillRight("Category", nameWidth), "Before", "After", "Reduction")
	fmt.Fprintln(w, reportDimStyle.Render(header))

	for _, cs := range stats.ByCategory {
		fmt.Fprintf(w, "  %s  %7d  %7d  %10s\n",
			runewidth.FillRight(cs.Category, nameWidth), cs.Before, cs.After, cs.Reduction())
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Records: %d -> %d (%s)\n", stats.Before, stats.After, stats.Reduction())
	fmt.Fprintf(w, "  Steps:   %d -> %d\n", stats.StepsBefore, stats.StepsAfter)
}

// renderVerdict writes the validation outcome under the report.
func renderVerdict(w io.Writer, warnings []string, err error) {
	fmt.Fprintln(w)
	for _, warning := range warnings {
		fmt.Fprintln(w, reportWarnStyle.Render("  warning: "+warning))
	}
	if err != nil {
		fmt.Fprintln(w, reportFailStyle.Render("  ✗ "+err.Error()))
		return
	}
	fmt.Fprintln(w, reportOKStyle.Render("  ✓ plan satisfies the consolidation invariants"))
}
