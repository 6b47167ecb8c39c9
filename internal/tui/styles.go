// Package tui provides the Bubble Tea feature browser for featdb.
package tui

import "github.com/charmbracelet/lipgloss"

// Monokai Pro color palette
var (
	colorForeground = lipgloss.Color("#fcfcfa")
	colorYellow     = lipgloss.Color("#ffd866")
	colorOrange     = lipgloss.Color("#fc9867")
	colorRed        = lipgloss.Color("#ff6188")
	colorMagenta    = lipgloss.Color("#ab9df2")
	colorGreen      = lipgloss.Color("#a9dc76")
	colorCyan       = lipgloss.Color("#78dce8")
	colorGray       = lipgloss.Color("#727072")
	colorDimGray    = lipgloss.Color("#5b595c")
)

// Panel styles
var (
	// headerStyle is used for the header panel border
	headerStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorDimGray).
			Padding(0, 1)

	// headerLabelStyle is used for labels in the header
	headerLabelStyle = lipgloss.NewStyle().
				Foreground(colorGray)

	// headerValueStyle is used for values in the header
	headerValueStyle = lipgloss.NewStyle().
				Foreground(colorForeground).
				Bold(true)

	// panelStyle is used for the category and detail panels
	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorDimGray).
			Padding(0, 1)

	// panelTitleStyle is used for panel titles
	panelTitleStyle = lipgloss.NewStyle().
			Foreground(colorMagenta).
			Bold(true)

	// panelFocusedStyle is used for the focused panel border
	panelFocusedStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorYellow).
				Padding(0, 1)

	// scrollIndicatorStyle is for scroll position indicators
	scrollIndicatorStyle = lipgloss.NewStyle().
				Foreground(colorGray).
				Italic(true)
)

// Category list styles
var (
	cursorStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	selectedCategoryStyle = lipgloss.NewStyle().
				Foreground(colorYellow).
				Bold(true)

	categoryStyle = lipgloss.NewStyle().
			Foreground(colorForeground)

	categoryCountStyle = lipgloss.NewStyle().
				Foreground(colorGray)
)

// Feature status styles
var (
	statusPassesStyle = lipgloss.NewStyle().
				Foreground(colorGreen).
				Bold(true)

	statusBlockedStyle = lipgloss.NewStyle().
				Foreground(colorRed).
				Bold(true)

	statusProgressStyle = lipgloss.NewStyle().
				Foreground(colorOrange).
				Bold(true)

	statusDeferredStyle = lipgloss.NewStyle().
				Foreground(colorGray)

	statusPendingStyle = lipgloss.NewStyle().
				Foreground(colorForeground)
)

// Detail panel styles
var (
	featureNameStyle = lipgloss.NewStyle().
				Foreground(colorCyan).
				Bold(true)

	featureMetaStyle = lipgloss.NewStyle().
				Foreground(colorGray)

	featureStepStyle = lipgloss.NewStyle().
				Foreground(colorForeground)

	emptyStateStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true)
)

// Help text styles
var (
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	helpSeparatorStyle = lipgloss.NewStyle().
				Foreground(colorDimGray)
)
