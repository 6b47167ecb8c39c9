// Package tui provides the Bubble Tea feature browser for featdb.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Header displays the browsed source and summary counts plus key hints.
type Header struct {
	Source     string // "live table" or "consolidation preview"
	Features   int
	Categories int
	Steps      int
	width      int
}

// NewHeader creates a new header component.
func NewHeader(source string) Header {
	return Header{Source: source}
}

// SetCounts sets the summary counts.
func (h *Header) SetCounts(features, categories, steps int) {
	h.Features = features
	h.Categories = categories
	h.Steps = steps
}

// SetWidth sets the component width.
func (h *Header) SetWidth(w int) {
	h.width = w
}

// View renders the header.
func (h Header) View() string {
	contentWidth := h.width - 4 // Account for border padding
	if contentWidth < 40 {
		contentWidth = 40
	}

	separator := headerLabelStyle.Render("  |  ")
	leftContent := strings.Join([]string{
		headerValueStyle.Render(h.Source),
		headerLabelStyle.Render("features: ") + headerValueStyle.Render(fmt.Sprintf("%d", h.Features)),
		headerLabelStyle.Render("categories: ") + headerValueStyle.Render(fmt.Sprintf("%d", h.Categories)),
		headerLabelStyle.Render("steps: ") + headerValueStyle.Render(fmt.Sprintf("%d", h.Steps)),
	}, separator)

	// Right side: Key hints
	hints := h.renderKeyHints()

	// Calculate spacing
	leftWidth := lipgloss.Width(leftContent)
	hintsWidth := lipgloss.Width(hints)
	spacing := contentWidth - leftWidth - hintsWidth
	if spacing < 1 {
		spacing = 1
	}

	content := leftContent + strings.Repeat(" ", spacing) + hints

	style := headerStyle.Width(contentWidth)
	return style.Render(content)
}

// renderKeyHints renders the key binding hints.
func (h Header) renderKeyHints() string {
	parts := []string{
		h.renderHint("↑↓", "select"),
		h.renderHint("tab", "focus"),
		h.renderHint("pgup/pgdn", "scroll"),
		h.renderHint("q", "quit"),
	}
	return strings.Join(parts, helpSeparatorStyle.Render("  "))
}

// renderHint renders a single key hint.
func (h Header) renderHint(key, desc string) string {
	return helpKeyStyle.Render(key) + helpDescStyle.Render(":"+desc)
}
