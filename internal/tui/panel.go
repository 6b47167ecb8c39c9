// Package tui provides the Bubble Tea feature browser for featdb.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// ScrollablePanel is a bordered, titled text panel backed by a viewport.
type ScrollablePanel struct {
	Title    string
	viewport viewport.Model
	Focused  bool
	width    int
	height   int
}

// NewScrollablePanel creates a new scrollable panel.
func NewScrollablePanel(title string) ScrollablePanel {
	return ScrollablePanel{
		Title:    title,
		viewport: viewport.New(80, 10),
	}
}

// SetSize sets the panel dimensions.
func (p *ScrollablePanel) SetSize(width, height int) {
	p.width = width
	p.height = height

	// Account for title line and borders
	viewportWidth := width - 4
	viewportHeight := height - 3
	if viewportWidth < 10 {
		viewportWidth = 10
	}
	if viewportHeight < 3 {
		viewportHeight = 3
	}

	p.viewport.Width = viewportWidth
	p.viewport.Height = viewportHeight
}

// SetContent replaces the entire content and resets the scroll position.
func (p *ScrollablePanel) SetContent(content string) {
	p.viewport.SetContent(content)
	p.viewport.GotoTop()
}

// SetFocused sets the focus state.
func (p *ScrollablePanel) SetFocused(focused bool) {
	p.Focused = focused
}

// ScrollUp scrolls up by n lines.
func (p *ScrollablePanel) ScrollUp(n int) {
	p.viewport.LineUp(n)
}

// ScrollDown scrolls down by n lines.
func (p *ScrollablePanel) ScrollDown(n int) {
	p.viewport.LineDown(n)
}

// PageUp scrolls up by one page.
func (p *ScrollablePanel) PageUp() {
	p.viewport.ViewUp()
}

// PageDown scrolls down by one page.
func (p *ScrollablePanel) PageDown() {
	p.viewport.ViewDown()
}

// GotoTop scrolls to the top.
func (p *ScrollablePanel) GotoTop() {
	p.viewport.GotoTop()
}

// GotoBottom scrolls to the bottom.
func (p *ScrollablePanel) GotoBottom() {
	p.viewport.GotoBottom()
}

// AtBottom returns whether the viewport is at the bottom.
func (p *ScrollablePanel) AtBottom() bool {
	return p.viewport.AtBottom()
}

// View renders the panel.
func (p *ScrollablePanel) View() string {
	contentWidth := p.width - 2 // Account for border
	if contentWidth < 10 {
		contentWidth = 10
	}

	// Title line
	title := panelTitleStyle.Render(p.Title)

	// Scroll position indicator
	indicator := scrollIndicatorStyle.Render(fmt.Sprintf("%3.f%%", p.viewport.ScrollPercent()*100))

	// Title with indicator right-aligned
	titleWidth := lipgloss.Width(title)
	indicatorWidth := lipgloss.Width(indicator)
	spacing := contentWidth - titleWidth - indicatorWidth - 2
	if spacing < 1 {
		spacing = 1
	}
	titleLine := title + strings.Repeat(" ", spacing) + indicator

	content := titleLine + "\n" + p.viewport.View()

	// Apply border style based on focus
	var style lipgloss.Style
	if p.Focused {
		style = panelFocusedStyle.Width(contentWidth)
	} else {
		style = panelStyle.Width(contentWidth)
	}

	return style.Render(content)
}
