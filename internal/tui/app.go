// Package tui provides the Bubble Tea feature browser for featdb.
package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/x402arcade/featdb/internal/db"
)

// categoryEntry is one row in the category list.
type categoryEntry struct {
	name  string
	count int
	icon  string
}

// Model is the Bubble Tea model for the feature browser. It is read-only:
// the browser never writes to the database.
type Model struct {
	header      Header
	detailPanel *ScrollablePanel

	keys KeyMap

	categories []categoryEntry
	features   map[string][]*db.Feature
	cursor     int

	// focusDetail routes up/down to the detail viewport instead of the
	// category cursor.
	focusDetail bool

	width       int
	height      int
	listWidth   int
	listHeight  int
	initialized bool
	quitting    bool
}

// NewModel creates a browser model over the given records. The source label
// names where they came from, e.g. "live table" or "consolidation preview".
func NewModel(source string, features []*db.Feature) Model {
	grouped := make(map[string][]*db.Feature)
	for _, f := range features {
		grouped[f.Category] = append(grouped[f.Category], f)
	}

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	categories := make([]categoryEntry, 0, len(names))
	for _, name := range names {
		categories = append(categories, categoryEntry{
			name:  name,
			count: len(grouped[name]),
			icon:  categoryIcon(grouped[name]),
		})
	}

	header := NewHeader(source)
	header.SetCounts(len(features), len(categories), db.StepCount(features))

	detail := NewScrollablePanel("Features")

	m := Model{
		header:      header,
		detailPanel: &detail,
		keys:        DefaultKeyMap(),
		categories:  categories,
		features:    grouped,
	}
	m.refreshDetail()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.initialized = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.focusDetail = !m.focusDetail
			m.detailPanel.SetFocused(m.focusDetail)

		case key.Matches(msg, m.keys.Up):
			if m.focusDetail {
				m.detailPanel.ScrollUp(1)
			} else if m.cursor > 0 {
				m.cursor--
				m.refreshDetail()
			}

		case key.Matches(msg, m.keys.Down):
			if m.focusDetail {
				m.detailPanel.ScrollDown(1)
			} else if m.cursor < len(m.categories)-1 {
				m.cursor++
				m.refreshDetail()
			}

		case key.Matches(msg, m.keys.Home):
			if m.focusDetail {
				m.detailPanel.GotoTop()
			} else if m.cursor != 0 {
				m.cursor = 0
				m.refreshDetail()
			}

		case key.Matches(msg, m.keys.End):
			if m.focusDetail {
				m.detailPanel.GotoBottom()
			} else if len(m.categories) > 0 && m.cursor != len(m.categories)-1 {
				m.cursor = len(m.categories) - 1
				m.refreshDetail()
			}

		case key.Matches(msg, m.keys.PageUp):
			m.detailPanel.PageUp()

		case key.Matches(msg, m.keys.PageDown):
			m.detailPanel.PageDown()
		}
	}

	return m, nil
}

// refreshDetail rebuilds the detail panel for the selected category.
func (m *Model) refreshDetail() {
	if len(m.categories) == 0 {
		m.detailPanel.Title = "Features"
		m.detailPanel.SetContent(emptyStateStyle.Render("No features in the database."))
		return
	}

	selected := m.categories[m.cursor]
	m.detailPanel.Title = selected.name

	var s strings.Builder
	for i, f := range m.features[selected.name] {
		if i > 0 {
			s.WriteString("\n")
		}
		s.WriteString(renderFeature(f))
	}
	m.detailPanel.SetContent(s.String())
}

// renderFeature formats one record for the detail panel.
func renderFeature(f *db.Feature) string {
	var s strings.Builder

	meta := featureMetaStyle.Render(fmt.Sprintf("(id %d, priority %d)", f.ID, f.Priority))
	s.WriteString(fmt.Sprintf("%s %s %s\n", statusIcon(f), featureNameStyle.Render(f.Name), meta))

	if f.BlockedBy != nil {
		s.WriteString(statusBlockedStyle.Render(fmt.Sprintf("  blocked by #%d", *f.BlockedBy)))
		s.WriteString("\n")
	}

	if f.Description != "" {
		for _, line := range strings.Split(f.Description, "\n") {
			s.WriteString("  " + line + "\n")
		}
	}

	if len(f.Steps) > 0 {
		s.WriteString(featureMetaStyle.Render("  steps:"))
		s.WriteString("\n")
		for _, step := range f.Steps {
			s.WriteString(featureStepStyle.Render("    " + step))
			s.WriteString("\n")
		}
	}

	return s.String()
}

// statusIcon returns the styled status marker for a record.
func statusIcon(f *db.Feature) string {
	switch {
	case f.Passes:
		return statusPassesStyle.Render("✓")
	case f.BlockedBy != nil:
		return statusBlockedStyle.Render("✗")
	case f.InProgress:
		return statusProgressStyle.Render("●")
	case f.Deferred:
		return statusDeferredStyle.Render("◌")
	default:
		return statusPendingStyle.Render("○")
	}
}

// categoryIcon rolls a category up into one marker: ✓ only when every record
// passes, otherwise the most urgent state present.
func categoryIcon(features []*db.Feature) string {
	allPass := len(features) > 0
	allDeferred := len(features) > 0
	anyBlocked := false
	anyProgress := false
	for _, f := range features {
		allPass = allPass && f.Passes
		allDeferred = allDeferred && f.Deferred
		anyBlocked = anyBlocked || f.BlockedBy != nil
		anyProgress = anyProgress || f.InProgress
	}

	switch {
	case allPass:
		return statusPassesStyle.Render("✓")
	case anyBlocked:
		return statusBlockedStyle.Render("✗")
	case anyProgress:
		return statusProgressStyle.Render("●")
	case allDeferred:
		return statusDeferredStyle.Render("◌")
	default:
		return statusPendingStyle.Render("○")
	}
}

// updateLayout updates component sizes based on window size.
func (m *Model) updateLayout() {
	m.header.SetWidth(m.width)

	// Header takes 3 lines (content + border)
	availableHeight := m.height - 3
	if availableHeight < 10 {
		availableHeight = 10
	}

	// Category list takes a third of the width, detail the rest
	m.listWidth = m.width / 3
	if m.listWidth < 24 {
		m.listWidth = 24
	}
	m.listHeight = availableHeight - 3 // title + borders
	if m.listHeight < 3 {
		m.listHeight = 3
	}

	m.detailPanel.SetSize(m.width-m.listWidth, availableHeight)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	if !m.initialized {
		return "Initializing..."
	}

	var s strings.Builder
	s.WriteString(m.header.View())
	s.WriteString("\n")
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.viewCategoryList(), m.detailPanel.View()))

	return lipgloss.NewStyle().MaxWidth(m.width).Render(s.String())
}

// viewCategoryList renders the category panel with the selection cursor.
func (m Model) viewCategoryList() string {
	contentWidth := m.listWidth - 2 // Account for border
	if contentWidth < 10 {
		contentWidth = 10
	}

	border := panelStyle
	if !m.focusDetail {
		border = panelFocusedStyle
	}

	var s strings.Builder
	s.WriteString(panelTitleStyle.Render("Categories"))
	s.WriteString("\n")

	if len(m.categories) == 0 {
		s.WriteString(emptyStateStyle.Render("(none)"))
		return border.Width(contentWidth).Render(s.String())
	}

	// Determine which items to display (scrolling)
	startIdx := 0
	endIdx := len(m.categories)
	if len(m.categories) > m.listHeight {
		// Keep cursor visible with some context
		halfVisible := m.listHeight / 2
		if m.cursor > halfVisible {
			startIdx = m.cursor - halfVisible
		}
		if startIdx+m.listHeight > len(m.categories) {
			startIdx = len(m.categories) - m.listHeight
		}
		endIdx = startIdx + m.listHeight
	}

	if startIdx > 0 {
		s.WriteString(categoryCountStyle.Render(fmt.Sprintf("  ... %d more above", startIdx)))
		s.WriteString("\n")
	}

	for i := startIdx; i < endIdx; i++ {
		entry := m.categories[i]
		cursor := "  "
		label := categoryStyle.Render(entry.name)
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
			label = selectedCategoryStyle.Render(entry.name)
		}
		count := categoryCountStyle.Render(fmt.Sprintf(" (%d)", entry.count))
		s.WriteString(cursor + entry.icon + " " + label + count)
		s.WriteString("\n")
	}

	if endIdx < len(m.categories) {
		s.WriteString(categoryCountStyle.Render(fmt.Sprintf("  ... %d more below", len(m.categories)-endIdx)))
		s.WriteString("\n")
	}

	return border.Width(contentWidth).Render(strings.TrimRight(s.String(), "\n"))
}

// Run starts the browser over the given records.
func Run(source string, features []*db.Feature) error {
	m := NewModel(source, features)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
