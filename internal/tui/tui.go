// Package tui is an interactive cluster browser: named clusters on the left,
// the posts of the selected cluster and the detail of the selected post on the
// right.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"clusternews/internal/core"
	"clusternews/internal/render"
)

type focus int

const (
	focusClusters focus = iota
	focusPosts
)

// Model is the state of the browser.
type Model struct {
	rows       []render.ClusterRow
	theme      render.Theme
	styles     render.Styles
	maxLength  int
	focus      focus
	clusterIdx int
	postIdx    int
	width      int
	height     int
	quitting   bool
}

// New returns a browser over the given cluster rows.
func New(rows []render.ClusterRow, theme render.Theme, maxLength int) Model {
	return Model{
		rows:      rows,
		theme:     theme,
		styles:    theme.Styles(),
		maxLength: maxLength,
		width:     100,
		height:    30,
	}
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

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focus == focusClusters {
				m.focus = focusPosts
			} else {
				m.focus = focusClusters
			}
		case "enter", "right", "l":
			m.focus = focusPosts
		case "esc", "left", "h":
			m.focus = focusClusters
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		}
	}
	return m, nil
}

func (m *Model) move(delta int) {
	if m.focus == focusClusters {
		next := m.clusterIdx + delta
		if next >= 0 && next < len(m.rows) {
			m.clusterIdx = next
			m.postIdx = 0
		}
		return
	}
	next := m.postIdx + delta
	if next >= 0 && next < len(m.posts()) {
		m.postIdx = next
	}
}

func (m Model) posts() []core.Item {
	if m.clusterIdx >= len(m.rows) {
		return nil
	}
	return m.rows[m.clusterIdx].Items
}

// Selected returns the indexes of the selected cluster and post.
func (m Model) Selected() (cluster, post int) {
	return m.clusterIdx, m.postIdx
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return "Bye.\n"
	}
	if len(m.rows) == 0 {
		return m.styles.Muted.Render("No clusters to show. Press q to quit.") + "\n"
	}

	paneWidth := m.width/2 - 5
	if paneWidth < 20 {
		paneWidth = 20
	}

	left := m.paneStyle(focusClusters).Width(paneWidth).Render(m.clusterList())
	right := m.paneStyle(focusPosts).Width(paneWidth).Render(m.postPane(paneWidth))

	help := m.styles.Muted.Render("↑/k up • ↓/j down • tab switch pane • q quit")
	doc := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return lipgloss.NewStyle().Margin(1, 2).Render(doc + "\n" + help)
}

func (m Model) paneStyle(f focus) lipgloss.Style {
	st := m.styles.Pane
	if m.focus == f {
		st = st.BorderForeground(m.theme.Accent)
	}
	return st
}

func (m Model) clusterList() string {
	var b strings.Builder
	b.WriteString(m.styles.Heading.Render("Clusters"))
	b.WriteString("\n\n")
	for i, row := range m.rows {
		line := row.String()
		if i == m.clusterIdx {
			line = m.styles.Selected.Render("> " + line)
		} else {
			line = m.styles.Body.Render("  " + line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) postPane(width int) string {
	row := m.rows[m.clusterIdx]

	var b strings.Builder
	b.WriteString(m.styles.Heading.Render(row.Label))
	b.WriteString("\n\n")
	for i, item := range row.Items {
		title := item.Title
		if title == "" {
			title = "(untitled)"
		}
		line := fmt.Sprintf("%d. %s", i+1, title)
		if i == m.postIdx && m.focus == focusPosts {
			line = m.styles.Selected.Render(line)
		} else {
			line = m.styles.Body.Render(line)
		}
		b.WriteString(line + "\n")
	}

	if m.postIdx < len(row.Items) {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(width - 2).Render(
			render.DetailString(m.theme, row.Items[m.postIdx], m.maxLength)))
	}
	return b.String()
}

// Run starts the browser in the alternate screen and blocks until it exits.
func Run(rows []render.ClusterRow, theme render.Theme, maxLength int) error {
	p := tea.NewProgram(New(rows, theme, maxLength), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
