package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a named color palette.
type Theme struct {
	Name       string
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Accent     lipgloss.Color
	SelectedFg lipgloss.Color
	SelectedBg lipgloss.Color
	Border     lipgloss.Color
}

// DefaultTheme is used for unknown theme names.
const DefaultTheme = "Light"

var themes = map[string]Theme{
	"light": {
		Name:       "Light",
		Text:       lipgloss.Color("#000000"),
		Muted:      lipgloss.Color("#666666"),
		Accent:     lipgloss.Color("#0078D7"),
		SelectedFg: lipgloss.Color("#ffffff"),
		SelectedBg: lipgloss.Color("#0078D7"),
		Border:     lipgloss.Color("#cccccc"),
	},
	"dark": {
		Name:       "Dark",
		Text:       lipgloss.Color("#f0f0f0"),
		Muted:      lipgloss.Color("#a0a0a0"),
		Accent:     lipgloss.Color("#4da3ff"),
		SelectedFg: lipgloss.Color("#ffffff"),
		SelectedBg: lipgloss.Color("#0078D7"),
		Border:     lipgloss.Color("#505050"),
	},
	"blue": {
		Name:       "Blue",
		Text:       lipgloss.Color("#006064"),
		Muted:      lipgloss.Color("#004d40"),
		Accent:     lipgloss.Color("#00838f"),
		SelectedFg: lipgloss.Color("#ffffff"),
		SelectedBg: lipgloss.Color("#006064"),
		Border:     lipgloss.Color("#4dd0e1"),
	},
}

// ThemeByName returns the named theme (case-insensitive), or the default one.
func ThemeByName(name string) Theme {
	if t, ok := themes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t
	}
	return themes[strings.ToLower(DefaultTheme)]
}

// Styles are the lipgloss styles derived from a theme.
type Styles struct {
	Heading  lipgloss.Style
	Label    lipgloss.Style
	Muted    lipgloss.Style
	Link     lipgloss.Style
	Body     lipgloss.Style
	Selected lipgloss.Style
	Pane     lipgloss.Style
}

// Styles builds the styles of the theme.
func (t Theme) Styles() Styles {
	return Styles{
		Heading:  lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		Label:    lipgloss.NewStyle().Bold(true).Foreground(t.Text),
		Muted:    lipgloss.NewStyle().Foreground(t.Muted),
		Link:     lipgloss.NewStyle().Underline(true).Foreground(t.Accent),
		Body:     lipgloss.NewStyle().Foreground(t.Text),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(t.SelectedFg).Background(t.SelectedBg),
		Pane:     lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).BorderForeground(t.Border).Padding(0, 1),
	}
}
