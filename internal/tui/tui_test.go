package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"clusternews/internal/core"
	"clusternews/internal/render"
)

func testModel() Model {
	rows := []render.ClusterRow{
		{ID: 0, Label: "Election", Items: []core.Item{{Title: "Vote today", Body: "Polls open at eight"}, {Title: "Results"}}},
		{ID: 1, Label: "Football", Items: []core.Item{{Title: "Cup final"}}},
	}
	return New(rows, render.ThemeByName("Light"), 200)
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestNavigateClusters(t *testing.T) {
	m := press(testModel(), "j")
	if c, _ := m.Selected(); c != 1 {
		t.Fatalf("cluster = %d, want 1", c)
	}

	m = press(m, "j")
	if c, _ := m.Selected(); c != 1 {
		t.Errorf("selection should stop at the last cluster, got %d", c)
	}

	m = press(m, "up", "up")
	if c, _ := m.Selected(); c != 0 {
		t.Errorf("selection should stop at the first cluster, got %d", c)
	}
}

func TestNavigatePosts(t *testing.T) {
	m := press(testModel(), "tab", "down")
	c, p := m.Selected()
	if c != 0 || p != 1 {
		t.Fatalf("selected = (%d, %d), want (0, 1)", c, p)
	}

	if !strings.Contains(m.View(), "Results") {
		t.Error("view should show the selected post")
	}

	// switching cluster resets the post selection
	m = press(m, "tab", "j")
	if c, p := m.Selected(); c != 1 || p != 0 {
		t.Errorf("selected = (%d, %d), want (1, 0)", c, p)
	}
}

func TestViewShowsDetail(t *testing.T) {
	view := testModel().View()
	for _, want := range []string{"Clusters", "Election (2 posts)", "Football (1 posts)", "Polls open at eight"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestQuit(t *testing.T) {
	next, cmd := testModel().Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return the quit command")
	}
	if next.(Model).View() != "Bye.\n" {
		t.Error("view should be replaced after quitting")
	}
}

func TestEmptyView(t *testing.T) {
	m := New(nil, render.ThemeByName("Dark"), 200)
	m = press(m, "j", "tab", "j")
	if !strings.Contains(m.View(), "No clusters") {
		t.Error("empty browser should say there is nothing to show")
	}
}
