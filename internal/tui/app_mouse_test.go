package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/thenumber/internal/tui/components"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range components.Tabs {
		a := App{activeTab: active}
		pos := 0

		for i, tab := range components.Tabs {
			w := components.TabVisualWidth(tab, i == active)
			if got := a.tabAtX(pos + w/2); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, pos+w/2, got, i)
			}
			pos += w + 1
		}
		if got := a.tabAtX(pos + 50); got != -1 {
			t.Fatalf("past the last tab -> %d, want -1", got)
		}
	}
}

func TestClickOnTabBarSwitchesTab(t *testing.T) {
	a := App{loaded: true, vals: &formValues{}}
	x := components.TabVisualWidth(components.Tabs[0], true) + 1 +
		components.TabVisualWidth(components.Tabs[1], false)/2

	m, _ := a.Update(tea.MouseMsg{X: x, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	if got := m.(App).activeTab; got != tabExpenses {
		t.Fatalf("activeTab = %d, want %d", got, tabExpenses)
	}

	// Clicks below the bar do nothing.
	m, _ = m.(App).Update(tea.MouseMsg{X: 1, Y: 3, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	if got := m.(App).activeTab; got != tabExpenses {
		t.Fatalf("activeTab = %d after body click", got)
	}
}
