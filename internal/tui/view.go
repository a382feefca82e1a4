package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the current state of the application
func (m Model) View() string {
	if m.loading {
		return m.renderApp(BorderStyle.Render("⠋ " + m.loadingMessage))
	}
	if m.err != nil {
		return m.renderApp(ErrorStyle.Render(fmt.Sprintf("Error: %s\n\nPress any key to continue...", m.err)))
	}

	var content string
	switch m.currentScene {
	case SceneTimeline:
		content = m.timelineModel.View()
	case SceneRestructuring:
		content = m.restructuringModel.View()
	case SceneHelp:
		content = renderHelp()
	default:
		content = "Unknown scene"
	}
	return m.renderApp(content)
}

// renderApp wraps content with title bar and status bar
func (m Model) renderApp(content string) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTitleBar(),
		content,
		m.renderStatusBar(),
	)
}

// renderTitleBar renders the application title and view tabs
func (m Model) renderTitleBar() string {
	title := TitleStyle.Render("TANDA - Vehicle Credit Simulator")

	tabs := make([]string, 0, 2)
	for _, s := range []Scene{SceneTimeline, SceneRestructuring} {
		label := s.String()
		switch s {
		case SceneTimeline:
			if g := m.selectedGroup(); g != "" {
				label += ": " + g
			}
		case SceneRestructuring:
			if c := m.selectedContract(); c != "" {
				label += ": " + c
			}
		}
		if s == m.currentScene {
			tabs = append(tabs, TabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, TabInactiveStyle.Render(label))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

// renderStatusBar renders the bottom status bar with keyboard shortcuts
func (m Model) renderStatusBar() string {
	bindings := keys.shortHelp()
	shortcuts := make([]string, len(bindings))
	for i, b := range bindings {
		h := b.Help()
		shortcuts[i] = StatusKeyStyle.Render(h.Key) + " " + h.Desc
	}
	return StatusBarStyle.Render(strings.Join(shortcuts, " • "))
}

func renderHelp() string {
	helpText := `TANDA - Vehicle Credit Simulator

KEYBOARD SHORTCUTS:
  tab       Switch between timeline and restructuring
  [ / ]     Previous / next group or contract
  ↑ / ↓     Scroll months or select a scenario
  ?         Show this help
  esc       Close help
  q/Ctrl+C  Quit

TIMELINE:
  One row per simulated month. DEFICIT marks months where
  contributions do not cover the debt service of awarded units.

RESTRUCTURING:
  Relief policies ranked by cost to the borrower. Collective
  rescue always ranks last since it draws on the group fund.
`
	return BorderStyle.Render(helpText)
}
