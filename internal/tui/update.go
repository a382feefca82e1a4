package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.timelineModel.SetSize(msg.Width, msg.Height)
		m.restructuringModel.SetSize(msg.Width, msg.Height)
		return m, nil

	case ErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil

	case ConfigLoadedMsg:
		m.config = msg.Config
		m.loading = false
		m.groupIndex, m.contractIndex = 0, 0
		if len(m.config.Groups) == 0 && len(m.config.Contracts) > 0 {
			m.currentScene = SceneRestructuring
		}
		var cmds []tea.Cmd
		if name := m.selectedGroup(); name != "" {
			cmds = append(cmds, simulateCmd(m.calcEngine, m.config, name))
		}
		if id := m.selectedContract(); id != "" {
			cmds = append(cmds, restructureCmd(m.compareEngine, m.config, id))
		}
		return m, tea.Batch(cmds...)

	case SimulationCompleteMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		// drop results for a group the user has already moved past
		if msg.GroupName == m.selectedGroup() {
			m.timelineModel.SetResult(msg.Result)
		}
		return m, nil

	case RestructuringCompleteMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		if msg.ContractID == m.selectedContract() {
			m.restructuringModel.SetComparison(msg.Comparison)
		}
		return m, nil
	}

	return m.updateCurrentScene(msg)
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.err != nil {
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}
		m.err = nil
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		if m.currentScene != SceneHelp {
			m.previousScene = m.currentScene
			m.currentScene = SceneHelp
		}
		return m, nil

	case key.Matches(msg, keys.Back):
		if m.currentScene == SceneHelp {
			m.currentScene = m.previousScene
		}
		return m, nil

	case key.Matches(msg, keys.Toggle):
		switch m.currentScene {
		case SceneTimeline:
			m.currentScene = SceneRestructuring
		case SceneRestructuring:
			m.currentScene = SceneTimeline
		}
		return m, nil

	case key.Matches(msg, keys.Next):
		return m.cycle(1)

	case key.Matches(msg, keys.Prev):
		return m.cycle(-1)
	}

	return m.updateCurrentScene(msg)
}

// cycle moves to the next or previous group or contract and recomputes it
func (m Model) cycle(step int) (tea.Model, tea.Cmd) {
	if m.config == nil {
		return m, nil
	}
	switch m.currentScene {
	case SceneTimeline:
		n := len(m.config.Groups)
		if n < 2 {
			return m, nil
		}
		m.groupIndex = (m.groupIndex + step + n) % n
		return m, simulateCmd(m.calcEngine, m.config, m.selectedGroup())
	case SceneRestructuring:
		n := len(m.config.Contracts)
		if n < 2 {
			return m, nil
		}
		m.contractIndex = (m.contractIndex + step + n) % n
		return m, restructureCmd(m.compareEngine, m.config, m.selectedContract())
	}
	return m, nil
}

// updateCurrentScene delegates updates to the current scene's model
func (m Model) updateCurrentScene(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentScene {
	case SceneTimeline:
		m.timelineModel, cmd = m.timelineModel.Update(msg)
	case SceneRestructuring:
		m.restructuringModel, cmd = m.restructuringModel.Update(msg)
	}
	return m, cmd
}
