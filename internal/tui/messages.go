package tui

import (
	"github.com/rgehrsitz/tanda/internal/compare"
	"github.com/rgehrsitz/tanda/internal/domain"
)

// Scene represents different screens in the TUI
type Scene int

const (
	SceneTimeline Scene = iota
	SceneRestructuring
	SceneHelp
)

// Message types for the Bubble Tea update cycle

// ErrorMsg displays an error to the user
type ErrorMsg struct {
	Err error
}

// ConfigLoadedMsg signals configuration has been loaded
type ConfigLoadedMsg struct {
	Config *domain.Configuration
}

// SimulationCompleteMsg carries one group's simulation
type SimulationCompleteMsg struct {
	GroupName string
	Result    *domain.SimulationResult
	Err       error
}

// RestructuringCompleteMsg carries one contract's ranked scenarios
type RestructuringCompleteMsg struct {
	ContractID string
	Comparison *compare.RestructuringComparison
	Err        error
}
