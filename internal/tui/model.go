package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/tanda/internal/calculation"
	"github.com/rgehrsitz/tanda/internal/compare"
	"github.com/rgehrsitz/tanda/internal/config"
	"github.com/rgehrsitz/tanda/internal/domain"
	"github.com/rgehrsitz/tanda/internal/tui/scenes"
)

// Model represents the entire application state
type Model struct {
	// Navigation
	currentScene  Scene
	previousScene Scene

	// Terminal dimensions
	width  int
	height int

	// Configuration and data
	configPath string
	config     *domain.Configuration

	calcEngine    *calculation.CalculationEngine
	compareEngine *compare.CompareEngine

	// Current selections
	groupIndex    int
	contractIndex int

	timelineModel      *scenes.TimelineModel
	restructuringModel *scenes.RestructuringModel

	err            error
	loading        bool
	loadingMessage string
}

// NewModel creates a model that loads configPath on start. A nil engine gets
// a default one with a no-op logger.
func NewModel(configPath string, engine *calculation.CalculationEngine) Model {
	if engine == nil {
		engine = calculation.NewCalculationEngine()
	}
	return Model{
		currentScene:       SceneTimeline,
		configPath:         configPath,
		calcEngine:         engine,
		compareEngine:      compare.NewCompareEngine(engine),
		timelineModel:      scenes.NewTimelineModel(),
		restructuringModel: scenes.NewRestructuringModel(domain.MarketMX),
		width:              80,
		height:             24,
		loading:            true,
		loadingMessage:     "Loading configuration...",
	}
}

// Init initializes the model (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	return loadConfigCmd(m.configPath)
}

// loadConfigCmd returns a command that loads the configuration file
func loadConfigCmd(path string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := config.NewInputParser().LoadFromFile(path)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return ConfigLoadedMsg{Config: cfg}
	}
}

// simulateCmd runs one group through the engine
func simulateCmd(engine *calculation.CalculationEngine, cfg *domain.Configuration, groupName string) tea.Cmd {
	return func() tea.Msg {
		run, err := config.NewInputParser().TandaRun(cfg, groupName)
		if err != nil {
			return SimulationCompleteMsg{GroupName: groupName, Err: err}
		}
		res, err := engine.RunTanda(context.Background(), run)
		return SimulationCompleteMsg{GroupName: groupName, Result: res, Err: err}
	}
}

// restructureCmd evaluates and ranks the relief policies for one contract
func restructureCmd(ce *compare.CompareEngine, cfg *domain.Configuration, contractID string) tea.Cmd {
	return func() tea.Msg {
		rc, err := ce.CompareRestructuring(context.Background(), cfg, contractID)
		return RestructuringCompleteMsg{ContractID: contractID, Comparison: rc, Err: err}
	}
}

func (m Model) selectedGroup() string {
	if m.config == nil || len(m.config.Groups) == 0 {
		return ""
	}
	return m.config.Groups[m.groupIndex].Name
}

func (m Model) selectedContract() string {
	if m.config == nil || len(m.config.Contracts) == 0 {
		return ""
	}
	return m.config.Contracts[m.contractIndex].ID
}

// String returns a human-readable name for a scene
func (s Scene) String() string {
	switch s {
	case SceneTimeline:
		return "Timeline"
	case SceneRestructuring:
		return "Restructuring"
	case SceneHelp:
		return "Help"
	default:
		return "Unknown"
	}
}
