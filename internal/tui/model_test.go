package tui

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rgehrsitz/tanda/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfiguration() *domain.Configuration {
	product := domain.ProductPackage{
		ID:                "city-car",
		Market:            domain.MarketMX,
		Price:             decimal.NewFromInt(100000),
		AnnualRate:        decimal.Zero,
		TermMonths:        100,
		MinDownPaymentPct: decimal.NewFromFloat(0.1),
	}
	contract := domain.ContratoBase{
		ID:                "CT-001",
		OriginalPrincipal: decimal.NewFromInt(200000),
		MonthlyRate:       decimal.NewFromFloat(0.02),
		OriginalTerm:      48,
		OriginalPayment:   decimal.NewFromInt(5800),
		PaymentsMade:      12,
	}
	second := contract
	second.ID = "CT-002"
	second.PaymentsMade = 24

	return &domain.Configuration{
		Products: []domain.ProductPackage{product},
		Groups: []domain.GroupConfig{
			{
				Name:          "Ruta Norte",
				Market:        domain.MarketMX,
				ProductID:     "city-car",
				HorizonMonths: 12,
				Members: []domain.Member{
					{ID: "A", Priority: 1, BaseContribution: decimal.NewFromInt(5000)},
					{ID: "B", Priority: 2, BaseContribution: decimal.NewFromInt(5000)},
				},
			},
			{
				Name:          "Slow Lane",
				Market:        domain.MarketMX,
				ProductID:     "city-car",
				HorizonMonths: 12,
				Members: []domain.Member{
					{ID: "S", Priority: 1, BaseContribution: decimal.NewFromInt(2000)},
				},
			},
		},
		Contracts: []domain.ContratoBase{contract, second},
		Protection: domain.ProtectionOptions{
			Deferral:   domain.DeferralOptions{Months: 2, CapitalizeInterest: true},
			Reschedule: domain.RescheduleOptions{ExtraMonths: 6},
			StepDown:   domain.StepDownOptions{Months: 3, Reduction: decimal.NewFromFloat(0.25)},
		},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

// loaded returns a model with the test configuration and both views populated
func loaded(t *testing.T) Model {
	t.Helper()
	m := NewModel("groups.yaml", nil)
	m, cmd := update(t, m, ConfigLoadedMsg{Config: testConfiguration()})
	require.NotNil(t, cmd)

	m, _ = update(t, m, simulateCmd(m.calcEngine, m.config, "Ruta Norte")())
	m, _ = update(t, m, restructureCmd(m.compareEngine, m.config, "CT-001")())
	return m
}

func TestNewModel(t *testing.T) {
	m := NewModel("groups.yaml", nil)

	assert.Equal(t, SceneTimeline, m.currentScene)
	assert.True(t, m.loading)
	assert.NotNil(t, m.calcEngine)
	assert.NotNil(t, m.Init())
	assert.Contains(t, m.View(), "Loading configuration")
}

func TestLoadConfigCmd(t *testing.T) {
	msg := loadConfigCmd(filepath.Join(t.TempDir(), "missing.yaml"))()
	errMsg, ok := msg.(ErrorMsg)
	require.True(t, ok)
	assert.True(t, errors.Is(errMsg.Err, os.ErrNotExist))

	path := filepath.Join(t.TempDir(), "groups.yaml")
	yaml := `products:
  - id: city-car
    market: mx
    price: "100000"
    annual_rate: "0"
    term_months: 100
    min_down_payment_pct: "0.1"
groups:
  - name: Ruta Norte
    market: mx
    product: city-car
    horizon_months: 6
    members:
      - id: A
        priority: 1
        base_contribution: "5000"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	loadedMsg, ok := loadConfigCmd(path)().(ConfigLoadedMsg)
	require.True(t, ok)
	require.Len(t, loadedMsg.Config.Groups, 1)
}

func TestModel_ConfigLoaded(t *testing.T) {
	m := loaded(t)

	assert.False(t, m.loading)
	require.NotNil(t, m.timelineModel.Result())
	assert.Equal(t, "Ruta Norte", m.timelineModel.Result().GroupName)
	require.NotNil(t, m.restructuringModel.Comparison())
	assert.Equal(t, "CT-001", m.restructuringModel.Comparison().ContractID)

	view := m.View()
	assert.Contains(t, view, "Timeline: Ruta Norte")
	assert.Contains(t, view, "First award")
}

func TestModel_ContractsOnlyOpensRestructuring(t *testing.T) {
	cfg := testConfiguration()
	cfg.Groups = nil

	m, cmd := update(t, NewModel("groups.yaml", nil), ConfigLoadedMsg{Config: cfg})
	require.NotNil(t, cmd)
	assert.Equal(t, SceneRestructuring, m.currentScene)
}

func TestModel_ToggleView(t *testing.T) {
	m := loaded(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, SceneRestructuring, m.currentScene)
	view := m.View()
	assert.Contains(t, view, "Contract CT-001")
	assert.Contains(t, view, "collective_rescue")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, SceneTimeline, m.currentScene)
}

func TestModel_CycleGroups(t *testing.T) {
	m := loaded(t)

	m, cmd := update(t, m, runes("]"))
	require.NotNil(t, cmd)
	assert.Equal(t, "Slow Lane", m.selectedGroup())

	msg, ok := cmd().(SimulationCompleteMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	m, _ = update(t, m, msg)
	assert.Equal(t, "Slow Lane", m.timelineModel.Result().GroupName)

	m, _ = update(t, m, runes("]"))
	assert.Equal(t, "Ruta Norte", m.selectedGroup(), "wraps around")
	m, _ = update(t, m, runes("["))
	assert.Equal(t, "Slow Lane", m.selectedGroup())
}

func TestModel_CycleContracts(t *testing.T) {
	m := loaded(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})

	m, cmd := update(t, m, runes("["))
	require.NotNil(t, cmd)
	assert.Equal(t, "CT-002", m.selectedContract())

	msg, ok := cmd().(RestructuringCompleteMsg)
	require.True(t, ok)
	m, _ = update(t, m, msg)
	assert.Equal(t, "CT-002", m.restructuringModel.Comparison().ContractID)
	assert.Equal(t, 24, m.restructuringModel.Comparison().RemainingTerm)
}

func TestModel_StaleSimulationIgnored(t *testing.T) {
	m := loaded(t)
	stale := simulateCmd(m.calcEngine, m.config, "Slow Lane")()

	m, _ = update(t, m, stale)
	assert.Equal(t, "Ruta Norte", m.timelineModel.Result().GroupName)
}

func TestModel_HelpAndBack(t *testing.T) {
	m := loaded(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})

	m, _ = update(t, m, runes("?"))
	assert.Equal(t, SceneHelp, m.currentScene)
	assert.Contains(t, m.View(), "KEYBOARD SHORTCUTS")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, SceneRestructuring, m.currentScene)
}

func TestModel_ErrorIsDismissed(t *testing.T) {
	m := loaded(t)
	m, _ = update(t, m, ErrorMsg{Err: errors.New("boom")})
	assert.Contains(t, m.View(), "Error: boom")

	m, cmd := update(t, m, runes("x"))
	assert.Nil(t, cmd)
	assert.Nil(t, m.err)
}

func TestModel_SimulationError(t *testing.T) {
	m := loaded(t)
	m, _ = update(t, m, simulateCmd(m.calcEngine, m.config, "Nowhere")())

	require.Error(t, m.err)
	assert.Contains(t, m.err.Error(), "group Nowhere not found")
}

func TestModel_Quit(t *testing.T) {
	m := loaded(t)

	_, cmd := update(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_WindowSize(t *testing.T) {
	m := loaded(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)
}

func TestScene_String(t *testing.T) {
	assert.Equal(t, "Timeline", SceneTimeline.String())
	assert.Equal(t, "Restructuring", SceneRestructuring.String())
	assert.Equal(t, "Help", SceneHelp.String())
	assert.Equal(t, "Unknown", Scene(42).String())
}
