package scenes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/tanda/internal/domain"
	"github.com/rgehrsitz/tanda/internal/output"
	"github.com/rgehrsitz/tanda/internal/tui/components"
	"github.com/rgehrsitz/tanda/internal/tui/tuistyles"
)

var timelineColumns = []table.Column{
	{Title: "Month", Width: 5},
	{Title: "Date", Width: 10},
	{Title: "Inflow", Width: 16},
	{Title: "Debt Due", Width: 16},
	{Title: "Surplus", Width: 16},
	{Title: "Savings", Width: 16},
	{Title: "Awards", Width: 14},
	{Title: "Risk", Width: 7},
}

// TimelineModel shows one group's month-by-month simulation
type TimelineModel struct {
	result *domain.SimulationResult
	table  table.Model
	width  int
	height int
}

// NewTimelineModel creates an empty timeline scene
func NewTimelineModel() *TimelineModel {
	return &TimelineModel{table: newTable(timelineColumns)}
}

// SetResult replaces the displayed simulation
func (m *TimelineModel) SetResult(res *domain.SimulationResult) {
	m.result = res
	m.table.SetRows(timelineRows(res))
	m.table.GotoTop()
}

// Result returns the displayed simulation, or nil
func (m *TimelineModel) Result() *domain.SimulationResult {
	return m.result
}

// SetSize updates the scene dimensions
func (m *TimelineModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(5, height-12))
}

// Update scrolls the month table
func (m *TimelineModel) Update(msg tea.Msg) (*TimelineModel, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the timeline scene
func (m *TimelineModel) View() string {
	if m.result == nil {
		return tuistyles.SubtitleStyle.Render("No group simulated yet.")
	}
	res := m.result

	title := tuistyles.TitleStyle.Render(fmt.Sprintf("%s (%s)", res.GroupName, strings.ToUpper(string(res.Market))))
	return lipgloss.JoinVertical(lipgloss.Left, title, timelineMetrics(res), m.table.View())
}

func timelineMetrics(res *domain.SimulationResult) string {
	first := "none"
	if month := res.FirstAwardMonth(); month > 0 {
		first = fmt.Sprintf("month %d", month)
	}
	total := len(res.Awards) + len(res.Unawarded)
	deficits := res.DeficitMonths()

	awarded := components.NewMetricCard("Awarded", fmt.Sprintf("%d of %d", len(res.Awards), total))
	if len(res.Unawarded) > 0 {
		awarded.WithTrend(false, false, fmt.Sprintf("%d waiting", len(res.Unawarded)))
	}
	deficit := components.NewMetricCard("Deficit months", fmt.Sprintf("%d", deficits))
	if deficits > 0 {
		deficit.WithTrend(false, true, "contributions short")
	}

	return components.MetricGrid([]*components.MetricCard{
		components.NewMetricCard("First award", first),
		awarded,
		deficit,
		components.NewMetricCard("Final savings", output.FormatCurrency(res.FinalSavings(), res.Market)).WithWidth(28),
	}, 4)
}

func timelineRows(res *domain.SimulationResult) []table.Row {
	if res == nil {
		return nil
	}
	rows := make([]table.Row, 0, len(res.Months))
	for _, ms := range res.Months {
		date := ""
		if ms.Date.IsValid() {
			date = ms.Date.String()
		}
		ids := make([]string, len(ms.Awards))
		for i, a := range ms.Awards {
			ids[i] = a.MemberID
		}
		risk := ""
		if ms.Risk == domain.RiskDebtDeficit {
			risk = "DEFICIT"
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", ms.Month),
			date,
			output.FormatCurrency(ms.Inflow, res.Market),
			output.FormatCurrency(ms.DebtDue, res.Market),
			output.FormatCurrency(ms.Surplus, res.Market),
			output.FormatCurrency(ms.Savings, res.Market),
			strings.Join(ids, ","),
			risk,
		})
	}
	return rows
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = tuistyles.TableHeaderStyle
	s.Selected = tuistyles.TableSelectedStyle
	t.SetStyles(s)
	return t
}
