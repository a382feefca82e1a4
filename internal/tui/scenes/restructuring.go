package scenes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/tanda/internal/compare"
	"github.com/rgehrsitz/tanda/internal/domain"
	"github.com/rgehrsitz/tanda/internal/output"
	"github.com/rgehrsitz/tanda/internal/tui/tuistyles"
)

var restructuringColumns = []table.Column{
	{Title: "#", Width: 2},
	{Title: "Policy", Width: 18},
	{Title: "Payment", Width: 16},
	{Title: "Term", Width: 5},
	{Title: "Cost Delta", Width: 18},
	{Title: "Annual Rate", Width: 11},
	{Title: "Rate OK", Width: 7},
}

// RestructuringModel shows the ranked relief policies for one contract
type RestructuringModel struct {
	comparison *compare.RestructuringComparison
	market     domain.Market
	table      table.Model
	width      int
	height     int
}

// NewRestructuringModel creates an empty restructuring scene
func NewRestructuringModel(market domain.Market) *RestructuringModel {
	return &RestructuringModel{market: market, table: newTable(restructuringColumns)}
}

// SetComparison replaces the displayed contract
func (m *RestructuringModel) SetComparison(rc *compare.RestructuringComparison) {
	m.comparison = rc
	m.table.SetRows(m.rows())
	m.table.GotoTop()
}

// Comparison returns the displayed ranking, or nil
func (m *RestructuringModel) Comparison() *compare.RestructuringComparison {
	return m.comparison
}

// Selected returns the scenario under the cursor
func (m *RestructuringModel) Selected() (compare.RankedScenario, bool) {
	if m.comparison == nil {
		return compare.RankedScenario{}, false
	}
	i := m.table.Cursor()
	if i < 0 || i >= len(m.comparison.Ranked) {
		return compare.RankedScenario{}, false
	}
	return m.comparison.Ranked[i], true
}

// SetSize updates the scene dimensions
func (m *RestructuringModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(6)
}

// Update moves the cursor between scenarios
func (m *RestructuringModel) Update(msg tea.Msg) (*RestructuringModel, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the restructuring scene
func (m *RestructuringModel) View() string {
	if m.comparison == nil {
		return tuistyles.SubtitleStyle.Render("No contract evaluated yet.")
	}
	rc := m.comparison

	title := tuistyles.TitleStyle.Render("Contract " + rc.ContractID)
	summary := fmt.Sprintf("Balance %s   Remaining %d months   Payment %s",
		output.FormatCurrency(rc.OutstandingBalance, m.market),
		rc.RemainingTerm,
		output.FormatCurrency(rc.OriginalPayment, m.market))

	sections := []string{title, summary, "", m.table.View(), m.details()}
	if len(rc.Recommendations) > 0 {
		sections = append(sections, "", tuistyles.InfoStyle.Render(strings.Join(rc.Recommendations, "\n")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *RestructuringModel) details() string {
	s, ok := m.Selected()
	if !ok {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s: payment %s%s, term %+d months", s.Policy,
		plusSign(s.PaymentDiff.IsPositive()), output.FormatCurrency(s.PaymentDiff, m.market), s.TermDiff)
	if s.RequiresWaivers {
		b.WriteString("\n" + tuistyles.ErrorStyle.Render("! annual rate is above the acceptable ceiling"))
	}
	for _, w := range s.Warnings {
		b.WriteString("\n" + tuistyles.WarningStyle.Render("! "+w))
	}
	return b.String()
}

func (m *RestructuringModel) rows() []table.Row {
	if m.comparison == nil {
		return nil
	}
	rows := make([]table.Row, 0, len(m.comparison.Ranked))
	for _, s := range m.comparison.Ranked {
		ok := "yes"
		if !s.RateAcceptable {
			ok = "no"
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", s.Rank),
			string(s.Policy),
			output.FormatCurrency(s.NewMonthlyPayment, m.market),
			fmt.Sprintf("%d", s.NewTerm),
			plusSign(s.TotalCostDelta.IsPositive()) + output.FormatCurrency(s.TotalCostDelta, m.market),
			output.FormatPercentage(s.EffectiveAnnualRate),
			ok,
		})
	}
	return rows
}

func plusSign(positive bool) string {
	if positive {
		return "+"
	}
	return ""
}
