package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/tanda/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	deficitStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	awardStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// ConsoleFormatter renders the month-by-month timeline and every scenario in detail
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	for i, res := range report.Simulations {
		if i > 0 {
			fmt.Fprintln(&buf)
		}
		writeSimulation(&buf, res)
	}

	for i, res := range report.Restructurings {
		if i > 0 || len(report.Simulations) > 0 {
			fmt.Fprintln(&buf)
		}
		writeRestructuring(&buf, res, report.contractMarket())
	}

	if buf.Len() == 0 {
		fmt.Fprintln(&buf, mutedStyle.Render("Nothing to report"))
	}
	return buf.Bytes(), nil
}

func writeSimulation(buf *bytes.Buffer, res *domain.SimulationResult) {
	fmt.Fprintln(buf, headerStyle.Render(fmt.Sprintf("TANDA SIMULATION: %s (%s)", res.GroupName, strings.ToUpper(string(res.Market)))))
	fmt.Fprintln(buf, strings.Repeat("=", 100))
	fmt.Fprintf(buf, "%-5s %-10s %18s %18s %18s %18s  %s\n",
		"Month", "Date", "Inflow", "Debt Due", "Surplus", "Savings", "Awards")
	fmt.Fprintln(buf, strings.Repeat("-", 100))

	for _, m := range res.Months {
		date := ""
		if m.Date.IsValid() {
			date = m.Date.String()
		}
		line := fmt.Sprintf("%-5d %-10s %18s %18s %18s %18s  %s",
			m.Month, date,
			FormatCurrency(m.Inflow, res.Market),
			FormatCurrency(m.DebtDue, res.Market),
			FormatCurrency(m.Surplus, res.Market),
			FormatCurrency(m.Savings, res.Market),
			awardIDs(m.Awards))
		switch {
		case m.Risk == domain.RiskDebtDeficit:
			line = deficitStyle.Render(line + "  DEFICIT")
		case len(m.Awards) > 0:
			line = awardStyle.Render(line)
		}
		fmt.Fprintln(buf, line)
	}
	fmt.Fprintln(buf, strings.Repeat("-", 100))

	if first := res.FirstAwardMonth(); first > 0 {
		fmt.Fprintf(buf, "First award:     month %d\n", first)
	} else {
		fmt.Fprintln(buf, "First award:     none")
	}
	fmt.Fprintf(buf, "Units awarded:   %d of %d\n", len(res.Awards), len(res.Awards)+len(res.Unawarded))
	if len(res.Unawarded) > 0 {
		fmt.Fprintf(buf, "Still waiting:   %s\n", strings.Join(res.Unawarded, ", "))
	}
	if n := res.DeficitMonths(); n > 0 {
		fmt.Fprintln(buf, deficitStyle.Render(fmt.Sprintf("Deficit months:  %d", n)))
	}
	fmt.Fprintf(buf, "Peak debt due:   %s\n", FormatCurrency(res.PeakDebtDue(), res.Market))
	fmt.Fprintf(buf, "Final savings:   %s\n", FormatCurrency(res.FinalSavings(), res.Market))
}

func writeRestructuring(buf *bytes.Buffer, res *domain.RestructuringResult, market domain.Market) {
	fmt.Fprintln(buf, headerStyle.Render("RESTRUCTURING SCENARIOS: "+res.ContractID))
	fmt.Fprintln(buf, strings.Repeat("=", 100))
	fmt.Fprintf(buf, "Outstanding balance: %s   Remaining term: %d months   Current payment: %s\n",
		FormatCurrency(res.OutstandingBalance, market), res.RemainingTerm, FormatCurrency(res.OriginalPayment, market))
	fmt.Fprintln(buf)

	for _, s := range res.Scenarios {
		fmt.Fprintf(buf, "%-18s payment %18s  term %3d  cost delta %20s  annual rate %s\n",
			s.Policy,
			FormatCurrency(s.NewMonthlyPayment, market),
			s.NewTerm,
			signed(s.TotalCostDelta, market),
			FormatPercentage(s.EffectiveAnnualRate))
		if !s.RateAcceptable {
			fmt.Fprintln(buf, deficitStyle.Render("  ! annual rate is above the acceptable ceiling"))
		}
		for _, w := range s.Warnings {
			fmt.Fprintln(buf, warningStyle.Render("  ! "+w))
		}
	}
}

// ConsoleLiteFormatter prints one summary line per group and contract
type ConsoleLiteFormatter struct{}

func (c ConsoleLiteFormatter) Name() string { return "console-lite" }

func (c ConsoleLiteFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	for _, res := range report.Simulations {
		first := "none"
		if m := res.FirstAwardMonth(); m > 0 {
			first = fmt.Sprintf("month %d", m)
		}
		fmt.Fprintf(&buf, "%s: first award %s, %d/%d awarded in %d months, %d deficit months, savings %s\n",
			res.GroupName, first, len(res.Awards), len(res.Awards)+len(res.Unawarded), len(res.Months),
			res.DeficitMonths(), FormatCurrency(res.FinalSavings(), res.Market))
	}
	market := report.contractMarket()
	for _, res := range report.Restructurings {
		parts := make([]string, 0, len(res.Scenarios))
		for _, s := range res.Scenarios {
			parts = append(parts, fmt.Sprintf("%s %s", s.Policy, FormatCurrency(s.NewMonthlyPayment, market)))
		}
		fmt.Fprintf(&buf, "%s: balance %s | %s\n", res.ContractID, FormatCurrency(res.OutstandingBalance, market), strings.Join(parts, " | "))
	}
	return buf.Bytes(), nil
}

func (r *Report) contractMarket() domain.Market {
	if r.ContractMarket.Valid() {
		return r.ContractMarket
	}
	return domain.MarketMX
}

func awardIDs(awards []domain.Award) string {
	ids := make([]string, len(awards))
	for i, a := range awards {
		ids[i] = a.MemberID
	}
	return strings.Join(ids, ", ")
}

func signed(d decimal.Decimal, market domain.Market) string {
	if d.IsPositive() {
		return "+" + FormatCurrency(d, market)
	}
	return FormatCurrency(d, market)
}
