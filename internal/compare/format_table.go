package compare

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a formatted table comparing runs
func (tf *TableFormatter) Format(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString("TANDA WHAT-IF COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Base Group: %s\n", compSet.BaseScenarioName))
	if compSet.ConfigPath != "" {
		sb.WriteString(fmt.Sprintf("Configuration: %s\n", compSet.ConfigPath))
	}
	sb.WriteString("\n")

	nameWidth := 32
	numWidth := 11

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, "Scenario",
		numWidth, "1st Award",
		numWidth, "Awarded",
		numWidth, "Deficits",
		numWidth, "Savings"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")

	if compSet.BaseResult != nil {
		sb.WriteString(tf.formatRow(compSet.BaseResult, nameWidth, numWidth, true))
	}

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(tf.formatRow(&alt, nameWidth, numWidth, false))
		}
	}

	sb.WriteString(strings.Repeat("=", 80) + "\n")

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString("\nCOMPARISON TO BASE\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")

		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(fmt.Sprintf("\n%s:\n", alt.ScenarioName))
			if alt.Description != "" {
				sb.WriteString(fmt.Sprintf("  %s\n", alt.Description))
			}

			if alt.FirstAwardDiff != 0 {
				sb.WriteString(fmt.Sprintf("  First Award:      %s%d months\n",
					tf.intSymbol(alt.FirstAwardDiff), alt.FirstAwardDiff))
			}
			if alt.AwardedDiff != 0 {
				sb.WriteString(fmt.Sprintf("  Units Awarded:    %s%d\n",
					tf.intSymbol(alt.AwardedDiff), alt.AwardedDiff))
			}
			if alt.DeficitDiff != 0 {
				sb.WriteString(fmt.Sprintf("  Deficit Months:   %s%d\n",
					tf.intSymbol(alt.DeficitDiff), alt.DeficitDiff))
			}

			sb.WriteString(fmt.Sprintf("  Final Savings:    %s%s (%s%%)\n",
				tf.deltaSymbol(alt.SavingsDiffFromBase),
				tf.formatDecimal(alt.SavingsDiffFromBase),
				alt.SavingsPctFromBase.StringFixed(1)))
		}
		sb.WriteString("\n")
	}

	tf.writeRecommendations(&sb, compSet.Recommendations)

	return sb.String()
}

// FormatRestructuring renders the ranked relief policies for one contract
func (tf *TableFormatter) FormatRestructuring(rc *RestructuringComparison) string {
	var sb strings.Builder

	sb.WriteString("RESTRUCTURING OPTIONS\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Contract: %s\n", rc.ContractID))
	sb.WriteString(fmt.Sprintf("Outstanding Balance: %s over %d months (payment %s)\n\n",
		rc.OutstandingBalance.StringFixed(2), rc.RemainingTerm, rc.OriginalPayment.StringFixed(2)))

	sb.WriteString(fmt.Sprintf("%-4s %-18s %12s %6s %14s %8s %s\n",
		"#", "Policy", "Payment", "Term", "Cost Delta", "Rate", "Ok"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	for _, r := range rc.Ranked {
		ok := "yes"
		if !r.RateAcceptable {
			ok = "no"
		}
		sb.WriteString(fmt.Sprintf("%-4d %-18s %12s %6d %14s %7s%% %s\n",
			r.Rank,
			string(r.Policy),
			r.NewMonthlyPayment.StringFixed(2),
			r.NewTerm,
			tf.deltaSymbol(r.TotalCostDelta)+r.TotalCostDelta.StringFixed(2),
			r.EffectiveAnnualRate.Mul(decimal.NewFromInt(100)).StringFixed(1),
			ok))
		for _, w := range r.Warnings {
			sb.WriteString(fmt.Sprintf("     ! %s\n", w))
		}
	}
	sb.WriteString(strings.Repeat("=", 80) + "\n")

	tf.writeRecommendations(&sb, rc.Recommendations)

	return sb.String()
}

func (tf *TableFormatter) writeRecommendations(sb *strings.Builder, recommendations []string) {
	if len(recommendations) == 0 {
		return
	}
	sb.WriteString("\nRECOMMENDATIONS\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	for _, rec := range recommendations {
		sb.WriteString(fmt.Sprintf("• %s\n", rec))
	}
	sb.WriteString("\n")
}

// formatRow formats a single scenario row
func (tf *TableFormatter) formatRow(result *ComparisonResult, nameWidth, numWidth int, isBase bool) string {
	name := result.ScenarioName
	if isBase {
		name += " (base)"
	}

	firstAward := fmt.Sprintf("month %d", result.FirstAwardMonth)
	if result.FirstAwardMonth == 0 {
		firstAward = "none"
	}

	return fmt.Sprintf("%-*s %*s %*s %*d %*s\n",
		nameWidth, tf.truncate(name, nameWidth),
		numWidth, firstAward,
		numWidth, fmt.Sprintf("%d/%d", result.Awarded, result.Awarded+result.Unawarded),
		numWidth, result.DeficitMonths,
		numWidth, tf.formatDecimal(result.FinalSavings))
}

// formatDecimal formats a decimal for display (in thousands)
func (tf *TableFormatter) formatDecimal(d decimal.Decimal) string {
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000000)) {
		millions := d.Div(decimal.NewFromInt(1000000))
		return millions.StringFixed(2) + "M"
	} else if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		thousands := d.Div(decimal.NewFromInt(1000))
		return thousands.StringFixed(1) + "K"
	}
	return d.StringFixed(0)
}

// deltaSymbol returns a + for positive deltas; negatives carry their own sign
func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	}
	return ""
}

func (tf *TableFormatter) intSymbol(delta int) string {
	if delta > 0 {
		return "+"
	}
	return ""
}

// truncate truncates a string to maxLen
func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// FormatCompact creates a compact single-line summary for each scenario
func (tf *TableFormatter) FormatCompact(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Base: %s | ", compSet.BaseScenarioName))

	for i, alt := range compSet.AlternativeResults {
		if i > 0 {
			sb.WriteString(" | ")
		}
		change := "="
		if alt.FirstAwardDiff != 0 {
			change = fmt.Sprintf("%s%dmo", tf.intSymbol(alt.FirstAwardDiff), alt.FirstAwardDiff)
		}
		sb.WriteString(fmt.Sprintf("%s: %s", alt.ScenarioName, change))
	}

	return sb.String()
}
