package compare

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	header := []string{
		"Scenario",
		"Type",
		"First Award Month",
		"Months Simulated",
		"Awarded",
		"Unawarded",
		"Deficit Months",
		"Final Savings",
		"Peak Debt Due",
		"First Award Diff",
		"Awarded Diff",
		"Deficit Diff",
		"Savings Diff from Base",
		"Savings % Change",
	}

	rows := [][]string{header, cf.formatRow(compSet.BaseResult, "base")}
	for _, alt := range compSet.AlternativeResults {
		rows = append(rows, cf.formatRow(&alt, "alternative"))
	}
	return writeCSV(rows)
}

// FormatRestructuring generates CSV output for a ranked restructuring comparison
func (cf *CSVFormatter) FormatRestructuring(rc *RestructuringComparison) (string, error) {
	rows := [][]string{{
		"Contract",
		"Rank",
		"Policy",
		"New Monthly Payment",
		"New Term",
		"Total Cost Delta",
		"Effective Annual Rate",
		"Rate Acceptable",
		"Payment Diff",
		"Term Diff",
		"Warnings",
	}}
	for _, r := range rc.Ranked {
		rows = append(rows, []string{
			rc.ContractID,
			formatInt(r.Rank),
			string(r.Policy),
			r.NewMonthlyPayment.StringFixed(2),
			formatInt(r.NewTerm),
			r.TotalCostDelta.StringFixed(2),
			r.EffectiveAnnualRate.StringFixed(4),
			strconv.FormatBool(r.RateAcceptable),
			r.PaymentDiff.StringFixed(2),
			formatInt(r.TermDiff),
			strings.Join(r.Warnings, "; "),
		})
	}
	return writeCSV(rows)
}

// formatRow formats a comparison result as a CSV row
func (cf *CSVFormatter) formatRow(result *ComparisonResult, scenarioType string) []string {
	return []string{
		result.ScenarioName,
		scenarioType,
		formatInt(result.FirstAwardMonth),
		formatInt(result.MonthsSimulated),
		formatInt(result.Awarded),
		formatInt(result.Unawarded),
		formatInt(result.DeficitMonths),
		result.FinalSavings.StringFixed(2),
		result.PeakDebtDue.StringFixed(2),
		formatInt(result.FirstAwardDiff),
		formatInt(result.AwardedDiff),
		formatInt(result.DeficitDiff),
		result.SavingsDiffFromBase.StringFixed(2),
		result.SavingsPctFromBase.StringFixed(2),
	}
}

func writeCSV(rows [][]string) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)
	if err := writer.WriteAll(rows); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func formatInt(i int) string {
	return fmt.Sprintf("%d", i)
}
