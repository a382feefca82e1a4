package breakeven

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rgehrsitz/tanda/internal/output"
	"github.com/shopspring/decimal"
)

// TableFormatter formats optimization results as a console table
type TableFormatter struct{}

// Format generates a formatted table for optimization result
func (tf *TableFormatter) Format(result *OptimizationResult) string {
	var sb strings.Builder
	market := result.Request.Base.Group.Market

	sb.WriteString("BREAK-EVEN OPTIMIZATION RESULTS\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")

	sb.WriteString(fmt.Sprintf("Group:               %s\n", result.GroupName))
	sb.WriteString(fmt.Sprintf("Optimization Target: %s\n", result.Request.Target))
	sb.WriteString(fmt.Sprintf("Optimization Goal:   %s\n", DescribeGoal(result.Request.Goal, result.Request.Constraints)))
	sb.WriteString(fmt.Sprintf("Status:              %s\n", tf.formatStatus(result.Success)))
	sb.WriteString(fmt.Sprintf("Iterations:          %d\n", result.Iterations))
	if result.ConvergenceInfo != "" {
		sb.WriteString(fmt.Sprintf("Convergence:         %s\n", result.ConvergenceInfo))
	}
	sb.WriteString("\n")

	sb.WriteString("OPTIMAL PARAMETERS\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	if result.OptimalContribution != nil {
		sb.WriteString(fmt.Sprintf("Monthly Contribution: %s per member\n", output.FormatCurrency(*result.OptimalContribution, market)))
	}
	if result.OptimalHorizon != nil {
		sb.WriteString(fmt.Sprintf("Horizon:              %d months\n", *result.OptimalHorizon))
	}
	sb.WriteString("\n")

	sb.WriteString("PROJECTED RESULTS\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	sb.WriteString(fmt.Sprintf("First Award:     %s\n", monthLabel(result.FirstAwardMonth)))
	sb.WriteString(fmt.Sprintf("Units Awarded:   %d of %d\n", result.Awarded, result.Awarded+result.Unawarded))
	sb.WriteString(fmt.Sprintf("Deficit Months:  %d\n", result.DeficitMonths))
	sb.WriteString(fmt.Sprintf("Final Savings:   %s\n", output.FormatCurrency(result.FinalSavings, market)))
	sb.WriteString("\n")

	sb.WriteString("COMPARISON TO CURRENT CONTRIBUTIONS\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Goal Met Today:  %s\n", yesNo(result.BaseGoalMet)))
	sb.WriteString(fmt.Sprintf("First Award:     %s\n", monthLabel(result.BaseFirstAwardMonth)))
	sb.WriteString(fmt.Sprintf("Deficit Months:  %d\n", result.BaseDeficitMonths))
	if result.OptimalContribution != nil && !result.ContributionDiffFromBase.IsZero() {
		sb.WriteString(fmt.Sprintf("Change Needed:   %s per member\n", signedAmount(result.ContributionDiffFromBase)))
	}
	sb.WriteString("\n")

	return sb.String()
}

// FormatMultiDimensional formats results from one search per goal
func (tf *TableFormatter) FormatMultiDimensional(result *MultiDimensionalResult) string {
	var sb strings.Builder

	sb.WriteString("MULTI-GOAL BREAK-EVEN RESULTS\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Group: %s\n\n", result.GroupName))

	sb.WriteString("SUMMARY OF ALL GOALS\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	sb.WriteString(fmt.Sprintf("%-20s %14s %12s %10s %10s %12s\n",
		"Goal", "Contribution", "First Award", "Awarded", "Deficits", "Savings"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")

	for _, res := range result.Results {
		contribution := "-"
		if res.OptimalContribution != nil {
			contribution = tf.formatShort(*res.OptimalContribution)
		}
		sb.WriteString(fmt.Sprintf("%-20s %14s %12s %10s %10d %12s\n",
			tf.truncate(string(res.Request.Goal), 20),
			contribution,
			monthLabel(res.FirstAwardMonth),
			fmt.Sprintf("%d/%d", res.Awarded, res.Awarded+res.Unawarded),
			res.DeficitMonths,
			tf.formatShort(res.FinalSavings)))
	}
	sb.WriteString("\n")

	if len(result.Recommendations) > 0 {
		sb.WriteString("RECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range result.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format generates JSON output
func (jf *JSONFormatter) Format(result *OptimizationResult) (string, error) {
	return jf.marshal(result)
}

// FormatMultiDimensional formats multi-goal results as JSON
func (jf *JSONFormatter) FormatMultiDimensional(result *MultiDimensionalResult) (string, error) {
	return jf.marshal(result)
}

func (jf *JSONFormatter) marshal(v any) (string, error) {
	var (
		data []byte
		err  error
	)
	if jf.Pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (tf *TableFormatter) formatStatus(success bool) string {
	if success {
		return "✓ Converged"
	}
	return "⚠ Did not converge"
}

func (tf *TableFormatter) formatShort(d decimal.Decimal) string {
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000000)) {
		return d.Div(decimal.NewFromInt(1000000)).StringFixed(2) + "M"
	} else if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		return d.Div(decimal.NewFromInt(1000)).StringFixed(1) + "K"
	}
	return d.StringFixed(0)
}

func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func monthLabel(month int) string {
	if month == 0 {
		return "none"
	}
	return fmt.Sprintf("month %d", month)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// signedAmount renders a delta with an explicit sign in plain decimal form
func signedAmount(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}
