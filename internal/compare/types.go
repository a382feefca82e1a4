package compare

import (
	"fmt"

	"github.com/rgehrsitz/tanda/internal/domain"
	"github.com/shopspring/decimal"
)

// ComparisonResult represents a single tanda run with calculated metrics
type ComparisonResult struct {
	ScenarioName string                   `json:"scenarioName"`
	Description  string                   `json:"description"`
	Result       *domain.SimulationResult `json:"-"`

	// Key Metrics
	FirstAwardMonth int             `json:"firstAwardMonth"` // 0 when nobody was awarded
	MonthsSimulated int             `json:"monthsSimulated"`
	Awarded         int             `json:"awarded"`
	Unawarded       int             `json:"unawarded"`
	DeficitMonths   int             `json:"deficitMonths"`
	FinalSavings    decimal.Decimal `json:"finalSavings"`
	PeakDebtDue     decimal.Decimal `json:"peakDebtDue"`

	// Comparison to Base
	FirstAwardDiff      int             `json:"firstAwardDiff"`
	AwardedDiff         int             `json:"awardedDiff"`
	DeficitDiff         int             `json:"deficitDiff"`
	SavingsDiffFromBase decimal.Decimal `json:"savingsDiffFromBase"`
	SavingsPctFromBase  decimal.Decimal `json:"savingsPctFromBase"`
}

// ComparisonSet represents a base run and its what-if variants
type ComparisonSet struct {
	BaseScenarioName   string             `json:"baseScenarioName"`
	BaseResult         *ComparisonResult  `json:"baseResult"`
	AlternativeResults []ComparisonResult `json:"alternativeResults"`
	Recommendations    []string           `json:"recommendations"`
	ConfigPath         string             `json:"configPath"`
}

// MetricsCalculator extracts key metrics from simulation results
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics computes all comparison metrics for a simulation result
func (mc *MetricsCalculator) CalculateMetrics(name string, result *domain.SimulationResult) ComparisonResult {
	return ComparisonResult{
		ScenarioName:    name,
		Result:          result,
		FirstAwardMonth: result.FirstAwardMonth(),
		MonthsSimulated: len(result.Months),
		Awarded:         len(result.Awards),
		Unawarded:       len(result.Unawarded),
		DeficitMonths:   result.DeficitMonths(),
		FinalSavings:    result.FinalSavings(),
		PeakDebtDue:     result.PeakDebtDue(),
	}
}

// CalculateComparison computes comparison metrics between a run and a base
func (mc *MetricsCalculator) CalculateComparison(scenario, base ComparisonResult) ComparisonResult {
	scenario.FirstAwardDiff = scenario.FirstAwardMonth - base.FirstAwardMonth
	scenario.AwardedDiff = scenario.Awarded - base.Awarded
	scenario.DeficitDiff = scenario.DeficitMonths - base.DeficitMonths
	scenario.SavingsDiffFromBase = scenario.FinalSavings.Sub(base.FinalSavings)

	if !base.FinalSavings.IsZero() {
		scenario.SavingsPctFromBase = scenario.SavingsDiffFromBase.
			Div(base.FinalSavings).
			Mul(decimal.NewFromInt(100))
	}

	return scenario
}

// awardsEarlier reports whether a delivers its first unit before b.
// A run that never awards is never earlier.
func awardsEarlier(a, b *ComparisonResult) bool {
	if a.FirstAwardMonth == 0 {
		return false
	}
	return b.FirstAwardMonth == 0 || a.FirstAwardMonth < b.FirstAwardMonth
}

// GenerateRecommendations creates recommendations based on comparison results
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}

	if len(compSet.AlternativeResults) == 0 || compSet.BaseResult == nil {
		return recommendations
	}
	base := compSet.BaseResult

	// Earliest first delivery
	earliest := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if awardsEarlier(alt, earliest) {
			earliest = alt
		}
	}
	if earliest != base {
		recommendations = append(recommendations, fmt.Sprintf(
			"Earliest Delivery: %s awards its first unit in month %d (base: month %d)",
			earliest.ScenarioName, earliest.FirstAwardMonth, base.FirstAwardMonth))
	}

	// Most units delivered
	most := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.Awarded > most.Awarded {
			most = alt
		}
	}
	if most != base {
		recommendations = append(recommendations, fmt.Sprintf(
			"Most Deliveries: %s awards %d more units than base",
			most.ScenarioName, most.Awarded-base.Awarded))
	}

	// Largest deterioration in debt coverage
	worst := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.DeficitMonths > worst.DeficitMonths {
			worst = alt
		}
	}
	if worst != base {
		recommendations = append(recommendations, fmt.Sprintf(
			"Highest Risk: %s has %d months where contributions do not cover debt service (base: %d)",
			worst.ScenarioName, worst.DeficitMonths, base.DeficitMonths))
	}

	// Variants that stall the queue entirely
	for _, alt := range compSet.AlternativeResults {
		if alt.FirstAwardMonth == 0 && base.FirstAwardMonth != 0 {
			recommendations = append(recommendations, fmt.Sprintf(
				"Stalled: %s never reaches the down payment within %d months",
				alt.ScenarioName, alt.MonthsSimulated))
		}
	}

	return recommendations
}
