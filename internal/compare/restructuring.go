package compare

import (
	"fmt"
	"slices"

	"github.com/rgehrsitz/tanda/internal/domain"
	"github.com/shopspring/decimal"
)

// RankedScenario is one restructuring outcome with its position in the ranking
type RankedScenario struct {
	Rank int `json:"rank"`
	domain.ProtectionScenarioResult
	SelfFunded      bool            `json:"selfFunded"`
	PaymentDiff     decimal.Decimal `json:"paymentDiff"` // against the original payment
	PaymentPctDiff  decimal.Decimal `json:"paymentPctDiff"`
	TermDiff        int             `json:"termDiff"`
	RequiresWaivers bool            `json:"requiresWaivers"` // rate above the ceiling
}

// RestructuringComparison ranks the four relief policies for one contract
type RestructuringComparison struct {
	ContractID         string           `json:"contractId"`
	OutstandingBalance decimal.Decimal  `json:"outstandingBalance"`
	OriginalPayment    decimal.Decimal  `json:"originalPayment"`
	RemainingTerm      int              `json:"remainingTerm"`
	Ranked             []RankedScenario `json:"ranked"`
	BestPolicy         string           `json:"bestPolicy,omitempty"`
	Recommendations    []string         `json:"recommendations"`
}

// RankRestructuring orders scenarios: acceptable self-funded policies by cost
// delta, then self-funded policies above the rate ceiling, then collective rescue.
// Ties keep evaluation order.
func RankRestructuring(result *domain.RestructuringResult, originalTerm int) *RestructuringComparison {
	ranked := make([]RankedScenario, 0, len(result.Scenarios))
	for _, s := range result.Scenarios {
		r := RankedScenario{
			ProtectionScenarioResult: s,
			SelfFunded:               s.Policy != domain.PolicyCollectiveRescue,
			PaymentDiff:              s.NewMonthlyPayment.Sub(result.OriginalPayment),
			TermDiff:                 s.NewTerm - originalTerm,
			RequiresWaivers:          !s.RateAcceptable,
		}
		if !result.OriginalPayment.IsZero() {
			r.PaymentPctDiff = r.PaymentDiff.Div(result.OriginalPayment).Mul(decimal.NewFromInt(100))
		}
		ranked = append(ranked, r)
	}

	slices.SortStableFunc(ranked, func(a, b RankedScenario) int {
		if ta, tb := tier(a), tier(b); ta != tb {
			return ta - tb
		}
		return a.TotalCostDelta.Cmp(b.TotalCostDelta)
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	rc := &RestructuringComparison{
		ContractID:         result.ContractID,
		OutstandingBalance: result.OutstandingBalance,
		OriginalPayment:    result.OriginalPayment,
		RemainingTerm:      result.RemainingTerm,
		Ranked:             ranked,
	}
	if len(ranked) > 0 && tier(ranked[0]) == 0 {
		rc.BestPolicy = string(ranked[0].Policy)
	}
	rc.Recommendations = restructuringRecommendations(rc)
	return rc
}

func tier(r RankedScenario) int {
	switch {
	case !r.SelfFunded:
		return 2
	case r.RequiresWaivers:
		return 1
	default:
		return 0
	}
}

func restructuringRecommendations(rc *RestructuringComparison) []string {
	recommendations := []string{}

	if rc.BestPolicy == "" {
		recommendations = append(recommendations,
			"No self-funded policy is under the rate ceiling; escalate to the collective rescue fund")
	} else {
		best := rc.Ranked[0]
		recommendations = append(recommendations, fmt.Sprintf(
			"Lowest Cost: %s changes total cost by %s with a payment of %s over %d months",
			best.Policy, best.TotalCostDelta.StringFixed(2), best.NewMonthlyPayment.StringFixed(2), best.NewTerm))
	}

	var lowest *RankedScenario
	for i := range rc.Ranked {
		r := &rc.Ranked[i]
		if !r.SelfFunded || r.RequiresWaivers {
			continue
		}
		if lowest == nil || r.NewMonthlyPayment.LessThan(lowest.NewMonthlyPayment) {
			lowest = r
		}
	}
	if lowest != nil && lowest.PaymentDiff.IsNegative() {
		recommendations = append(recommendations, fmt.Sprintf(
			"Lowest Payment: %s reduces the payment by %s%%",
			lowest.Policy, lowest.PaymentPctDiff.Neg().StringFixed(1)))
	}

	for _, r := range rc.Ranked {
		if r.SelfFunded && len(r.Warnings) > 0 {
			recommendations = append(recommendations, fmt.Sprintf(
				"Review: %s carries %d warning(s)", r.Policy, len(r.Warnings)))
		}
	}

	return recommendations
}
