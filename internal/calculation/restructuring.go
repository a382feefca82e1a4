package calculation

import (
	"fmt"

	"github.com/rgehrsitz/tanda/internal/domain"
	"github.com/shopspring/decimal"
)

// Policy constants for restructuring evaluation
var (
	// MaxAcceptableAnnualRate is the ceiling an annualized rate must stay below
	MaxAcceptableAnnualRate = decimal.RequireFromString("0.35")

	rescueFundCoverage = decimal.RequireFromString("0.8")
	stepDownPaymentCap = decimal.RequireFromString("1.2")
)

// RescheduleWarningMonths is the term extension above which a reschedule is flagged
const RescheduleWarningMonths = 12

// EvaluateRestructuring computes the four relief scenarios for one contract, in
// policy order: deferral, reschedule, step-down, collective rescue.
// The outstanding balance is recomputed from the original schedule; the contract's
// stored balance is ignored.
func EvaluateRestructuring(contract domain.ContratoBase, options domain.ProtectionOptions) [4]domain.ProtectionScenarioResult {
	ev := newScenarioEvaluator(contract)
	return [4]domain.ProtectionScenarioResult{
		ev.deferral(options.Deferral),
		ev.reschedule(options.Reschedule),
		ev.stepDown(options.StepDown),
		ev.collectiveRescue(options.CollectiveRescue),
	}
}

// BuildRestructuringResult wraps EvaluateRestructuring with the contract context
// callers need to render a comparison
func BuildRestructuringResult(contract domain.ContratoBase, options domain.ProtectionOptions) domain.RestructuringResult {
	ev := newScenarioEvaluator(contract)
	return domain.RestructuringResult{
		ContractID:         contract.ID,
		OutstandingBalance: ev.balance,
		OriginalPayment:    contract.OriginalPayment,
		RemainingTerm:      ev.remaining,
		Scenarios:          EvaluateRestructuring(contract, options),
	}
}

type scenarioEvaluator struct {
	contract   domain.ContratoBase
	balance    decimal.Decimal
	remaining  int
	annualRate decimal.Decimal
	acceptable bool
}

func newScenarioEvaluator(c domain.ContratoBase) *scenarioEvaluator {
	annual := c.MonthlyRate.Mul(monthsPerYear)
	return &scenarioEvaluator{
		contract:   c,
		balance:    OutstandingBalance(c.OriginalPrincipal, c.MonthlyRate, c.OriginalTerm, c.PaymentsMade),
		remaining:  c.RemainingTerm(),
		annualRate: annual,
		acceptable: annual.LessThan(MaxAcceptableAnnualRate),
	}
}

func (e *scenarioEvaluator) result(policy domain.ScenarioPolicy) domain.ProtectionScenarioResult {
	return domain.ProtectionScenarioResult{
		Policy:              policy,
		TotalCostDelta:      decimal.Zero,
		EffectiveAnnualRate: e.annualRate,
		RateAcceptable:      e.acceptable,
		Warnings:            []string{},
	}
}

// originalRemainingCost is what the borrower would still pay on the original schedule
func (e *scenarioEvaluator) originalRemainingCost() decimal.Decimal {
	return e.contract.OriginalPayment.Mul(decimal.NewFromInt(int64(e.remaining)))
}

func (e *scenarioEvaluator) deferral(opts domain.DeferralOptions) domain.ProtectionScenarioResult {
	r := e.result(domain.PolicyDeferral)
	balance := e.balance
	if opts.CapitalizeInterest {
		balance = balance.Mul(compound(e.contract.MonthlyRate, opts.Months))
		interest := balance.Sub(e.balance)
		r.TotalCostDelta = interest
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"deferring %d months capitalizes %s of interest into the balance",
			opts.Months, interest.StringFixed(2)))
	}
	r.NewMonthlyPayment = MonthlyAnnuityPayment(balance, e.contract.MonthlyRate, e.remaining)
	r.NewTerm = e.contract.OriginalTerm + opts.Months
	return r
}

func (e *scenarioEvaluator) reschedule(opts domain.RescheduleOptions) domain.ProtectionScenarioResult {
	r := e.result(domain.PolicyReschedule)
	term := e.remaining + opts.ExtraMonths
	payment := MonthlyAnnuityPayment(e.balance, e.contract.MonthlyRate, term)
	r.NewMonthlyPayment = payment
	r.NewTerm = e.contract.OriginalTerm + opts.ExtraMonths
	r.TotalCostDelta = payment.Mul(decimal.NewFromInt(int64(term))).Sub(e.originalRemainingCost())
	if opts.ExtraMonths > RescheduleWarningMonths {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"term extension of %d months exceeds the %d-month guideline",
			opts.ExtraMonths, RescheduleWarningMonths))
	}
	return r
}

// stepDown runs the reduced-payment months one at a time, then re-amortizes what is left.
// When no term remains after the relief period the reduced payment is returned as-is.
func (e *scenarioEvaluator) stepDown(opts domain.StepDownOptions) domain.ProtectionScenarioResult {
	r := e.result(domain.PolicyStepDown)
	rate := e.contract.MonthlyRate
	reduced := e.contract.OriginalPayment.Mul(one.Sub(opts.Reduction))

	balance := e.balance
	for m := 0; m < opts.Months; m++ {
		interest := balance.Mul(rate)
		balance = balance.Sub(reduced.Sub(interest))
		if balance.IsNegative() {
			balance = decimal.Zero
		}
	}

	r.NewTerm = e.contract.OriginalTerm
	left := e.remaining - opts.Months
	if left <= 0 {
		r.NewMonthlyPayment = reduced
		return r
	}

	payment := MonthlyAnnuityPayment(balance, rate, left)
	r.NewMonthlyPayment = payment
	total := reduced.Mul(decimal.NewFromInt(int64(opts.Months))).Add(payment.Mul(decimal.NewFromInt(int64(left))))
	r.TotalCostDelta = total.Sub(e.originalRemainingCost())

	limit := e.contract.OriginalPayment.Mul(stepDownPaymentCap)
	if payment.GreaterThan(limit) {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"payment after step-down (%s) exceeds 120%% of the original payment (%s)",
			payment.StringFixed(2), e.contract.OriginalPayment.StringFixed(2)))
	}
	return r
}

// collectiveRescue is a fixed stub; the real decision belongs to the collective fund
func (e *scenarioEvaluator) collectiveRescue(domain.CollectiveRescueOptions) domain.ProtectionScenarioResult {
	r := e.result(domain.PolicyCollectiveRescue)
	r.NewMonthlyPayment = e.contract.OriginalPayment
	r.NewTerm = e.contract.OriginalTerm
	r.TotalCostDelta = e.balance.Mul(rescueFundCoverage).Neg()
	r.RateAcceptable = true
	r.Warnings = append(r.Warnings, "collective rescue is subject to approval by the collective fund")
	return r
}
