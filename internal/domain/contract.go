package domain

import (
	"github.com/shopspring/decimal"
)

// ContratoBase is a snapshot of one active amortized loan.
// OutstandingBalance is advisory; the restructuring engine recomputes it.
type ContratoBase struct {
	ID                 string          `yaml:"id" json:"id"`
	OriginalPrincipal  decimal.Decimal `yaml:"p0" json:"p0"`
	MonthlyRate        decimal.Decimal `yaml:"r" json:"r"`
	OriginalTerm       int             `yaml:"n" json:"n"`
	OriginalPayment    decimal.Decimal `yaml:"m0" json:"m0"`
	PaymentsMade       int             `yaml:"k" json:"k"`
	OutstandingBalance decimal.Decimal `yaml:"bk,omitempty" json:"bk"`
}

// RemainingTerm is the number of scheduled payments not yet made
func (c ContratoBase) RemainingTerm() int {
	return c.OriginalTerm - c.PaymentsMade
}

// DeferralOptions configures payment deferral (diferimiento)
type DeferralOptions struct {
	Months             int  `yaml:"months" json:"months"`
	CapitalizeInterest bool `yaml:"capitalize_interest" json:"capitalizeInterest"`
}

// RescheduleOptions configures term extension (recalendarizacion)
type RescheduleOptions struct {
	ExtraMonths int `yaml:"extra_months" json:"extraMonths"`
}

// StepDownOptions configures a temporary payment reduction
type StepDownOptions struct {
	Months    int             `yaml:"months" json:"months"`
	Reduction decimal.Decimal `yaml:"reduction" json:"reduction"`
}

// CollectiveRescueOptions only records that a fund rescue was requested
type CollectiveRescueOptions struct {
	Requested bool `yaml:"requested" json:"requested"`
}

// ProtectionOptions holds one configuration per restructuring policy
type ProtectionOptions struct {
	Deferral         DeferralOptions         `yaml:"deferral" json:"deferral"`
	Reschedule       RescheduleOptions       `yaml:"reschedule" json:"reschedule"`
	StepDown         StepDownOptions         `yaml:"step_down" json:"stepDown"`
	CollectiveRescue CollectiveRescueOptions `yaml:"collective_rescue" json:"collectiveRescue"`
}

// ScenarioPolicy tags a restructuring strategy
type ScenarioPolicy string

const (
	PolicyDeferral         ScenarioPolicy = "deferral"
	PolicyReschedule       ScenarioPolicy = "reschedule"
	PolicyStepDown         ScenarioPolicy = "step_down"
	PolicyCollectiveRescue ScenarioPolicy = "collective_rescue"
)

// Policies lists every policy in evaluation order
var Policies = []ScenarioPolicy{PolicyDeferral, PolicyReschedule, PolicyStepDown, PolicyCollectiveRescue}

// ProtectionScenarioResult is the outcome of evaluating one policy
type ProtectionScenarioResult struct {
	Policy              ScenarioPolicy  `json:"policy"`
	NewMonthlyPayment   decimal.Decimal `json:"newMonthlyPayment"`
	NewTerm             int             `json:"newTerm"`
	TotalCostDelta      decimal.Decimal `json:"totalCostDelta"` // negative is cheaper for the borrower
	EffectiveAnnualRate decimal.Decimal `json:"effectiveAnnualRate"`
	RateAcceptable      bool            `json:"rateAcceptable"`
	Warnings            []string        `json:"warnings"`
}

// RestructuringResult groups the four scenario outcomes for one contract
type RestructuringResult struct {
	ContractID         string                      `json:"contractId"`
	OutstandingBalance decimal.Decimal             `json:"outstandingBalance"`
	OriginalPayment    decimal.Decimal             `json:"originalPayment"`
	RemainingTerm      int                         `json:"remainingTerm"`
	Scenarios          [4]ProtectionScenarioResult `json:"scenarios"`
}

// Scenario returns the result for policy p
func (r *RestructuringResult) Scenario(p ScenarioPolicy) (ProtectionScenarioResult, bool) {
	for _, s := range r.Scenarios {
		if s.Policy == p {
			return s, true
		}
	}
	return ProtectionScenarioResult{}, false
}
