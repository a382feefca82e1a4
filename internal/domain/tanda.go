package domain

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// MemberStatus is the lifecycle state of a tanda member
type MemberStatus string

const (
	StatusActive    MemberStatus = "active"
	StatusFrozen    MemberStatus = "frozen"
	StatusLeft      MemberStatus = "left"
	StatusDelivered MemberStatus = "delivered"
)

// Valid reports whether s is a known status
func (s MemberStatus) Valid() bool {
	switch s {
	case StatusActive, StatusFrozen, StatusLeft, StatusDelivered:
		return true
	}
	return false
}

// Queueable reports whether a member with this status waits for a unit
func (s MemberStatus) Queueable() bool {
	return s == StatusActive || s == StatusFrozen
}

// Member is a participant in a tanda. Lower Priority is served first.
type Member struct {
	ID               string          `yaml:"id" json:"id"`
	Name             string          `yaml:"name" json:"name"`
	Priority         int             `yaml:"priority" json:"priority"`
	Status           MemberStatus    `yaml:"status" json:"status"`
	BaseContribution decimal.Decimal `yaml:"base_contribution" json:"baseContribution"`
}

// Group is a named set of members bound to one product package
type Group struct {
	Name      string
	Market    Market
	Package   ProductPackage
	Members   []Member
	StartDate civil.Date
}

// Clone returns a copy of the group that shares no mutable state with g
func (g Group) Clone() Group {
	c := g
	c.Members = append([]Member(nil), g.Members...)
	return c
}

// Award records a member receiving a financed unit
type Award struct {
	MemberID           string          `json:"memberId"`
	Month              int             `json:"month"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	DownPayment        decimal.Decimal `json:"downPayment"`
	RemainingPrincipal decimal.Decimal `json:"remainingPrincipal"`
	MonthlyDebtService decimal.Decimal `json:"monthlyDebtService"`
}

// RiskFlag marks months where contributions do not cover debt service
type RiskFlag string

const (
	RiskOK          RiskFlag = "ok"
	RiskDebtDeficit RiskFlag = "debtDeficit"
)

// MonthState is the snapshot of one simulated month
type MonthState struct {
	Month   int             `json:"month"`
	Date    civil.Date      `json:"date"`
	Inflow  decimal.Decimal `json:"inflow"`
	DebtDue decimal.Decimal `json:"debtDue"`
	Surplus decimal.Decimal `json:"surplus"`
	Savings decimal.Decimal `json:"savings"`
	Awards  []Award         `json:"awards"`
	Risk    RiskFlag        `json:"risk"`
}

// SimulationResult is the full output of a tanda simulation run
type SimulationResult struct {
	GroupName string           `json:"groupName"`
	Market    Market           `json:"market"`
	Months    []MonthState     `json:"months"`
	Awards    map[string]Award `json:"awards"`
	Unawarded []string         `json:"unawarded"`
}

// FirstAwardMonth returns the month of the first award, or 0 when nobody was awarded
func (r *SimulationResult) FirstAwardMonth() int {
	for _, m := range r.Months {
		if len(m.Awards) > 0 {
			return m.Month
		}
	}
	return 0
}

// DeficitMonths counts months flagged with a debt deficit
func (r *SimulationResult) DeficitMonths() int {
	n := 0
	for _, m := range r.Months {
		if m.Risk == RiskDebtDeficit {
			n++
		}
	}
	return n
}

// FinalSavings is the savings balance after the last simulated month
func (r *SimulationResult) FinalSavings() decimal.Decimal {
	if len(r.Months) == 0 {
		return decimal.Zero
	}
	return r.Months[len(r.Months)-1].Savings
}

// PeakDebtDue is the largest monthly debt service seen during the run
func (r *SimulationResult) PeakDebtDue() decimal.Decimal {
	peak := decimal.Zero
	for _, m := range r.Months {
		if m.DebtDue.GreaterThan(peak) {
			peak = m.DebtDue
		}
	}
	return peak
}

// TandaRun bundles everything the simulator needs for one group
type TandaRun struct {
	Group         Group
	HorizonMonths int
	Events        []SimulationEvent
}
