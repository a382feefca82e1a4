package domain

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarket(t *testing.T) {
	assert.True(t, MarketMX.Valid())
	assert.True(t, MarketUS.Valid())
	assert.False(t, Market("br").Valid())
	assert.False(t, Market("").Valid())

	assert.Equal(t, "es-MX", MarketMX.Locale())
	assert.Equal(t, "en-US", MarketUS.Locale())
}

func TestProductPackage(t *testing.T) {
	p := ProductPackage{
		ID:                "sedan",
		Market:            MarketMX,
		Price:             decimal.NewFromInt(300000),
		AnnualRate:        decimal.NewFromFloat(0.12),
		TermMonths:        48,
		MinDownPaymentPct: decimal.NewFromFloat(0.15),
	}

	assert.True(t, p.RequiredDownPayment().Equal(decimal.NewFromInt(45000)))
	assert.True(t, p.FinancedPrincipal().Equal(decimal.NewFromInt(255000)))
	assert.Equal(t, "sedan (mx, 300000.00 over 48 months)", p.String())
}

func TestMemberStatus(t *testing.T) {
	tests := []struct {
		status    MemberStatus
		valid     bool
		queueable bool
	}{
		{StatusActive, true, true},
		{StatusFrozen, true, true},
		{StatusLeft, true, false},
		{StatusDelivered, true, false},
		{MemberStatus("paused"), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.status.Valid())
			assert.Equal(t, tt.queueable, tt.status.Queueable())
		})
	}
}

func TestGroup_Clone(t *testing.T) {
	original := Group{
		Name:      "Ruta Norte",
		Market:    MarketMX,
		StartDate: civil.Date{Year: 2025, Month: 1, Day: 1},
		Members: []Member{
			{ID: "A", Priority: 1, Status: StatusActive, BaseContribution: decimal.NewFromInt(5000)},
			{ID: "B", Priority: 2, Status: StatusActive, BaseContribution: decimal.NewFromInt(5000)},
		},
	}

	clone := original.Clone()
	clone.Members[0].Status = StatusDelivered
	clone.Members = append(clone.Members, Member{ID: "C"})

	assert.Equal(t, StatusActive, original.Members[0].Status)
	assert.Len(t, original.Members, 2)
	assert.Equal(t, original.StartDate, clone.StartDate)
}

func TestSimulationResult_Helpers(t *testing.T) {
	res := &SimulationResult{
		Months: []MonthState{
			{Month: 1, DebtDue: decimal.Zero, Savings: decimal.NewFromInt(6000), Risk: RiskOK},
			{Month: 2, DebtDue: decimal.NewFromInt(900), Savings: decimal.NewFromInt(1000), Awards: []Award{{MemberID: "A", Month: 2}}, Risk: RiskOK},
			{Month: 3, DebtDue: decimal.NewFromInt(1800), Savings: decimal.NewFromInt(400), Risk: RiskDebtDeficit},
			{Month: 4, DebtDue: decimal.NewFromInt(1800), Savings: decimal.NewFromInt(700), Risk: RiskDebtDeficit},
		},
	}

	assert.Equal(t, 2, res.FirstAwardMonth())
	assert.Equal(t, 2, res.DeficitMonths())
	assert.True(t, res.FinalSavings().Equal(decimal.NewFromInt(700)))
	assert.True(t, res.PeakDebtDue().Equal(decimal.NewFromInt(1800)))
}

func TestSimulationResult_Empty(t *testing.T) {
	res := &SimulationResult{}

	assert.Equal(t, 0, res.FirstAwardMonth())
	assert.Equal(t, 0, res.DeficitMonths())
	assert.True(t, res.FinalSavings().IsZero())
	assert.True(t, res.PeakDebtDue().IsZero())
}

func TestContratoBase_RemainingTerm(t *testing.T) {
	c := ContratoBase{OriginalTerm: 48, PaymentsMade: 12}
	assert.Equal(t, 36, c.RemainingTerm())
}

func TestRestructuringResult_Scenario(t *testing.T) {
	res := &RestructuringResult{}
	for i, p := range Policies {
		res.Scenarios[i] = ProtectionScenarioResult{Policy: p, NewTerm: 40 + i}
	}

	s, ok := res.Scenario(PolicyStepDown)
	require.True(t, ok)
	assert.Equal(t, 42, s.NewTerm)

	_, ok = res.Scenario(ScenarioPolicy("forgiveness"))
	assert.False(t, ok)
}

func TestConfiguration_Lookups(t *testing.T) {
	cfg := &Configuration{
		Products:  []ProductPackage{{ID: "sedan"}},
		Groups:    []GroupConfig{{Name: "Ruta Norte"}},
		Contracts: []ContratoBase{{ID: "CT-001"}},
	}

	_, ok := cfg.Product("sedan")
	assert.True(t, ok)
	_, ok = cfg.Product("truck")
	assert.False(t, ok)

	g, ok := cfg.Group("Ruta Norte")
	require.True(t, ok)
	g.HorizonMonths = 24
	assert.Equal(t, 24, cfg.Groups[0].HorizonMonths, "Group returns a pointer into the configuration")
	_, ok = cfg.Group("Nowhere")
	assert.False(t, ok)

	_, ok = cfg.Contract("CT-001")
	assert.True(t, ok)
	_, ok = cfg.Contract("CT-999")
	assert.False(t, ok)
}
