package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAnnuityPayment(t *testing.T) {
	tests := []struct {
		name       string
		principal  float64
		annualRate float64
		term       int
		expected   float64
		tolerance  float64
	}{
		{"2% monthly over a year", 100000, 0.24, 12, 9456.29, 0.5},
		{"mortgage 200k at 4% for 25 years", 200000, 0.04, 300, 1055.67, 0.01},
		{"vehicle 255k at 12% for 48 months", 255000, 0.12, 48, 6715.13, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnnuityPayment(decimal.NewFromFloat(tt.principal), decimal.NewFromFloat(tt.annualRate), tt.term)
			assert.InDelta(t, tt.expected, got.InexactFloat64(), tt.tolerance)
		})
	}
}

func TestAnnuityPayment_ZeroRateIsStraightLine(t *testing.T) {
	principal := decimal.NewFromInt(100000)

	got := AnnuityPayment(principal, decimal.Zero, 12)

	assert.True(t, got.Equal(principal.Div(decimal.NewFromInt(12))), "got %s", got)
}

func TestMonthlyAnnuityPayment_MatchesAnnualForm(t *testing.T) {
	principal := decimal.NewFromInt(50000)

	annual := AnnuityPayment(principal, decimal.NewFromFloat(0.24), 36)
	monthly := MonthlyAnnuityPayment(principal, decimal.NewFromFloat(0.02), 36)

	assert.True(t, annual.Equal(monthly))
}

func TestOutstandingBalance_NoPayments(t *testing.T) {
	principal := decimal.NewFromInt(200000)

	got := OutstandingBalance(principal, decimal.NewFromFloat(0.02), 48, 0)

	assert.True(t, got.Equal(principal))
}

func TestOutstandingBalance_MatchesIterativeSchedule(t *testing.T) {
	principal := decimal.NewFromInt(100000)
	rate := decimal.NewFromFloat(0.01)
	payment := MonthlyAnnuityPayment(principal, rate, 24)

	balance := principal
	for k := 1; k <= 10; k++ {
		balance = balance.Mul(one.Add(rate)).Sub(payment)
		closed := OutstandingBalance(principal, rate, 24, k)
		assert.InDelta(t, balance.InexactFloat64(), closed.InexactFloat64(), 1e-6, "after %d payments", k)
	}
}

func TestOutstandingBalance_FullyPaid(t *testing.T) {
	got := OutstandingBalance(decimal.NewFromInt(200000), decimal.NewFromFloat(0.02), 48, 48)

	assert.InDelta(t, 0, got.InexactFloat64(), 0.01)
	assert.False(t, got.IsNegative())
}

func TestOutstandingBalance_ZeroRate(t *testing.T) {
	got := OutstandingBalance(decimal.NewFromInt(1200), decimal.Zero, 12, 3)

	assert.True(t, got.Equal(decimal.NewFromInt(900)), "got %s", got)
}
