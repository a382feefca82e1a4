package calculation

import (
	"github.com/shopspring/decimal"
)

var (
	one           = decimal.NewFromInt(1)
	monthsPerYear = decimal.NewFromInt(12)
)

// AnnuityPayment returns the fixed monthly payment that amortizes principal over
// termMonths at annualRate/12 per month. A zero rate degrades to principal/termMonths.
// Inputs are not validated: termMonths must be positive.
func AnnuityPayment(principal, annualRate decimal.Decimal, termMonths int) decimal.Decimal {
	return MonthlyAnnuityPayment(principal, annualRate.Div(monthsPerYear), termMonths)
}

// MonthlyAnnuityPayment is AnnuityPayment for a rate that is already monthly
func MonthlyAnnuityPayment(principal, monthlyRate decimal.Decimal, termMonths int) decimal.Decimal {
	n := decimal.NewFromInt(int64(termMonths))
	if monthlyRate.IsZero() {
		return principal.Div(n)
	}
	growth := compound(monthlyRate, termMonths)
	return principal.Mul(monthlyRate).Mul(growth).Div(growth.Sub(one))
}

// OutstandingBalance projects the balance left after paymentsMade payments of the
// original annuity schedule, in closed form.
func OutstandingBalance(principal, monthlyRate decimal.Decimal, originalTerm, paymentsMade int) decimal.Decimal {
	if paymentsMade == 0 {
		return principal
	}
	payment := MonthlyAnnuityPayment(principal, monthlyRate, originalTerm)

	var balance decimal.Decimal
	if monthlyRate.IsZero() {
		balance = principal.Sub(payment.Mul(decimal.NewFromInt(int64(paymentsMade))))
	} else {
		growth := compound(monthlyRate, paymentsMade)
		balance = principal.Mul(growth).Sub(payment.Mul(growth.Sub(one)).Div(monthlyRate))
	}
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

// compound returns (1+rate)^periods
func compound(rate decimal.Decimal, periods int) decimal.Decimal {
	return one.Add(rate).Pow(decimal.NewFromInt(int64(periods)))
}
