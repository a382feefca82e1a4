package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Market identifies the jurisdiction a product package is offered in
type Market string

const (
	MarketMX Market = "mx"
	MarketUS Market = "us"
)

// Valid reports whether the market is one of the supported jurisdictions
func (m Market) Valid() bool {
	return m == MarketMX || m == MarketUS
}

// Locale returns the BCP 47 tag used when rendering amounts for this market
func (m Market) Locale() string {
	switch m {
	case MarketUS:
		return "en-US"
	default:
		return "es-MX"
	}
}

// ProductPackage is a financing offer for one vehicle unit
type ProductPackage struct {
	ID                string          `yaml:"id" json:"id"`
	Market            Market          `yaml:"market" json:"market"`
	Price             decimal.Decimal `yaml:"price" json:"price"`
	AnnualRate        decimal.Decimal `yaml:"annual_rate" json:"annualRate"`
	TermMonths        int             `yaml:"term_months" json:"termMonths"`
	MinDownPaymentPct decimal.Decimal `yaml:"min_down_payment_pct" json:"minDownPaymentPct"`
}

// RequiredDownPayment is the savings needed before a unit can be awarded (enganche)
func (p ProductPackage) RequiredDownPayment() decimal.Decimal {
	return p.Price.Mul(p.MinDownPaymentPct)
}

// FinancedPrincipal is the loan amount left after the down payment
func (p ProductPackage) FinancedPrincipal() decimal.Decimal {
	return p.Price.Sub(p.RequiredDownPayment())
}

func (p ProductPackage) String() string {
	return fmt.Sprintf("%s (%s, %s over %d months)", p.ID, p.Market, p.Price.StringFixed(2), p.TermMonths)
}
