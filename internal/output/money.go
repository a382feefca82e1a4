package output

import (
	"github.com/rgehrsitz/tanda/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatCurrency renders an amount with the market's digit grouping.
// Mexican amounts carry an MXN suffix since both markets use the $ sign.
func FormatCurrency(amount decimal.Decimal, market domain.Market) string {
	p := message.NewPrinter(language.MustParse(market.Locale()))
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}
	s := sign + "$" + p.Sprintf("%.2f", amount.Round(2).InexactFloat64())
	if market == domain.MarketMX {
		s += " MXN"
	}
	return s
}

// FormatPercentage renders a fraction (0.24) as a percentage (24.00%)
func FormatPercentage(fraction decimal.Decimal) string {
	return fraction.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}
