// Package report renders acquisition-cost reports as Markdown, HTML and
// terminal text.
package report

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/tropicaldog17/irpf/internal/models"
)

// Display formatters. BRL follows the Brazilian convention used on the
// declaration ("R$ 1.234,56"); USD is prefixed to stay unambiguous next to it.
var (
	brlFormatter = money.NewFormatter(fraction(models.CurrencyBRL), ",", ".", "R$", "$ 1")
	usdFormatter = money.NewFormatter(fraction(models.CurrencyUSD), ".", ",", "US$", "$1")
)

func fraction(code string) int {
	if cur := money.GetCurrency(code); cur != nil {
		return cur.Fraction
	}
	return models.DisplayPlaces
}

// minorUnits rounds half-up to the display precision and returns the amount
// in cents.
func minorUnits(d decimal.Decimal) int64 {
	return models.RoundDisplay(d).Shift(models.DisplayPlaces).IntPart()
}

// FormatBRL renders d as "R$ 1.234,56".
func FormatBRL(d decimal.Decimal) string {
	return brlFormatter.Format(minorUnits(d))
}

// FormatUSD renders d as "US$1,234.56".
func FormatUSD(d decimal.Decimal) string {
	return usdFormatter.Format(minorUnits(d))
}

// FormatQuantity trims trailing zeros, keeping fractional shares readable.
func FormatQuantity(d decimal.Decimal) string {
	return d.String()
}

// FormatRate renders a PTAX quote with its published four decimals.
func FormatRate(d decimal.Decimal) string {
	return d.StringFixed(4)
}
