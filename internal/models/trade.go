package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tropicaldog17/irpf/internal/errors"
)

// Trade is one validated buy execution in the foreign currency.
type Trade struct {
	Symbol     string          `json:"symbol"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Commission decimal.Decimal `json:"commission"`
	Currency   string          `json:"currency"`
	TradeDate  time.Time       `json:"trade_date"`
}

// NormalizeSymbol trims and upper-cases an instrument symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// NewTrade validates a buy record and builds the Trade it describes.
// currency is the single foreign currency supported by the report.
func NewTrade(r StatementRecord, currency string) (Trade, error) {
	malformed := func(reason string) error {
		return &errors.ErrMalformedInput{Row: r.Row, Reason: reason}
	}

	if r.ParseError != "" {
		return Trade{}, malformed(r.ParseError)
	}
	symbol := NormalizeSymbol(r.Symbol)
	if symbol == "" {
		return Trade{}, malformed("symbol is required")
	}
	if !r.Quantity.IsPositive() {
		return Trade{}, malformed("quantity must be positive for " + symbol)
	}
	if !r.UnitPrice.IsPositive() {
		return Trade{}, malformed("price must be positive for " + symbol)
	}
	if r.TradeDate.IsZero() {
		return Trade{}, malformed("trade date is required for " + symbol)
	}
	if cur := strings.ToUpper(strings.TrimSpace(r.Currency)); cur != "" && cur != strings.ToUpper(currency) {
		return Trade{}, malformed("unsupported currency " + cur + " for " + symbol + ", want " + currency)
	}

	return Trade{
		Symbol:     symbol,
		Quantity:   r.Quantity,
		UnitPrice:  r.UnitPrice,
		Commission: r.Commission.Abs(),
		Currency:   strings.ToUpper(currency),
		TradeDate:  DateOnly(r.TradeDate),
	}, nil
}

// Validate checks the amounts a Trade built outside NewTrade must satisfy
// before it can be aggregated.
func (t Trade) Validate() error {
	if !t.Quantity.IsPositive() {
		return &errors.ErrMalformedInput{Reason: "quantity must be positive for " + t.Symbol}
	}
	if !t.UnitPrice.IsPositive() {
		return &errors.ErrMalformedInput{Reason: "price must be positive for " + t.Symbol}
	}
	return nil
}

// CostForeign is the acquisition cost in the foreign currency (quantity * price).
func (t Trade) CostForeign() decimal.Decimal {
	return t.Quantity.Mul(t.UnitPrice)
}

func (t Trade) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Symbol     string `json:"symbol"`
		Quantity   string `json:"quantity"`
		UnitPrice  string `json:"unit_price"`
		Commission string `json:"commission"`
		Currency   string `json:"currency"`
		TradeDate  string `json:"trade_date"`
	}{
		Symbol:     t.Symbol,
		Quantity:   t.Quantity.String(),
		UnitPrice:  t.UnitPrice.String(),
		Commission: t.Commission.String(),
		Currency:   t.Currency,
		TradeDate:  t.TradeDate.Format(DateFormat),
	})
}

// FilterUntil returns the trades dated on or before end, in order.
func FilterUntil(trades []Trade, end time.Time) []Trade {
	end = DateOnly(end)
	out := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if !t.TradeDate.After(end) {
			out = append(out, t)
		}
	}
	return out
}

// LatestYear returns the year of the most recent trade, or 0 when there are none.
func LatestYear(trades []Trade) int {
	year := 0
	for _, t := range trades {
		if t.TradeDate.Year() > year {
			year = t.TradeDate.Year()
		}
	}
	return year
}
