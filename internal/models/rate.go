package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RateObservation is one published daily reference exchange rate.
//
// Rate is always expressed as local currency units per one foreign currency
// unit. For the PTAX sell series this is BRL per USD, so a local amount is
// obtained with quantity * unitPrice * Rate.
type RateObservation struct {
	Series string          `json:"series"`
	Date   time.Time       `json:"date"`
	Rate   decimal.Decimal `json:"rate"`
	Source string          `json:"source"`
}

// Rate series and sources
const (
	SeriesPTAXSell = "ptax-sell"

	RateSourceBCB   = "bcb-sgs"
	RateSourceCache = "cache"
)

// SGSSeries names the observations of an SGS series code. Code 1 is the PTAX
// sell rate; other codes are labelled by number so their cached rates never
// mix with PTAX.
func SGSSeries(code int) string {
	if code == 1 {
		return SeriesPTAXSell
	}
	return fmt.Sprintf("sgs-%d", code)
}

// Currencies handled by the report
const (
	CurrencyUSD = "USD"
	CurrencyBRL = "BRL"
)

// Validate validates the observation data
func (o *RateObservation) Validate() error {
	if o.Series == "" {
		return errors.New("series is required")
	}
	if o.Date.IsZero() {
		return errors.New("date is required")
	}
	if o.Rate.IsZero() || o.Rate.IsNegative() {
		return errors.New("rate must be positive")
	}
	return nil
}

// Convert converts a foreign currency amount into local currency.
func (o RateObservation) Convert(foreign decimal.Decimal) decimal.Decimal {
	return foreign.Mul(o.Rate)
}

// GetInverseRate returns the foreign units per one local unit (1/rate).
func (o RateObservation) GetInverseRate() decimal.Decimal {
	if o.Rate.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromInt(1).Div(o.Rate)
}

func (o RateObservation) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Series string `json:"series"`
		Date   string `json:"date"`
		Rate   string `json:"rate"`
		Source string `json:"source"`
	}{
		Series: o.Series,
		Date:   o.Date.Format(DateFormat),
		Rate:   o.Rate.String(),
		Source: o.Source,
	})
}
