package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ReportOptions tunes how a statement becomes a report.
type ReportOptions struct {
	// Year is the tax year. Zero selects the year of the latest buy trade.
	Year int
}

// Report is the acquisition-cost summary of one statement.
// It is computed per request and never stored.
type Report struct {
	ID              string
	Year            int
	ForeignCurrency string
	LocalCurrency   string
	Holdings        []*Holding
	TradeCount      int
	GeneratedAt     time.Time
}

// TotalCostForeign sums the foreign acquisition cost of every holding.
func (r *Report) TotalCostForeign() decimal.Decimal {
	total := decimal.Zero
	for _, h := range r.Holdings {
		total = total.Add(h.TotalCostForeign())
	}
	return total
}

// TotalCostLocal sums the local acquisition cost of every holding.
func (r *Report) TotalCostLocal() decimal.Decimal {
	total := decimal.Zero
	for _, h := range r.Holdings {
		total = total.Add(h.TotalCostLocal())
	}
	return total
}

// IsEmpty reports whether the statement contained no buy trade for the year.
func (r *Report) IsEmpty() bool { return len(r.Holdings) == 0 }

func (r *Report) MarshalJSON() ([]byte, error) {
	holdings := r.Holdings
	if holdings == nil {
		holdings = []*Holding{}
	}
	return json.Marshal(struct {
		ID               string     `json:"id"`
		Year             int        `json:"year"`
		ForeignCurrency  string     `json:"foreign_currency"`
		LocalCurrency    string     `json:"local_currency"`
		TradeCount       int        `json:"trade_count"`
		TotalCostForeign string     `json:"total_cost_foreign"`
		TotalCostLocal   string     `json:"total_cost_local"`
		GeneratedAt      time.Time  `json:"generated_at"`
		Holdings         []*Holding `json:"holdings"`
	}{
		ID:               r.ID,
		Year:             r.Year,
		ForeignCurrency:  r.ForeignCurrency,
		LocalCurrency:    r.LocalCurrency,
		TradeCount:       r.TradeCount,
		TotalCostForeign: RoundDisplay(r.TotalCostForeign()).StringFixed(DisplayPlaces),
		TotalCostLocal:   RoundDisplay(r.TotalCostLocal()).StringFixed(DisplayPlaces),
		GeneratedAt:      r.GeneratedAt,
		Holdings:         holdings,
	})
}
