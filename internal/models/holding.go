package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// DisplayPlaces is the number of decimal places used when presenting amounts.
const DisplayPlaces = 2

// RoundDisplay rounds a value half-up to DisplayPlaces for presentation only.
func RoundDisplay(d decimal.Decimal) decimal.Decimal {
	return d.Round(DisplayPlaces)
}

// TradeWithRate is a trade annotated with the rate observation used to convert it.
type TradeWithRate struct {
	Trade Trade           `json:"trade"`
	Rate  RateObservation `json:"rate"`
}

// CostLocal is the acquisition cost in local currency (quantity * price * rate).
func (t TradeWithRate) CostLocal() decimal.Decimal {
	return t.Rate.Convert(t.Trade.CostForeign())
}

// CommissionLocal is the trade commission converted with the same rate.
func (t TradeWithRate) CommissionLocal() decimal.Decimal {
	return t.Rate.Convert(t.Trade.Commission)
}

// FellBack reports whether the rate was taken from an earlier day than the trade.
func (t TradeWithRate) FellBack() bool {
	return !t.Rate.Date.Equal(t.Trade.TradeDate)
}

func (t TradeWithRate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Trade       Trade           `json:"trade"`
		Rate        RateObservation `json:"rate"`
		CostForeign string          `json:"cost_foreign"`
		CostLocal   string          `json:"cost_local"`
		FellBack    bool            `json:"fell_back"`
	}{
		Trade:       t.Trade,
		Rate:        t.Rate,
		CostForeign: t.Trade.CostForeign().String(),
		CostLocal:   t.CostLocal().String(),
		FellBack:    t.FellBack(),
	})
}

// Holding is the aggregated position in one instrument.
//
// Totals only change through Add, and averages are always derived from the
// totals, so a Holding never disagrees with its constituent trades.
type Holding struct {
	Symbol      string
	Description string

	trades            []TradeWithRate
	quantity          decimal.Decimal
	costForeign       decimal.Decimal
	costLocal         decimal.Decimal
	commissionForeign decimal.Decimal
	commissionLocal   decimal.Decimal
}

// NewHolding starts a holding from its first trade. Trades with a
// non-positive quantity or price are rejected, so TotalQuantity is always
// positive.
func NewHolding(first TradeWithRate) (*Holding, error) {
	if err := first.Trade.Validate(); err != nil {
		return nil, err
	}
	h := &Holding{Symbol: first.Trade.Symbol, Description: first.Trade.Symbol}
	h.accumulate(first)
	return h, nil
}

// Add merges another trade of the same instrument.
func (h *Holding) Add(t TradeWithRate) error {
	if t.Trade.Symbol != h.Symbol {
		return fmt.Errorf("cannot add %s trade to %s holding", t.Trade.Symbol, h.Symbol)
	}
	if err := t.Trade.Validate(); err != nil {
		return err
	}
	h.accumulate(t)
	return nil
}

func (h *Holding) accumulate(t TradeWithRate) {
	h.trades = append(h.trades, t)
	h.quantity = h.quantity.Add(t.Trade.Quantity)
	h.costForeign = h.costForeign.Add(t.Trade.CostForeign())
	h.costLocal = h.costLocal.Add(t.CostLocal())
	h.commissionForeign = h.commissionForeign.Add(t.Trade.Commission)
	h.commissionLocal = h.commissionLocal.Add(t.CommissionLocal())
}

// Trades returns the constituent trades in statement order.
func (h *Holding) Trades() []TradeWithRate {
	out := make([]TradeWithRate, len(h.trades))
	copy(out, h.trades)
	return out
}

func (h *Holding) TotalQuantity() decimal.Decimal          { return h.quantity }
func (h *Holding) TotalCostForeign() decimal.Decimal       { return h.costForeign }
func (h *Holding) TotalCostLocal() decimal.Decimal         { return h.costLocal }
func (h *Holding) TotalCommissionForeign() decimal.Decimal { return h.commissionForeign }
func (h *Holding) TotalCommissionLocal() decimal.Decimal   { return h.commissionLocal }

// AverageCostForeign is TotalCostForeign / TotalQuantity at full precision.
func (h *Holding) AverageCostForeign() decimal.Decimal {
	return h.costForeign.Div(h.quantity)
}

// AverageCostLocal is TotalCostLocal / TotalQuantity at full precision.
func (h *Holding) AverageCostLocal() decimal.Decimal {
	return h.costLocal.Div(h.quantity)
}

type holdingAmounts struct {
	TotalCostForeign   string `json:"total_cost_foreign"`
	TotalCostLocal     string `json:"total_cost_local"`
	AverageCostForeign string `json:"average_cost_foreign"`
	AverageCostLocal   string `json:"average_cost_local"`
	CommissionForeign  string `json:"commission_foreign"`
	CommissionLocal    string `json:"commission_local"`
}

func (h *Holding) MarshalJSON() ([]byte, error) {
	exact := holdingAmounts{
		TotalCostForeign:   h.TotalCostForeign().String(),
		TotalCostLocal:     h.TotalCostLocal().String(),
		AverageCostForeign: h.AverageCostForeign().String(),
		AverageCostLocal:   h.AverageCostLocal().String(),
		CommissionForeign:  h.TotalCommissionForeign().String(),
		CommissionLocal:    h.TotalCommissionLocal().String(),
	}
	display := holdingAmounts{
		TotalCostForeign:   h.TotalCostForeign().StringFixed(DisplayPlaces),
		TotalCostLocal:     h.TotalCostLocal().StringFixed(DisplayPlaces),
		AverageCostForeign: h.AverageCostForeign().StringFixed(DisplayPlaces),
		AverageCostLocal:   h.AverageCostLocal().StringFixed(DisplayPlaces),
		CommissionForeign:  h.TotalCommissionForeign().StringFixed(DisplayPlaces),
		CommissionLocal:    h.TotalCommissionLocal().StringFixed(DisplayPlaces),
	}
	return json.Marshal(struct {
		Symbol        string          `json:"symbol"`
		Description   string          `json:"description"`
		TotalQuantity string          `json:"total_quantity"`
		Exact         holdingAmounts  `json:"exact"`
		Display       holdingAmounts  `json:"display"`
		Trades        []TradeWithRate `json:"trades"`
	}{
		Symbol:        h.Symbol,
		Description:   h.Description,
		TotalQuantity: h.TotalQuantity().String(),
		Exact:         exact,
		Display:       display,
		Trades:        h.trades,
	})
}
