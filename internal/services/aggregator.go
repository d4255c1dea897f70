package services

import (
	"time"

	"github.com/tropicaldog17/irpf/internal/models"
)

// Aggregate groups buy trades into one holding per instrument.
//
// Holdings are returned in the order their symbol first appears in trades.
// Each trade is converted with the rate resolved for its date; lookups are
// memoized per date for the duration of the call. A trade with a non-positive
// quantity or price is rejected with ErrMalformedInput. The first failure
// aborts the aggregation and no partial result is returned.
func Aggregate(trades []models.Trade, resolver RateResolver) ([]*models.Holding, error) {
	holdings := make([]*models.Holding, 0)
	bySymbol := make(map[string]*models.Holding)
	resolved := make(map[time.Time]models.RateObservation)

	for _, trade := range trades {
		trade.Symbol = models.NormalizeSymbol(trade.Symbol)
		trade.TradeDate = models.DateOnly(trade.TradeDate)
		if err := trade.Validate(); err != nil {
			return nil, err
		}

		obs, ok := resolved[trade.TradeDate]
		if !ok {
			var err error
			obs, err = resolver.Resolve(trade.TradeDate)
			if err != nil {
				return nil, err
			}
			resolved[trade.TradeDate] = obs
		}

		entry := models.TradeWithRate{Trade: trade, Rate: obs}
		if h, exists := bySymbol[trade.Symbol]; exists {
			if err := h.Add(entry); err != nil {
				return nil, err
			}
			continue
		}
		h, err := models.NewHolding(entry)
		if err != nil {
			return nil, err
		}
		bySymbol[trade.Symbol] = h
		holdings = append(holdings, h)
	}

	return holdings, nil
}
