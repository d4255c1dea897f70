package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Statement actions
const (
	ActionBuy   = "buy"
	ActionOther = "other"
)

// StatementRecord is one trade row read from a brokerage activity statement.
// Records keep statement order; Row is the 1-based line of the source file.
type StatementRecord struct {
	Row        int             `json:"row"`
	Symbol     string          `json:"symbol"`
	Action     string          `json:"action"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Commission decimal.Decimal `json:"commission"`
	Currency   string          `json:"currency"`
	TradeDate  time.Time       `json:"trade_date"`

	// ParseError is set when the parser recognised a trade row but could not
	// read one of its fields. Such a record is rejected when it is a buy.
	ParseError string `json:"parse_error,omitempty"`
}

// IsBuy reports whether the record is a buy execution.
func (r StatementRecord) IsBuy() bool {
	return strings.EqualFold(r.Action, ActionBuy)
}

// Statement is the parsed content of an activity statement.
type Statement struct {
	Records []StatementRecord `json:"records"`
	// Descriptions maps instrument symbol to its long name.
	Descriptions map[string]string `json:"descriptions"`
}

// Description returns the long name of symbol, or the symbol itself.
func (s *Statement) Description(symbol string) string {
	if s == nil {
		return symbol
	}
	if d, ok := s.Descriptions[symbol]; ok && d != "" {
		return d
	}
	return symbol
}
