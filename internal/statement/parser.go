// Package statement reads Interactive Brokers activity statements exported as CSV.
package statement

import (
	"bufio"
	"bytes"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tropicaldog17/irpf/internal/errors"
	"github.com/tropicaldog17/irpf/internal/models"
)

// Section and row markers of the activity statement.
const (
	SectionTrades      = "Trades"
	SectionInstruments = "Financial Instrument Information"

	rowHeader = "Header"
	rowData   = "Data"

	discriminatorOrder = "Order"
	assetStocks        = "Stocks"

	// DateTimeFormat is the trade timestamp layout, e.g. "2025-01-03, 07:52:59".
	DateTimeFormat = "2006-01-02, 15:04:05"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Trade columns and their position in the default layout. A Trades header
// row overrides the positions.
var tradeColumns = map[string]int{
	"DataDiscriminator": 2,
	"Asset Category":    3,
	"Currency":          4,
	"Symbol":            5,
	"Date/Time":         6,
	"Quantity":          7,
	"T. Price":          8,
	"Comm/Fee":          11,
}

// Some exports name the commission column after the base currency.
var columnAliases = map[string]string{
	"Comm in USD": "Comm/Fee",
}

// Parse reads every stock order and instrument description of a statement.
// Records are returned in file order; rows of other sections are ignored.
// Order rows whose fields cannot be read are kept with ParseError set.
func Parse(r io.Reader) (*models.Statement, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	statement := &models.Statement{
		Records:      make([]models.StatementRecord, 0),
		Descriptions: make(map[string]string),
	}
	columns := copyColumns(tradeColumns)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if stderrors.As(err, &parseErr) {
				return nil, &errors.ErrMalformedInput{Row: parseErr.Line, Reason: parseErr.Err.Error()}
			}
			return nil, fmt.Errorf("failed to read statement: %w", err)
		}
		if len(row) < 2 {
			continue
		}
		line, _ := reader.FieldPos(0)

		switch {
		case row[0] == SectionTrades && row[1] == rowHeader:
			columns = headerColumns(row)
		case row[0] == SectionTrades && row[1] == rowData:
			if record, ok := parseTradeRow(row, columns, line); ok {
				statement.Records = append(statement.Records, record)
			}
		case row[0] == SectionInstruments && row[1] == rowData:
			if len(row) < 4 {
				continue
			}
			symbol := models.NormalizeSymbol(row[3])
			description := symbol
			if len(row) > 4 && strings.TrimSpace(row[4]) != "" {
				description = strings.TrimSpace(row[4])
			}
			statement.Descriptions[symbol] = description
		}
	}

	return statement, nil
}

func copyColumns(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// headerColumns maps the known column names of a Trades header row. Columns
// the header does not name keep their default position.
func headerColumns(header []string) map[string]int {
	columns := copyColumns(tradeColumns)
	for i, name := range header {
		name = strings.TrimSpace(name)
		if alias, ok := columnAliases[name]; ok {
			name = alias
		}
		if _, known := columns[name]; known {
			columns[name] = i
		}
	}
	return columns
}

func parseTradeRow(row []string, columns map[string]int, line int) (models.StatementRecord, bool) {
	field := func(name string) (string, bool) {
		i := columns[name]
		if i >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[i]), true
	}

	if d, _ := field("DataDiscriminator"); d != discriminatorOrder {
		return models.StatementRecord{}, false
	}
	if c, _ := field("Asset Category"); c != assetStocks {
		return models.StatementRecord{}, false
	}

	symbol, _ := field("Symbol")
	currency, _ := field("Currency")
	record := models.StatementRecord{
		Row:      line,
		Symbol:   models.NormalizeSymbol(symbol),
		Currency: strings.ToUpper(currency),
		Action:   models.ActionBuy,
	}

	var problems []string
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if raw, ok := field("Quantity"); !ok {
		fail("missing quantity")
	} else if qty, err := parseNumber(raw); err != nil {
		fail("invalid quantity %q", raw)
	} else {
		record.Quantity = qty
		if !qty.IsPositive() {
			record.Action = models.ActionOther
		}
	}

	if raw, ok := field("T. Price"); !ok {
		fail("missing price")
	} else if price, err := parseNumber(raw); err != nil {
		fail("invalid price %q", raw)
	} else {
		record.UnitPrice = price
	}

	if raw, ok := field("Comm/Fee"); ok && raw != "" {
		if comm, err := parseNumber(raw); err != nil {
			fail("invalid commission %q", raw)
		} else {
			record.Commission = comm
		}
	}

	if raw, ok := field("Date/Time"); !ok {
		fail("missing trade date")
	} else if at, err := parseTradeTime(raw); err != nil {
		fail("invalid trade date %q", raw)
	} else {
		record.TradeDate = models.DateOnly(at)
	}

	if len(problems) > 0 {
		record.ParseError = strings.Join(problems, "; ")
	}
	return record, true
}

// parseNumber accepts thousands separators, e.g. "1,000.5".
func parseNumber(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
}

// parseTradeTime accepts the full timestamp or a bare date.
func parseTradeTime(raw string) (time.Time, error) {
	if t, err := time.Parse(DateTimeFormat, raw); err == nil {
		return t, nil
	}
	return time.Parse(models.DateFormat, raw)
}
