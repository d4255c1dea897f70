package report

import (
	"fmt"
	"strings"

	"github.com/tropicaldog17/irpf/internal/models"
)

// NoBuyTradesMessage is shown when a statement has no buy trades to report.
const NoBuyTradesMessage = "No buy trades found in the statement."

// Markdown renders the report summary, the holdings table and the per-trade
// audit trail of every holding.
func Markdown(r *models.Report) string {
	var b strings.Builder

	if r.Year > 0 {
		fmt.Fprintf(&b, "# Acquisition cost report %d\n\n", r.Year)
	} else {
		b.WriteString("# Acquisition cost report\n\n")
	}

	if r.IsEmpty() {
		b.WriteString(NoBuyTradesMessage + "\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%d buy trades in %d instruments, converted with the PTAX sell rate (BRL per USD).\n\n",
		r.TradeCount, len(r.Holdings))

	b.WriteString("| Symbol | Description | Quantity | Total USD | Average USD | Total BRL | Average BRL | Commission USD |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|---:|---:|\n")
	for _, h := range r.Holdings {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			escape(h.Symbol),
			escape(h.Description),
			FormatQuantity(h.TotalQuantity()),
			FormatUSD(h.TotalCostForeign()),
			FormatUSD(h.AverageCostForeign()),
			FormatBRL(h.TotalCostLocal()),
			FormatBRL(h.AverageCostLocal()),
			FormatUSD(h.TotalCommissionForeign()),
		)
	}
	fmt.Fprintf(&b, "| Total | | | %s | | %s | | |\n\n",
		FormatUSD(r.TotalCostForeign()), FormatBRL(r.TotalCostLocal()))

	for _, h := range r.Holdings {
		writeTrades(&b, h)
	}

	b.WriteString("Rates marked with * were published on an earlier business day than the trade.\n")
	return b.String()
}

func writeTrades(b *strings.Builder, h *models.Holding) {
	fmt.Fprintf(b, "## %s\n\n", escape(h.Symbol))
	if h.Description != h.Symbol {
		fmt.Fprintf(b, "%s\n\n", escape(h.Description))
	}

	b.WriteString("| Trade date | Rate date | Quantity | Price USD | PTAX | Cost USD | Cost BRL |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|---:|\n")
	for _, t := range h.Trades() {
		rateDate := t.Rate.Date.Format(models.DateFormat)
		if t.FellBack() {
			rateDate += " *"
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			t.Trade.TradeDate.Format(models.DateFormat),
			rateDate,
			FormatQuantity(t.Trade.Quantity),
			FormatUSD(t.Trade.UnitPrice),
			FormatRate(t.Rate.Rate),
			FormatUSD(t.Trade.CostForeign()),
			FormatBRL(t.CostLocal()),
		)
	}
	b.WriteString("\n")
}

var tableEscaper = strings.NewReplacer("|", `\|`, "\n", " ")

func escape(s string) string {
	return tableEscaper.Replace(s)
}
