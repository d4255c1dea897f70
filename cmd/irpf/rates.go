package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/tropicaldog17/irpf/internal/models"
	"github.com/tropicaldog17/irpf/internal/report"
)

type ratesCmd struct {
	env
	out   io.Writer
	start string
	end   string
}

func (*ratesCmd) Name() string     { return "rates" }
func (*ratesCmd) Synopsis() string { return "list published PTAX sell rates" }
func (*ratesCmd) Usage() string {
	return `irpf rates -start YYYY-MM-DD [-end YYYY-MM-DD]

  Lists the PTAX sell rates (BRL per USD) published in the range.
`
}

func (c *ratesCmd) SetFlags(f *flag.FlagSet) {
	c.env.setFlags(f)
	f.StringVar(&c.start, "start", "", "first date (YYYY-MM-DD)")
	f.StringVar(&c.end, "end", "", "last date (YYYY-MM-DD, default: start)")
}

func (c *ratesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	start, err := models.ParseDate(c.start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: -start: %v\n", err)
		return subcommands.ExitUsageError
	}
	end := start
	if c.end != "" {
		if end, err = models.ParseDate(c.end); err != nil {
			fmt.Fprintf(os.Stderr, "Error: -end: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	a, _, err := c.open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	rates, err := a.Rates.ListRange(ctx, start, end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tPTAX SELL\tSOURCE")
	for _, r := range rates {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Date.Format(models.DateFormat), report.FormatRate(r.Rate), r.Source)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
