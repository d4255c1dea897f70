package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/tropicaldog17/irpf/internal/models"
	"github.com/tropicaldog17/irpf/internal/report"
	"github.com/tropicaldog17/irpf/internal/statement"
)

type reportCmd struct {
	env
	out    io.Writer
	year   int
	format string
	width  int
	style  string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "compute the BRL acquisition cost of a statement's stock buys" }
func (*reportCmd) Usage() string {
	return `irpf report [-year N] [-format terminal|markdown|json] <statement.csv>

  Reads an IBKR activity statement and prints every holding's acquisition
  cost in USD and in BRL, converted with the PTAX sell rate of each trade date.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	c.env.setFlags(f)
	f.IntVar(&c.year, "year", 0, "tax year (default: year of the latest buy)")
	f.StringVar(&c.format, "format", "terminal", "output format: terminal, markdown or json")
	f.IntVar(&c.width, "width", 0, "wrap output at this column (0: no wrapping, tables keep their full width)")
	f.StringVar(&c.style, "style", "", "terminal style (dark, light, notty; default: auto)")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one statement file")
		return subcommands.ExitUsageError
	}
	switch c.format {
	case "terminal", "markdown", "json":
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}

	file, err := os.Open(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer file.Close()

	parsed, err := statement.Parse(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	a, log, err := c.open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	rep, err := a.Holdings.BuildReport(ctx, parsed, models.ReportOptions{Year: c.year})
	if err != nil {
		log.Error("report failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := c.write(rep); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *reportCmd) write(rep *models.Report) error {
	switch c.format {
	case "json":
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "markdown":
		_, err := io.WriteString(c.out, report.Markdown(rep))
		return err
	default:
		out, err := report.Terminal(report.Markdown(rep), c.width, c.style)
		if err != nil {
			return err
		}
		_, err = io.WriteString(c.out, out)
		return err
	}
}
