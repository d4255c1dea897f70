package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/tropicaldog17/irpf/internal/app"
	"github.com/tropicaldog17/irpf/internal/config"
	"github.com/tropicaldog17/irpf/internal/logger"
	"github.com/tropicaldog17/irpf/internal/services"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&reportCmd{out: os.Stdout}, "")
	commander.Register(&ratesCmd{out: os.Stdout}, "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// env holds the flags every command shares.
type env struct {
	ratesFile string
}

func (e *env) setFlags(f *flag.FlagSet) {
	f.StringVar(&e.ratesFile, "rates-json", "", "read rates from a JSON file instead of the BCB API")
}

// open builds the application for a command run.
func (e *env) open() (*app.App, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.LogEnv)
	if err != nil {
		return nil, nil, err
	}

	var source services.RateSource
	if e.ratesFile != "" {
		f, err := os.Open(e.ratesFile)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		memory, err := services.LoadMemoryRateSource(f)
		if err != nil {
			return nil, nil, err
		}
		source = memory
	}

	a, err := app.New(cfg, source, log)
	if err != nil {
		return nil, nil, err
	}
	return a, log, nil
}
