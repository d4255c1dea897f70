// Package app assembles the rate source, cache and services from configuration.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tropicaldog17/irpf/internal/config"
	"github.com/tropicaldog17/irpf/internal/db"
	"github.com/tropicaldog17/irpf/internal/repositories"
	"github.com/tropicaldog17/irpf/internal/services"
)

type App struct {
	Source   services.RateSource
	Holdings services.HoldingsService
	Rates    services.RateService

	database *db.DB
}

// New builds the services on top of source. When source is nil the PTAX
// client is used, wrapped by the rate cache unless the cache is disabled.
func New(cfg *config.Config, source services.RateSource, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{}

	if source == nil {
		ptax := services.NewPTAXRateSource(cfg.PTAX, logger.Named("ptax"))
		source = ptax
		if cfg.Cache.Enabled() {
			database, err := db.Connect(&cfg.Cache)
			if err != nil {
				return nil, fmt.Errorf("failed to open rate cache: %w", err)
			}
			if err := repositories.AutoMigrate(database); err != nil {
				database.Close()
				return nil, err
			}
			a.database = database
			source = services.NewCachingRateSource(source, repositories.NewRateRepository(database), ptax.Series(), logger.Named("cache"))
			logger.Info("rate cache enabled", zap.String("driver", cfg.Cache.Driver), zap.String("series", ptax.Series()))
		}
	}

	a.Source = source
	a.Holdings = services.NewHoldingsService(source, cfg.HoldingsConfig(), logger.Named("holdings"))
	a.Rates = services.NewRateService(source, cfg.Rates.LookbackDays, cfg.Rates.FetchTimeout)
	return a, nil
}

// Health checks the cache database, if any.
func (a *App) Health() error {
	if a.database == nil {
		return nil
	}
	return a.database.Health()
}

func (a *App) Close() error {
	if a.database == nil {
		return nil
	}
	return a.database.Close()
}
