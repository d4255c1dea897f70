package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/tropicaldog17/irpf/internal/errors"
	"github.com/tropicaldog17/irpf/internal/models"
)

// Defaults applied when HoldingsConfig leaves a field empty
const (
	DefaultLookbackDays = 10
	DefaultFetchTimeout = 30 * time.Second
)

// HoldingsConfig configures the holdings pipeline.
type HoldingsConfig struct {
	// ForeignCurrency is the only trade currency accepted (USD).
	ForeignCurrency string
	// LocalCurrency is the currency the costs are converted into (BRL).
	LocalCurrency string
	// LookbackDays widens the fetched window before the earliest trade so
	// that a trade on a long weekend still finds a prior business day.
	LookbackDays int
	// FetchTimeout bounds the whole rate fetch, retries included.
	FetchTimeout time.Duration
}

// HoldingsServiceImpl implements HoldingsService on top of a RateSource
type HoldingsServiceImpl struct {
	source RateSource
	cfg    HoldingsConfig
	logger *zap.Logger
	now    func() time.Time
}

func NewHoldingsService(source RateSource, cfg HoldingsConfig, logger *zap.Logger) HoldingsService {
	if cfg.ForeignCurrency == "" {
		cfg.ForeignCurrency = models.CurrencyUSD
	}
	if cfg.LocalCurrency == "" {
		cfg.LocalCurrency = models.CurrencyBRL
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = DefaultLookbackDays
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HoldingsServiceImpl{source: source, cfg: cfg, logger: logger, now: time.Now}
}

func (s *HoldingsServiceImpl) Run(ctx context.Context, records []models.StatementRecord) ([]*models.Holding, error) {
	trades, err := s.buyTrades(records)
	if err != nil {
		return nil, err
	}
	return s.aggregate(ctx, trades)
}

func (s *HoldingsServiceImpl) BuildReport(ctx context.Context, statement *models.Statement, opts models.ReportOptions) (*models.Report, error) {
	if statement == nil {
		statement = &models.Statement{}
	}
	trades, err := s.buyTrades(statement.Records)
	if err != nil {
		return nil, err
	}

	year := opts.Year
	if year == 0 {
		year = models.LatestYear(trades)
	}
	if year > 0 {
		trades = models.FilterUntil(trades, models.EndOfYear(year))
	}

	holdings, err := s.aggregate(ctx, trades)
	if err != nil {
		return nil, err
	}
	for _, h := range holdings {
		h.Description = statement.Description(h.Symbol)
	}

	return &models.Report{
		ID:              uuid.NewString(),
		Year:            year,
		ForeignCurrency: s.cfg.ForeignCurrency,
		LocalCurrency:   s.cfg.LocalCurrency,
		Holdings:        holdings,
		TradeCount:      len(trades),
		GeneratedAt:     s.now().UTC(),
	}, nil
}

// buyTrades drops non-buy records and validates the rest. Every malformed buy
// record is reported; one bad row rejects the whole statement.
func (s *HoldingsServiceImpl) buyTrades(records []models.StatementRecord) ([]models.Trade, error) {
	trades := make([]models.Trade, 0, len(records))
	var errs error
	for _, r := range records {
		if !r.IsBuy() {
			continue
		}
		t, err := models.NewTrade(r, s.cfg.ForeignCurrency)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		trades = append(trades, t)
	}
	if errs != nil {
		return nil, errs
	}
	return trades, nil
}

func (s *HoldingsServiceImpl) aggregate(ctx context.Context, trades []models.Trade) ([]*models.Holding, error) {
	if len(trades) == 0 {
		return []*models.Holding{}, nil
	}

	first, last := trades[0].TradeDate, trades[0].TradeDate
	for _, t := range trades[1:] {
		if t.TradeDate.Before(first) {
			first = t.TradeDate
		}
		if t.TradeDate.After(last) {
			last = t.TradeDate
		}
	}
	start := models.DateOnly(first).AddDate(0, 0, -s.cfg.LookbackDays)
	end := models.DateOnly(last)

	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	observations, err := s.source.FetchRange(fetchCtx, start, end)
	if err != nil {
		var upstream *errors.ErrUpstreamFetch
		if !stderrors.As(err, &upstream) {
			err = &errors.ErrUpstreamFetch{Start: start, End: end, Cause: err}
		}
		s.logger.Error("rate fetch failed", zap.Time("start", start), zap.Time("end", end), zap.Error(err))
		return nil, err
	}

	table := NewRateTable(observations, start, end)
	holdings, err := Aggregate(trades, table)
	if err != nil {
		s.logger.Warn("aggregation failed", zap.Int("trades", len(trades)), zap.Error(err))
		return nil, err
	}

	s.logger.Info("holdings computed",
		zap.Int("trades", len(trades)),
		zap.Int("holdings", len(holdings)),
		zap.Int("rates", table.Len()),
		zap.String("window_start", start.Format(models.DateFormat)),
		zap.String("window_end", end.Format(models.DateFormat)),
	)
	return holdings, nil
}

var _ HoldingsService = (*HoldingsServiceImpl)(nil)
