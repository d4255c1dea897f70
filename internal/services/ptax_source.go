package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tropicaldog17/irpf/internal/errors"
	"github.com/tropicaldog17/irpf/internal/models"
)

// Banco Central do Brasil SGS defaults. Series 1 is the PTAX sell rate,
// quoted as BRL per USD.
const (
	DefaultPTAXBaseURL = "https://api.bcb.gov.br"
	DefaultPTAXSeries  = 1

	sgsDateFormat = "02/01/2006"
)

// PTAXConfig configures the SGS client
type PTAXConfig struct {
	BaseURL        string
	Series         int
	Timeout        time.Duration
	MaxRetries     uint64
	InitialBackoff time.Duration
}

// PTAXRateSource fetches the daily PTAX series from the BCB SGS API
type PTAXRateSource struct {
	baseURL        string
	series         int
	label          string
	httpClient     *http.Client
	maxRetries     uint64
	initialBackoff time.Duration
	logger         *zap.Logger
}

// sgsObservation is one item of the SGS JSON payload:
// [{"data":"10/03/2023","valor":"5.2040"}]
type sgsObservation struct {
	Data  string          `json:"data"`
	Valor decimal.Decimal `json:"valor"`
}

// NewPTAXRateSource creates a new SGS rate source
func NewPTAXRateSource(cfg PTAXConfig, logger *zap.Logger) *PTAXRateSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultPTAXBaseURL
	}
	if cfg.Series == 0 {
		cfg.Series = DefaultPTAXSeries
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &PTAXRateSource{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		series:  cfg.Series,
		label:   models.SGSSeries(cfg.Series),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		logger:         logger,
	}
}

// Series is the label carried by every observation this source returns.
func (p *PTAXRateSource) Series() string {
	return p.label
}

// FetchRange retrieves the observations published between start and end.
// Transient failures are retried with exponential backoff; every failure is
// returned as an ErrUpstreamFetch carrying the requested range.
func (p *PTAXRateSource) FetchRange(ctx context.Context, start, end time.Time) ([]models.RateObservation, error) {
	start, end = models.DateOnly(start), models.DateOnly(end)

	var observations []models.RateObservation
	operation := func() error {
		var err error
		observations, err = p.fetchRangeFromAPI(ctx, start, end)
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = p.initialBackoff
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, p.maxRetries), ctx)

	notify := func(err error, wait time.Duration) {
		p.logger.Warn("ptax fetch failed, retrying",
			zap.String("start", start.Format(models.DateFormat)),
			zap.String("end", end.Format(models.DateFormat)),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(operation, retry, notify); err != nil {
		return nil, &errors.ErrUpstreamFetch{Start: start, End: end, Cause: err}
	}

	p.logger.Debug("ptax rates fetched",
		zap.String("start", start.Format(models.DateFormat)),
		zap.String("end", end.Format(models.DateFormat)),
		zap.Int("observations", len(observations)),
	)
	return observations, nil
}

func (p *PTAXRateSource) endpoint(start, end time.Time) string {
	q := url.Values{}
	q.Set("formato", "json")
	q.Set("dataInicial", start.Format(sgsDateFormat))
	q.Set("dataFinal", end.Format(sgsDateFormat))
	return fmt.Sprintf("%s/dados/serie/bcdata.sgs.%d/dados?%s", p.baseURL, p.series, q.Encode())
}

// fetchRangeFromAPI performs one request. Errors that retrying cannot fix are
// marked permanent.
func (p *PTAXRateSource) fetchRangeFromAPI(ctx context.Context, start, end time.Time) ([]models.RateObservation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint(start, end), nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to fetch rates: %w", err))
		}
		return nil, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("API returned status %d", resp.StatusCode)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	var payload []sgsObservation
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}

	observations := make([]models.RateObservation, 0, len(payload))
	for _, item := range payload {
		on, err := time.Parse(sgsDateFormat, item.Data)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("invalid observation date %q", item.Data))
		}
		obs := models.RateObservation{
			Series: p.label,
			Date:   models.DateOnly(on),
			Rate:   item.Valor,
			Source: models.RateSourceBCB,
		}
		if err := obs.Validate(); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("invalid observation for %s: %w", item.Data, err))
		}
		observations = append(observations, obs)
	}
	return observations, nil
}

var _ RateSource = (*PTAXRateSource)(nil)
