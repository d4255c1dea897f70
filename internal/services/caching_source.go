package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tropicaldog17/irpf/internal/models"
	"github.com/tropicaldog17/irpf/internal/repositories"
)

// CachingRateSource serves fully fetched past windows from a repository and
// delegates everything else to the upstream source.
//
// A window is only reused when its end is before today (UTC), because the
// publisher may still add today's rate. Store failures are logged and never
// fail a fetch.
type CachingRateSource struct {
	upstream RateSource
	repo     repositories.RateRepository
	series   string
	logger   *zap.Logger
	now      func() time.Time
}

// NewCachingRateSource wraps upstream with repo. Cached rates and windows are
// keyed on series, which must match the label of upstream's observations.
func NewCachingRateSource(upstream RateSource, repo repositories.RateRepository, series string, logger *zap.Logger) *CachingRateSource {
	if series == "" {
		series = models.SeriesPTAXSell
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachingRateSource{
		upstream: upstream,
		repo:     repo,
		series:   series,
		logger:   logger,
		now:      time.Now,
	}
}

func (c *CachingRateSource) FetchRange(ctx context.Context, start, end time.Time) ([]models.RateObservation, error) {
	start, end = models.DateOnly(start), models.DateOnly(end)
	today := models.DateOnly(c.now().UTC())

	if end.Before(today) {
		if observations, ok := c.fromStore(ctx, start, end); ok {
			return observations, nil
		}
	}

	observations, err := c.upstream.FetchRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	c.store(ctx, observations, start, end, today)
	return observations, nil
}

func (c *CachingRateSource) fromStore(ctx context.Context, start, end time.Time) ([]models.RateObservation, bool) {
	covered, err := c.repo.HasWindow(ctx, c.series, start, end)
	if err != nil {
		c.logger.Warn("rate cache lookup failed", zap.Error(err))
		return nil, false
	}
	if !covered {
		return nil, false
	}

	observations, err := c.repo.ListRange(ctx, c.series, start, end)
	if err != nil {
		c.logger.Warn("rate cache read failed", zap.Error(err))
		return nil, false
	}

	c.logger.Debug("rates served from cache",
		zap.String("start", start.Format(models.DateFormat)),
		zap.String("end", end.Format(models.DateFormat)),
		zap.Int("observations", len(observations)),
	)
	return observations, true
}

func (c *CachingRateSource) store(ctx context.Context, observations []models.RateObservation, start, end, today time.Time) {
	if err := c.repo.SaveObservations(ctx, observations); err != nil {
		c.logger.Warn("rate cache write failed", zap.Error(err))
		return
	}
	// Only completed days form a reusable window.
	if !end.Before(today) {
		return
	}
	if err := c.repo.SaveWindow(ctx, c.series, start, end); err != nil {
		c.logger.Warn("rate cache window write failed", zap.Error(err))
	}
}

var _ RateSource = (*CachingRateSource)(nil)
