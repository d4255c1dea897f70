package services

import (
	"context"
	"time"

	"github.com/tropicaldog17/irpf/internal/errors"
	"github.com/tropicaldog17/irpf/internal/models"
)

// MaxRangeDays caps a single rates listing.
const MaxRangeDays = 366 * 5

// RateServiceImpl implements RateService with the same source and lookback
// the holdings pipeline uses.
type RateServiceImpl struct {
	source       RateSource
	lookbackDays int
	timeout      time.Duration
}

func NewRateService(source RateSource, lookbackDays int, timeout time.Duration) RateService {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &RateServiceImpl{source: source, lookbackDays: lookbackDays, timeout: timeout}
}

func (s *RateServiceImpl) ListRange(ctx context.Context, start, end time.Time) ([]models.RateObservation, error) {
	start, end = models.DateOnly(start), models.DateOnly(end)
	if end.Before(start) {
		return nil, &errors.ErrValidation{Field: "end", Message: "end must not be before start"}
	}
	if end.Sub(start) > MaxRangeDays*24*time.Hour {
		return nil, &errors.ErrValidation{Field: "end", Message: "range is too long"}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.source.FetchRange(ctx, start, end)
}

func (s *RateServiceImpl) ResolveDate(ctx context.Context, date time.Time) (models.RateObservation, error) {
	date = models.DateOnly(date)
	start := date.AddDate(0, 0, -s.lookbackDays)

	observations, err := s.ListRange(ctx, start, date)
	if err != nil {
		return models.RateObservation{}, err
	}
	return NewRateTable(observations, start, date).Resolve(date)
}

var _ RateService = (*RateServiceImpl)(nil)
