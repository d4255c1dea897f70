package services

import (
	"fmt"
	"time"

	"github.com/tropicaldog17/irpf/internal/errors"
	"github.com/tropicaldog17/irpf/internal/models"
)

// ResolveRate returns the observation published on target or, when target has
// none (weekend, holiday), the one from the closest earlier day. The search
// walks back one calendar day at a time and stops at windowStart; it never
// looks forward.
func ResolveRate(target time.Time, ratesByDate map[time.Time]models.RateObservation, windowStart time.Time) (models.RateObservation, error) {
	target = models.DateOnly(target)
	windowStart = models.DateOnly(windowStart)

	for d := target; !d.Before(windowStart); d = d.AddDate(0, 0, -1) {
		if obs, ok := ratesByDate[d]; ok {
			return obs, nil
		}
	}
	return models.RateObservation{}, &errors.ErrRateUnavailable{Date: target, WindowStart: windowStart}
}

// RateTable is the date -> observation mapping of one fetched window.
type RateTable struct {
	rates       map[time.Time]models.RateObservation
	windowStart time.Time
	windowEnd   time.Time
}

// NewRateTable indexes observations fetched for [windowStart, windowEnd].
// A later observation for the same day replaces an earlier one.
func NewRateTable(observations []models.RateObservation, windowStart, windowEnd time.Time) *RateTable {
	rates := make(map[time.Time]models.RateObservation, len(observations))
	for _, obs := range observations {
		obs.Date = models.DateOnly(obs.Date)
		rates[obs.Date] = obs
	}
	return &RateTable{
		rates:       rates,
		windowStart: models.DateOnly(windowStart),
		windowEnd:   models.DateOnly(windowEnd),
	}
}

// Resolve implements RateResolver. Dates after the fetched window are
// rejected since rates published after windowEnd were never requested.
func (t *RateTable) Resolve(date time.Time) (models.RateObservation, error) {
	date = models.DateOnly(date)
	if date.After(t.windowEnd) {
		return models.RateObservation{}, &errors.ErrValidation{
			Field:   "date",
			Message: fmt.Sprintf("%s is after the fetched rate window ending %s", date.Format(models.DateFormat), t.windowEnd.Format(models.DateFormat)),
		}
	}
	return ResolveRate(date, t.rates, t.windowStart)
}

// Window returns the inclusive bounds the table was fetched for.
func (t *RateTable) Window() (start, end time.Time) { return t.windowStart, t.windowEnd }

// Len returns the number of published days in the table.
func (t *RateTable) Len() int { return len(t.rates) }

var _ RateResolver = (*RateTable)(nil)
