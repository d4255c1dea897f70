package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tropicaldog17/irpf/internal/models"
)

// MemoryRateSource serves a fixed set of observations, for offline runs and tests.
type MemoryRateSource struct {
	mu           sync.Mutex
	observations map[time.Time]models.RateObservation
	calls        int
}

// NewMemoryRateSource creates a source holding the given observations
func NewMemoryRateSource(observations ...models.RateObservation) *MemoryRateSource {
	s := &MemoryRateSource{observations: make(map[time.Time]models.RateObservation)}
	for _, obs := range observations {
		s.Add(obs)
	}
	return s
}

// LoadMemoryRateSource reads a JSON array of {"date":"YYYY-MM-DD","rate":"5.1"} items.
func LoadMemoryRateSource(r io.Reader) (*MemoryRateSource, error) {
	var items []struct {
		Date string          `json:"date"`
		Rate decimal.Decimal `json:"rate"`
	}
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode rates: %w", err)
	}

	s := NewMemoryRateSource()
	for _, item := range items {
		on, err := models.ParseDate(item.Date)
		if err != nil {
			return nil, err
		}
		obs := models.RateObservation{
			Series: models.SeriesPTAXSell,
			Date:   on,
			Rate:   item.Rate,
			Source: "file",
		}
		if err := obs.Validate(); err != nil {
			return nil, fmt.Errorf("invalid rate for %s: %w", item.Date, err)
		}
		s.Add(obs)
	}
	return s, nil
}

// Add stores or replaces the observation of a day
func (s *MemoryRateSource) Add(obs models.RateObservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obs.Date = models.DateOnly(obs.Date)
	s.observations[obs.Date] = obs
}

// FetchRange returns the stored observations within [start, end], oldest first.
func (s *MemoryRateSource) FetchRange(ctx context.Context, start, end time.Time) ([]models.RateObservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start, end = models.DateOnly(start), models.DateOnly(end)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	out := make([]models.RateObservation, 0)
	for on, obs := range s.observations {
		if on.Before(start) || on.After(end) {
			continue
		}
		out = append(out, obs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Calls returns how many times FetchRange was invoked
func (s *MemoryRateSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

var _ RateSource = (*MemoryRateSource)(nil)
