package services

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tropicaldog17/irpf/internal/errors"
	"github.com/tropicaldog17/irpf/internal/models"
)

func mustDate(s string) time.Time {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func obs(date, rate string) models.RateObservation {
	return models.RateObservation{
		Series: models.SeriesPTAXSell,
		Date:   mustDate(date),
		Rate:   decimal.RequireFromString(rate),
		Source: models.RateSourceBCB,
	}
}

func ratesByDate(observations ...models.RateObservation) map[time.Time]models.RateObservation {
	m := make(map[time.Time]models.RateObservation, len(observations))
	for _, o := range observations {
		m[o.Date] = o
	}
	return m
}

func TestResolveRate(t *testing.T) {
	rates := ratesByDate(obs("2024-01-02", "4.85"), obs("2024-01-04", "4.90"))

	tests := []struct {
		name     string
		target   string
		start    string
		wantDate string
	}{
		{name: "exact match", target: "2024-01-04", start: "2023-12-25", wantDate: "2024-01-04"},
		{name: "falls back one day", target: "2024-01-03", start: "2023-12-25", wantDate: "2024-01-02"},
		{name: "falls back several days", target: "2024-01-08", start: "2023-12-25", wantDate: "2024-01-04"},
		{name: "window start is inclusive", target: "2024-01-03", start: "2024-01-02", wantDate: "2024-01-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveRate(mustDate(tt.target), rates, mustDate(tt.start))
			require.NoError(t, err)
			assert.Equal(t, mustDate(tt.wantDate), got.Date)
		})
	}
}

func TestResolveRate_NeverLooksForward(t *testing.T) {
	rates := ratesByDate(obs("2024-01-05", "4.95"))

	_, err := ResolveRate(mustDate("2024-01-04"), rates, mustDate("2024-01-01"))
	require.Error(t, err)

	var unavailable *errors.ErrRateUnavailable
	require.True(t, stderrors.As(err, &unavailable))
	assert.Equal(t, mustDate("2024-01-04"), unavailable.Date)
	assert.Equal(t, mustDate("2024-01-01"), unavailable.WindowStart)
}

func TestResolveRate_StopsAtWindowStart(t *testing.T) {
	rates := ratesByDate(obs("2024-01-01", "4.80"))

	_, err := ResolveRate(mustDate("2024-01-05"), rates, mustDate("2024-01-02"))
	var unavailable *errors.ErrRateUnavailable
	assert.True(t, stderrors.As(err, &unavailable))
}

func TestResolveRate_IgnoresTimeOfDay(t *testing.T) {
	rates := ratesByDate(obs("2024-01-02", "4.85"))
	target := time.Date(2024, 1, 2, 15, 30, 0, 0, time.UTC)

	got, err := ResolveRate(target, rates, mustDate("2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, mustDate("2024-01-02"), got.Date)
}

func TestRateTable_Resolve(t *testing.T) {
	table := NewRateTable(
		[]models.RateObservation{obs("2023-03-09", "5.2010"), obs("2023-03-10", "5.2040")},
		mustDate("2023-03-01"), mustDate("2023-03-13"),
	)
	assert.Equal(t, 2, table.Len())

	start, end := table.Window()
	assert.Equal(t, mustDate("2023-03-01"), start)
	assert.Equal(t, mustDate("2023-03-13"), end)

	// Saturday uses Friday's rate.
	got, err := table.Resolve(mustDate("2023-03-11"))
	require.NoError(t, err)
	assert.Equal(t, mustDate("2023-03-10"), got.Date)
	assert.True(t, got.Rate.Equal(decimal.RequireFromString("5.2040")))

	_, err = table.Resolve(mustDate("2023-03-14"))
	var validation *errors.ErrValidation
	require.True(t, stderrors.As(err, &validation))
	assert.Equal(t, "date", validation.Field)

	_, err = table.Resolve(mustDate("2023-03-05"))
	var unavailable *errors.ErrRateUnavailable
	assert.True(t, stderrors.As(err, &unavailable))
}
