package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tropicaldog17/irpf/internal/db"
	"github.com/tropicaldog17/irpf/internal/models"
)

var memoryDBSeq int

func newSQLiteDB(t *testing.T) *db.DB {
	t.Helper()
	memoryDBSeq++
	database, err := db.Connect(&db.Config{
		Driver: db.DriverSQLite,
		Path:   fmt.Sprintf("file:rates_%d?mode=memory&cache=shared", memoryDBSeq),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, AutoMigrate(database))
	return database
}

func day(s string) time.Time {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func ptax(date string, rate string) models.RateObservation {
	return models.RateObservation{
		Series: models.SeriesPTAXSell,
		Date:   day(date),
		Rate:   decimal.RequireFromString(rate),
		Source: models.RateSourceBCB,
	}
}

func exerciseRateRepository(t *testing.T, repo RateRepository) {
	ctx := context.Background()

	t.Run("save and list range", func(t *testing.T) {
		err := repo.SaveObservations(ctx, []models.RateObservation{
			ptax("2023-03-08", "5.1920"),
			ptax("2023-03-09", "5.2010"),
			ptax("2023-03-10", "5.2040"),
		})
		require.NoError(t, err)

		got, err := repo.ListRange(ctx, models.SeriesPTAXSell, day("2023-03-09"), day("2023-03-12"))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, day("2023-03-09"), got[0].Date)
		assert.True(t, got[1].Rate.Equal(decimal.RequireFromString("5.204")))
		assert.Equal(t, models.RateSourceCache, got[1].Source)
	})

	t.Run("upsert replaces rate of same day", func(t *testing.T) {
		require.NoError(t, repo.SaveObservations(ctx, []models.RateObservation{ptax("2023-03-10", "5.3000")}))

		got, err := repo.ListRange(ctx, models.SeriesPTAXSell, day("2023-03-10"), day("2023-03-10"))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].Rate.Equal(decimal.RequireFromString("5.3")))
	})

	t.Run("other series is isolated", func(t *testing.T) {
		got, err := repo.ListRange(ctx, "ptax-buy", day("2023-03-01"), day("2023-03-31"))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("empty save is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.SaveObservations(ctx, nil))
	})

	t.Run("window coverage", func(t *testing.T) {
		require.NoError(t, repo.SaveWindow(ctx, models.SeriesPTAXSell, day("2023-03-01"), day("2023-03-31")))

		covered, err := repo.HasWindow(ctx, models.SeriesPTAXSell, day("2023-03-05"), day("2023-03-20"))
		require.NoError(t, err)
		assert.True(t, covered)

		covered, err = repo.HasWindow(ctx, models.SeriesPTAXSell, day("2023-02-25"), day("2023-03-20"))
		require.NoError(t, err)
		assert.False(t, covered)

		covered, err = repo.HasWindow(ctx, models.SeriesPTAXSell, day("2023-03-05"), day("2023-04-02"))
		require.NoError(t, err)
		assert.False(t, covered)
	})
}

func TestRateRepository_SQLite(t *testing.T) {
	exerciseRateRepository(t, NewRateRepository(newSQLiteDB(t)))
}
