package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"

	"github.com/tropicaldog17/irpf/internal/db"
	"github.com/tropicaldog17/irpf/internal/models"
)

// RateObservationRecord is the stored form of a published rate
type RateObservationRecord struct {
	ID        uint            `gorm:"primaryKey;column:id"`
	Series    string          `gorm:"column:series;type:varchar(32);not null;uniqueIndex:idx_rate_series_date"`
	Date      time.Time       `gorm:"column:date;type:date;not null;uniqueIndex:idx_rate_series_date"`
	Rate      decimal.Decimal `gorm:"column:rate;type:varchar(40);not null"`
	Source    string          `gorm:"column:source;type:varchar(32);not null"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (RateObservationRecord) TableName() string { return "rate_observations" }

// RateWindowRecord marks a date range the publisher was fully queried for
type RateWindowRecord struct {
	ID        uint      `gorm:"primaryKey;column:id"`
	Series    string    `gorm:"column:series;type:varchar(32);not null;index:idx_rate_window"`
	StartDate time.Time `gorm:"column:start_date;type:date;not null;index:idx_rate_window"`
	EndDate   time.Time `gorm:"column:end_date;type:date;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (RateWindowRecord) TableName() string { return "rate_windows" }

type rateRepository struct {
	db *db.DB
}

// NewRateRepository creates a new rate repository
func NewRateRepository(database *db.DB) RateRepository {
	return &rateRepository{db: database}
}

// AutoMigrate creates or updates the rate tables.
func AutoMigrate(database *db.DB) error {
	if err := database.AutoMigrate(&RateObservationRecord{}, &RateWindowRecord{}); err != nil {
		return fmt.Errorf("failed to migrate rate tables: %w", err)
	}
	return nil
}

func (r *rateRepository) SaveObservations(ctx context.Context, observations []models.RateObservation) error {
	if len(observations) == 0 {
		return nil
	}

	records := make([]RateObservationRecord, 0, len(observations))
	for _, obs := range observations {
		records = append(records, RateObservationRecord{
			Series: obs.Series,
			Date:   models.DateOnly(obs.Date),
			Rate:   obs.Rate,
			Source: obs.Source,
		})
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "series"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "source", "updated_at"}),
	}).CreateInBatches(&records, 200).Error
	if err != nil {
		return fmt.Errorf("failed to save rate observations: %w", err)
	}
	return nil
}

func (r *rateRepository) ListRange(ctx context.Context, series string, start, end time.Time) ([]models.RateObservation, error) {
	var records []RateObservationRecord
	err := r.db.WithContext(ctx).
		Where("series = ? AND date >= ? AND date <= ?", series, models.DateOnly(start), models.DateOnly(end)).
		Order("date ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list rate observations: %w", err)
	}

	observations := make([]models.RateObservation, 0, len(records))
	for _, rec := range records {
		observations = append(observations, models.RateObservation{
			Series: rec.Series,
			Date:   models.DateOnly(rec.Date),
			Rate:   rec.Rate,
			Source: models.RateSourceCache,
		})
	}
	return observations, nil
}

func (r *rateRepository) SaveWindow(ctx context.Context, series string, start, end time.Time) error {
	window := RateWindowRecord{
		Series:    series,
		StartDate: models.DateOnly(start),
		EndDate:   models.DateOnly(end),
	}
	if err := r.db.WithContext(ctx).Create(&window).Error; err != nil {
		return fmt.Errorf("failed to save rate window: %w", err)
	}
	return nil
}

func (r *rateRepository) HasWindow(ctx context.Context, series string, start, end time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&RateWindowRecord{}).
		Where("series = ? AND start_date <= ? AND end_date >= ?", series, models.DateOnly(start), models.DateOnly(end)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up rate window: %w", err)
	}
	return count > 0, nil
}
