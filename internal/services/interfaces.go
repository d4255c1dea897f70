package services

import (
	"context"
	"time"

	"github.com/tropicaldog17/irpf/internal/models"
)

// RateSource fetches published daily rates for an inclusive date range.
//
// Implementations return only the business days the publisher covered, which
// may be fewer than requested. Network or upstream failures must be returned
// as errors and never as an empty result.
type RateSource interface {
	FetchRange(ctx context.Context, start, end time.Time) ([]models.RateObservation, error)
}

// RateResolver returns the rate applicable to a calendar date.
type RateResolver interface {
	Resolve(date time.Time) (models.RateObservation, error)
}

// HoldingsService turns statement records into per-instrument holdings.
type HoldingsService interface {
	// Run filters buy records, fetches the rates they need and aggregates them.
	Run(ctx context.Context, records []models.StatementRecord) ([]*models.Holding, error)
	// BuildReport runs the pipeline for one tax year of a parsed statement.
	BuildReport(ctx context.Context, statement *models.Statement, opts models.ReportOptions) (*models.Report, error)
}

// RateService exposes the rate series on its own.
type RateService interface {
	ListRange(ctx context.Context, start, end time.Time) ([]models.RateObservation, error)
	ResolveDate(ctx context.Context, date time.Time) (models.RateObservation, error)
}
