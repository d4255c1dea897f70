package repositories

import (
	"context"
	"time"

	"github.com/tropicaldog17/irpf/internal/models"
)

// RateRepository persists published rate observations and the windows that
// were fetched in full from the publisher.
type RateRepository interface {
	SaveObservations(ctx context.Context, observations []models.RateObservation) error
	ListRange(ctx context.Context, series string, start, end time.Time) ([]models.RateObservation, error)
	SaveWindow(ctx context.Context, series string, start, end time.Time) error
	// HasWindow reports whether one recorded window covers [start, end].
	HasWindow(ctx context.Context, series string, start, end time.Time) (bool, error)
}
