package storage

import (
	"time"

	"github.com/scanhub/scanhub/internal/models"
)

// Storage defines the interface for persisting normalized reports
type Storage interface {
	// SaveNormalizedReport stores a complete normalized report
	SaveNormalizedReport(report *models.NormalizedReport) error

	// LoadNormalizedReport loads a report from a specific timestamp
	LoadNormalizedReport(timestamp time.Time) (*models.NormalizedReport, error)

	// GetLatestRun retrieves the most recent normalized report
	GetLatestRun() (*models.NormalizedReport, error)

	// GetLastNRuns retrieves the last N normalized reports
	GetLastNRuns(n int) ([]*models.NormalizedReport, error)

	// ListRuns returns all available run timestamps
	ListRuns() ([]time.Time, error)
}
