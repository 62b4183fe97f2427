package interfaces

import "monitor-dashboard/src/models"

// -----------------------------------------------------------------------------
// IDatabase defines the contract for the metric sample recorder.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveSamples inserts a batch of metric samples.
	SaveSamples(samples []models.MMetricSample) error

	// -----------------------------------------------------------------------------

	// QuerySamples returns samples of one metric newer than sinceMs, oldest
	// first, at most limit rows (0 = no limit).
	QuerySamples(metric string, sinceMs int64, limit int) ([]models.MMetricSample, error)

	// -----------------------------------------------------------------------------

	// ListMetrics returns the distinct recorded metric names, sorted.
	ListMetrics() ([]string, error)

	// -----------------------------------------------------------------------------

	// CleanupOldData removes data older than the retention policy.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
