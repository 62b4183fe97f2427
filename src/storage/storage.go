package storage

import (
	"database/sql"
	"fmt"

	"monitor-dashboard/src/helpers"
	"monitor-dashboard/src/interfaces"
	"monitor-dashboard/src/logger"
	"monitor-dashboard/src/models"
)

// NewDatabase builds the recorder selected by storage.db_type.
// It returns nil, nil when recording is disabled.
func NewDatabase(cfg *models.MConfig, log *logger.Logger) (interfaces.IDatabase, error) {
	switch cfg.Storage.DBType {
	case "", "none":
		return nil, nil
	case "sqlite":
		db, err := NewAsyncSQLiteDB(cfg, log)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "postgres":
		db, err := NewPostgresDB(cfg, log)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, helpers.NewConfigurationError(fmt.Sprintf("unknown database type: %s", cfg.Storage.DBType), nil)
	}
}

// -----------------------------------------------------------------------------

// scanSamples reads rows ordered newest first and returns them oldest first
func scanSamples(rows *sql.Rows) ([]models.MMetricSample, error) {
	var out []models.MMetricSample
	for rows.Next() {
		var s models.MMetricSample
		if err := rows.Scan(&s.Metric, &s.Timestamp, &s.Value); err != nil {
			return nil, helpers.NewStorageError("scan sample", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, helpers.NewStorageError("iterate samples", err)
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if out == nil {
		out = []models.MMetricSample{}
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func scanMetrics(rows *sql.Rows) ([]string, error) {
	metrics := []string{}
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, helpers.NewStorageError("scan metric", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, helpers.NewStorageError("iterate metrics", err)
	}
	return metrics, nil
}
