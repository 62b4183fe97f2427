package storage

import (
	"database/sql"
	"fmt"
	"time"

	"monitor-dashboard/src/helpers"
	"monitor-dashboard/src/interfaces"
	"monitor-dashboard/src/logger"
	"monitor-dashboard/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
	now    func() time.Time
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	if cfg.Storage.DBPath == "" {
		return nil, helpers.NewConfigurationError("sqlite database path is empty", nil)
	}
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
		now:    time.Now,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize() error {
	db, err := sql.Open("sqlite", d.Config.Storage.DBPath)
	if err != nil {
		return helpers.NewStorageError("open sqlite", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewStorageError("ping sqlite", err)
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) createTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS metric_samples (
			metric TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (metric, timestamp)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return helpers.NewStorageError("create metric_samples", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) SaveSamples(samples []models.MMetricSample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return helpers.NewStorageError("begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO metric_samples (metric, timestamp, value)
		VALUES (?, ?, ?)
		ON CONFLICT (metric, timestamp) DO UPDATE SET value = excluded.value
	`)
	if err != nil {
		return helpers.NewStorageError("prepare insert", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.Exec(s.Metric, s.Timestamp, s.Value); err != nil {
			return helpers.NewStorageError(fmt.Sprintf("insert %s", s.Metric), err)
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) QuerySamples(metric string, sinceMs int64, limit int) ([]models.MMetricSample, error) {
	// Newest rows first so the limit keeps the latest, then reversed
	query := `SELECT metric, timestamp, value FROM metric_samples WHERE metric = ? AND timestamp > ? ORDER BY timestamp DESC`
	args := []any{metric, sinceMs}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.DB.Query(query, args...)
	if err != nil {
		return nil, helpers.NewStorageError("query samples", err)
	}
	defer rows.Close()

	return scanSamples(rows)
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) ListMetrics() ([]string, error) {
	rows, err := d.DB.Query("SELECT DISTINCT metric FROM metric_samples ORDER BY metric")
	if err != nil {
		return nil, helpers.NewStorageError("list metrics", err)
	}
	defer rows.Close()

	return scanMetrics(rows)
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	cutoff := d.now().UTC().AddDate(0, 0, -retentionDays).UnixMilli()

	d.Logger.Info("Cleaning up data older than %d days (timestamp < %d)...", retentionDays, cutoff)

	res, err := d.DB.Exec("DELETE FROM metric_samples WHERE timestamp < ?", cutoff)
	if err != nil {
		return helpers.NewStorageError("cleanup metric_samples", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		d.Logger.Info("Cleanup completed (%d rows removed)", n)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}

var _ interfaces.IDatabase = (*AsyncSQLiteDB)(nil)
