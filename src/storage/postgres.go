package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"monitor-dashboard/src/helpers"
	"monitor-dashboard/src/interfaces"
	"monitor-dashboard/src/logger"
	"monitor-dashboard/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
	now    func() time.Time
}

// -----------------------------------------------------------------------------

// NewPostgresDB names the schema after the running executable
func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return NewPostgresDBWithSchema(cfg, name, log), nil
}

// NewPostgresDBWithSchema uses an explicit schema name
func NewPostgresDBWithSchema(cfg *models.MConfig, schema string, log *logger.Logger) *PostgresDB {
	return &PostgresDB{
		Config: cfg,
		Schema: strings.ReplaceAll(schema, `"`, ""),
		Logger: log,
		now:    time.Now,
	}
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	db, err := sql.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return helpers.NewStorageError("open postgres", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewStorageError("ping postgres", err)
	}

	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return helpers.NewStorageError(fmt.Sprintf("create schema %s", d.Schema), err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) table() string {
	return fmt.Sprintf(`"%s"."metric_samples"`, d.Schema)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) createTables() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			metric TEXT NOT NULL,
			timestamp BIGINT NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (metric, timestamp)
		);
	`, d.table())
	if _, err := d.DB.Exec(query); err != nil {
		return helpers.NewStorageError("create metric_samples", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveSamples(samples []models.MMetricSample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return helpers.NewStorageError("begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT INTO %s (metric, timestamp, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (metric, timestamp) DO UPDATE SET value = EXCLUDED.value
	`, d.table()))
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

func (d *PostgresDB) QuerySamples(metric string, sinceMs int64, limit int) ([]models.MMetricSample, error) {
	query := fmt.Sprintf(`SELECT metric, timestamp, value FROM %s WHERE metric = $1 AND timestamp > $2 ORDER BY timestamp DESC`, d.table())
	args := []any{metric, sinceMs}
	if limit > 0 {
		query += ` LIMIT $3`
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

func (d *PostgresDB) ListMetrics() ([]string, error) {
	rows, err := d.DB.Query(fmt.Sprintf(`SELECT DISTINCT metric FROM %s ORDER BY metric`, d.table()))
	if err != nil {
		return nil, helpers.NewStorageError("list metrics", err)
	}
	defer rows.Close()

	return scanMetrics(rows)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	cutoff := d.now().UTC().AddDate(0, 0, -retentionDays).UnixMilli()

	d.Logger.Info("Cleaning up data older than %d days (timestamp < %d)...", retentionDays, cutoff)

	if _, err := d.DB.Exec(fmt.Sprintf(`DELETE FROM %s WHERE timestamp < $1`, d.table()), cutoff); err != nil {
		return helpers.NewStorageError("cleanup metric_samples", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}

var _ interfaces.IDatabase = (*PostgresDB)(nil)
