package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"monitor-dashboard/src/helpers"
	"monitor-dashboard/src/interfaces"
	"monitor-dashboard/src/logger"
	"monitor-dashboard/src/models"

	"github.com/google/uuid"
)

func quietLogger() *logger.Logger {
	return logger.NewLoggerWithWriter("CRITICAL", "Storage", io.Discard)
}

func exerciseRecorder(t *testing.T, db interfaces.IDatabase, now time.Time) {
	t.Helper()

	old := now.AddDate(0, 0, -30).UnixMilli()
	base := now.UnixMilli()
	samples := []models.MMetricSample{
		{Metric: "cpu", Value: 1, Timestamp: old},
		{Metric: "cpu", Value: 2, Timestamp: base},
		{Metric: "cpu", Value: 3, Timestamp: base + 1000},
		{Metric: "cpu", Value: 4, Timestamp: base + 2000},
		{Metric: "mem", Value: 50, Timestamp: base},
	}
	if err := db.SaveSamples(samples); err != nil {
		t.Fatalf("SaveSamples() failed: %v", err)
	}

	// Re-saving a point overwrites it
	if err := db.SaveSamples([]models.MMetricSample{{Metric: "cpu", Value: 30, Timestamp: base + 1000}}); err != nil {
		t.Fatalf("SaveSamples() upsert failed: %v", err)
	}

	got, err := db.QuerySamples("cpu", 0, 0)
	if err != nil {
		t.Fatalf("QuerySamples() failed: %v", err)
	}
	if len(got) != 4 || got[0].Value != 1 || got[2].Value != 30 || got[3].Value != 4 {
		t.Errorf("QuerySamples(cpu) = %+v", got)
	}

	latest, err := db.QuerySamples("cpu", base, 1)
	if err != nil {
		t.Fatalf("QuerySamples() with limit failed: %v", err)
	}
	if len(latest) != 1 || latest[0].Value != 4 {
		t.Errorf("QuerySamples(cpu, since, 1) = %+v, want newest only", latest)
	}

	metrics, err := db.ListMetrics()
	if err != nil {
		t.Fatalf("ListMetrics() failed: %v", err)
	}
	if len(metrics) != 2 || metrics[0] != "cpu" || metrics[1] != "mem" {
		t.Errorf("ListMetrics() = %v, want [cpu mem]", metrics)
	}

	if err := db.CleanupOldData(); err != nil {
		t.Fatalf("CleanupOldData() failed: %v", err)
	}
	got, _ = db.QuerySamples("cpu", 0, 0)
	if len(got) != 3 {
		t.Errorf("after cleanup QuerySamples(cpu) len = %d, want 3", len(got))
	}

	none, err := db.QuerySamples("disk", 0, 0)
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("QuerySamples(disk) = %v, %v; want empty slice", none, err)
	}
}

func TestSQLiteRecorder(t *testing.T) {
	cfg := &models.MConfig{Storage: models.MStorageConfig{
		DBType:        "sqlite",
		DBPath:        filepath.Join(t.TempDir(), "samples.db"),
		RetentionDays: 7,
	}}

	db, err := NewAsyncSQLiteDB(cfg, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return now }

	if err := db.Initialize(); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	defer db.Close()

	exerciseRecorder(t, db, now)

	// Initialize is safe to repeat and keeps data
	if err := db.createTables(); err != nil {
		t.Errorf("createTables() twice failed: %v", err)
	}
	if got, _ := db.QuerySamples("mem", 0, 0); len(got) != 1 {
		t.Errorf("mem samples lost: %+v", got)
	}
}

func TestPostgresRecorder(t *testing.T) {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}

	cfg := &models.MConfig{Storage: models.MStorageConfig{
		DBType:             "postgres",
		DBConnectionString: dsn,
		RetentionDays:      7,
	}}
	schema := "monitor_test_" + uuid.NewString()[:8]
	db := NewPostgresDBWithSchema(cfg, schema, quietLogger())
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return now }

	if err := db.Initialize(); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	defer func() {
		db.DB.Exec(`DROP SCHEMA "` + schema + `" CASCADE`)
		db.Close()
	}()

	exerciseRecorder(t, db, now)
}

func TestNewDatabase(t *testing.T) {
	tests := []struct {
		name    string
		storage models.MStorageConfig
		wantNil bool
		wantErr bool
	}{
		{"none", models.MStorageConfig{DBType: "none"}, true, false},
		{"empty", models.MStorageConfig{}, true, false},
		{"sqlite", models.MStorageConfig{DBType: "sqlite", DBPath: "x.db"}, false, false},
		{"sqlite without path", models.MStorageConfig{DBType: "sqlite"}, true, true},
		{"unknown", models.MStorageConfig{DBType: "mysql"}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := NewDatabase(&models.MConfig{Storage: tt.storage}, quietLogger())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewDatabase() error = %v, wantErr %v", err, tt.wantErr)
			}
			if (db == nil) != tt.wantNil {
				t.Errorf("NewDatabase() = %v, wantNil %v", db, tt.wantNil)
			}
			var cfgErr *helpers.ConfigurationError
			if err != nil && !errors.As(err, &cfgErr) {
				t.Errorf("error %v is not a *helpers.ConfigurationError", err)
			}
		})
	}
}
