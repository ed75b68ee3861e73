package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"EXCEL_PATH", "DB_PATH", "LOG_PATH", "EXCEL_SHEET", "LOG_LEVEL",
		"ETL_CRON", "ETL_INTERVAL", "S3_REGION", "S3_ENDPOINT",
		"S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.ExcelPath != "data/dataset_final.xlsx" {
		t.Errorf("unexpected excel default %q", cfg.ExcelPath)
	}
	if cfg.DBPath != "dataset_final.db" {
		t.Errorf("unexpected db default %q", cfg.DBPath)
	}
	if cfg.LogPath != "logs/app.log" {
		t.Errorf("unexpected log default %q", cfg.LogPath)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("unexpected log level default %q", cfg.LogLevel)
	}
	if cfg.Sheet != "" || cfg.Schedule.Cron != "" || cfg.Schedule.Interval != 0 {
		t.Errorf("expected empty sheet and schedule, got %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("EXCEL_PATH", "other.xlsx")
	t.Setenv("ETL_INTERVAL", "30m")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ExcelPath != "other.xlsx" {
		t.Errorf("env override ignored: %q", cfg.ExcelPath)
	}
	if cfg.Schedule.Interval.Minutes() != 30 {
		t.Errorf("interval not parsed: %v", cfg.Schedule.Interval)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "etl.yaml")
	body := []byte("excel_path: s3://bucket/cars.xlsx\ndb_path: cars.db\nlog_level: debug\nschedule:\n  cron: \"0 3 * * *\"\n")
	if err := os.WriteFile(path, body, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ExcelPath != "s3://bucket/cars.xlsx" || cfg.DBPath != "cars.db" {
		t.Errorf("yaml values not applied: %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level not applied: %q", cfg.LogLevel)
	}
	if cfg.Schedule.Cron != "0 3 * * *" {
		t.Errorf("cron not applied: %q", cfg.Schedule.Cron)
	}
	// Fields absent from the file keep their defaults.
	if cfg.LogPath != "logs/app.log" {
		t.Errorf("default lost: %q", cfg.LogPath)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
