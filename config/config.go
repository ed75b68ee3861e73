package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ExcelPath string         `yaml:"excel_path"`
	DBPath    string         `yaml:"db_path"`
	LogPath   string         `yaml:"log_path"`
	Sheet     string         `yaml:"sheet"`
	LogLevel  string         `yaml:"log_level"`
	Schedule  ScheduleConfig `yaml:"schedule"`
	S3        S3Config       `yaml:"s3"`
}

type ScheduleConfig struct {
	Cron     string        `yaml:"cron"`
	Interval time.Duration `yaml:"interval"`
}

// S3Config is only consulted when the excel path is an s3:// URL.
type S3Config struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// Load builds the config from defaults, then environment (a .env file is
// honored if present), then an optional YAML file. CLI flags are applied on
// top by the caller.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ExcelPath: getEnv("EXCEL_PATH", "data/dataset_final.xlsx"),
		DBPath:    getEnv("DB_PATH", "dataset_final.db"),
		LogPath:   getEnv("LOG_PATH", "logs/app.log"),
		Sheet:     os.Getenv("EXCEL_SHEET"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		Schedule: ScheduleConfig{
			Cron: os.Getenv("ETL_CRON"),
		},
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
	}

	if interval := os.Getenv("ETL_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err == nil {
			cfg.Schedule.Interval = d
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
