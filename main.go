package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cars_etl/config"
	"cars_etl/etl"
	"cars_etl/logging"
	"cars_etl/scheduler"
)

var (
	excelPath  = flag.String("excel", "", "Input Excel file (or s3://bucket/key)")
	dbPath     = flag.String("db", "", "SQLite database file or postgres:// DSN")
	logPath    = flag.String("log", "", "Log file path")
	sheet      = flag.String("sheet", "", "Sheet name or zero-based index (\"none\" selects the first sheet)")
	cronExpr   = flag.String("cron", "", "Cron expression; when set, keep running on this schedule")
	configPath = flag.String("config", "", "Optional YAML config file")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// Flags override env and config file.
	if *excelPath != "" {
		cfg.ExcelPath = *excelPath
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *logPath != "" {
		cfg.LogPath = *logPath
	}
	if *sheet != "" {
		cfg.Sheet = *sheet
	}
	if *cronExpr != "" {
		cfg.Schedule.Cron = *cronExpr
	}

	logger, logFile, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	ctx := context.Background()
	pipeline := etl.NewPipeline(cfg, logger)

	if cfg.Schedule.Cron == "" && cfg.Schedule.Interval == 0 {
		if _, err := pipeline.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("CARS ETL failed")
			logFile.Close()
			os.Exit(1)
		}
		return
	}

	// Scheduled mode: run once now, then keep going until interrupted.
	if _, err := pipeline.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("CARS ETL failed")
	}

	sched := scheduler.New(cfg.Schedule, pipeline, logger)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := sched.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to start scheduler")
		logFile.Close()
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutting down")
	sched.Stop()
}
