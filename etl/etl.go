// Package etl sequences the pipeline: extract the spreadsheet, transform the
// rows, load them into the store. Any stage failure aborts the run and
// bubbles to the caller unmodified.
package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cars_etl/config"
	"cars_etl/extract"
	"cars_etl/models"
	"cars_etl/storage"
	"cars_etl/transform"
)

type Pipeline struct {
	cfg *config.Config
	log zerolog.Logger
}

func NewPipeline(cfg *config.Config, log zerolog.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, log: log}
}

// Run executes one full extract-transform-load pass and returns the number
// of rows submitted to the upsert.
func (p *Pipeline) Run(ctx context.Context) (int, error) {
	p.log.Info().Msg("=== CARS ETL START ===")
	p.log.Info().
		Str("excel", p.cfg.ExcelPath).
		Str("db", p.cfg.DBPath).
		Str("log", p.cfg.LogPath).
		Msg("run parameters")

	path, cleanup, err := extract.FetchInput(ctx, p.log, p.cfg.S3, p.cfg.ExcelPath)
	if err != nil {
		return 0, err
	}
	defer cleanup()

	table, err := extract.NewExtractor(p.log).ReadExcel(path, extract.ParseSheet(p.cfg.Sheet))
	if err != nil {
		return 0, err
	}

	cars := transform.New(p.log).Transform(table)

	affected, err := p.load(ctx, cars, len(table.Rows))
	if err != nil {
		return 0, err
	}

	p.log.Info().Int("rows", affected).Msg("=== CARS ETL DONE ===")
	return affected, nil
}

// load opens the store for the duration of this call only: schema init, run
// journal entry, one upsert transaction, then the connection is released no
// matter what happened.
func (p *Pipeline) load(ctx context.Context, cars []models.Car, extracted int) (int, error) {
	p.log.Info().Str("db", p.cfg.DBPath).Int("rows", len(cars)).Msg("load: upserting")

	store, err := storage.Open(ctx, p.cfg.DBPath)
	if err != nil {
		return 0, fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	if err := store.InitSchema(ctx); err != nil {
		return 0, fmt.Errorf("init schema: %w", err)
	}

	run := &models.EtlRun{
		ID:              uuid.NewString(),
		StartedAt:       time.Now().UTC(),
		Status:          models.RunStatusRunning,
		RowsExtracted:   extracted,
		RowsTransformed: len(cars),
	}
	if err := store.CreateRun(ctx, run); err != nil {
		p.log.Warn().Err(err).Msg("load: could not record run start")
	}

	loadTS := time.Now().UTC().Format(time.RFC3339)
	affected, upsertErr := store.UpsertCars(ctx, cars, loadTS)

	now := time.Now().UTC()
	run.FinishedAt = &now
	if upsertErr != nil {
		run.Status = models.RunStatusFailed
		run.Error = upsertErr.Error()
	} else {
		run.Status = models.RunStatusCompleted
		run.RowsLoaded = affected
	}
	if err := store.FinishRun(ctx, run); err != nil {
		p.log.Warn().Err(err).Msg("load: could not record run end")
	}

	if upsertErr != nil {
		return 0, upsertErr
	}

	p.log.Info().Int("rows", affected).Msg("load: upsert complete")
	return affected, nil
}
