package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"cars_etl/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 4
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS fact_cars (
		url              TEXT PRIMARY KEY,
		regnr            TEXT UNIQUE,
		model_year       INTEGER CHECK (model_year IS NULL OR model_year >= 1900),
		price_sek        BIGINT  CHECK (price_sek IS NULL OR price_sek >= 0),
		odometer_km      BIGINT  CHECK (odometer_km IS NULL OR odometer_km >= 0),
		fuel             TEXT,
		body_type        TEXT,
		horsepower       INTEGER CHECK (horsepower IS NULL OR horsepower >= 0),
		price_per_1000km DOUBLE PRECISION CHECK (price_per_1000km IS NULL OR price_per_1000km >= 0),
		load_ts          TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS ux_fact_cars_regnr ON fact_cars(regnr);

	CREATE TABLE IF NOT EXISTS etl_runs (
		id               TEXT PRIMARY KEY,
		started_at       TIMESTAMPTZ,
		finished_at      TIMESTAMPTZ,
		status           TEXT,
		rows_extracted   INTEGER DEFAULT 0,
		rows_transformed INTEGER DEFAULT 0,
		rows_loaded      INTEGER DEFAULT 0,
		error            TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_etl_runs_started ON etl_runs(status, started_at);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

const pgUpsert = `
	INSERT INTO fact_cars (
		url, regnr, model_year, price_sek, odometer_km, fuel, body_type, horsepower, price_per_1000km, load_ts
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (url) DO UPDATE SET
		regnr = EXCLUDED.regnr,
		model_year = EXCLUDED.model_year,
		price_sek = EXCLUDED.price_sek,
		odometer_km = EXCLUDED.odometer_km,
		fuel = EXCLUDED.fuel,
		body_type = EXCLUDED.body_type,
		horsepower = EXCLUDED.horsepower,
		price_per_1000km = EXCLUDED.price_per_1000km,
		load_ts = EXCLUDED.load_ts`

func (s *PostgresStore) UpsertCars(ctx context.Context, cars []models.Car, loadTS string) (int, error) {
	if len(cars) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin upsert tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, c := range cars {
		_, err := tx.Exec(ctx, pgUpsert,
			c.URL, c.RegNr, c.ModelYear, c.PriceSEK, c.OdometerKM,
			c.Fuel, c.BodyType, c.Horsepower, c.PricePer1000KM, loadTS)
		if err != nil {
			return 0, fmt.Errorf("upsert %s: %w", c.URL, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit upsert tx: %w", err)
	}
	return len(cars), nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, run *models.EtlRun) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO etl_runs (id, started_at, status, rows_extracted, rows_transformed)
		VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.StartedAt, run.Status, run.RowsExtracted, run.RowsTransformed)
	return err
}

func (s *PostgresStore) FinishRun(ctx context.Context, run *models.EtlRun) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE etl_runs SET finished_at = $1, status = $2, rows_loaded = $3, error = $4
		WHERE id = $5`,
		run.FinishedAt, run.Status, run.RowsLoaded, run.Error, run.ID)
	return err
}
