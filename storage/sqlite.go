package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"cars_etl/models"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=30000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS fact_cars (
		url              TEXT PRIMARY KEY,
		regnr            TEXT UNIQUE,
		model_year       INTEGER CHECK (model_year IS NULL OR model_year >= 1900),
		price_sek        INTEGER CHECK (price_sek IS NULL OR price_sek >= 0),
		odometer_km      INTEGER CHECK (odometer_km IS NULL OR odometer_km >= 0),
		fuel             TEXT,
		body_type        TEXT,
		horsepower       INTEGER CHECK (horsepower IS NULL OR horsepower >= 0),
		price_per_1000km REAL    CHECK (price_per_1000km IS NULL OR price_per_1000km >= 0),
		load_ts          TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS ux_fact_cars_regnr ON fact_cars(regnr);

	CREATE TABLE IF NOT EXISTS etl_runs (
		id               TEXT PRIMARY KEY,
		started_at       DATETIME,
		finished_at      DATETIME,
		status           TEXT,
		rows_extracted   INTEGER DEFAULT 0,
		rows_transformed INTEGER DEFAULT 0,
		rows_loaded      INTEGER DEFAULT 0,
		error            TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_etl_runs_started ON etl_runs(status, started_at);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

const sqliteUpsert = `
	INSERT INTO fact_cars (
		url, regnr, model_year, price_sek, odometer_km, fuel, body_type, horsepower, price_per_1000km, load_ts
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		regnr = excluded.regnr,
		model_year = excluded.model_year,
		price_sek = excluded.price_sek,
		odometer_km = excluded.odometer_km,
		fuel = excluded.fuel,
		body_type = excluded.body_type,
		horsepower = excluded.horsepower,
		price_per_1000km = excluded.price_per_1000km,
		load_ts = excluded.load_ts`

func (s *SQLiteStore) UpsertCars(ctx context.Context, cars []models.Car, loadTS string) (int, error) {
	if len(cars) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin upsert tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, sqliteUpsert)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, c := range cars {
		_, err := stmt.ExecContext(ctx,
			c.URL, c.RegNr, c.ModelYear, c.PriceSEK, c.OdometerKM,
			c.Fuel, c.BodyType, c.Horsepower, c.PricePer1000KM, loadTS)
		if err != nil {
			return 0, fmt.Errorf("upsert %s: %w", c.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert tx: %w", err)
	}
	return len(cars), nil
}

func (s *SQLiteStore) CreateRun(ctx context.Context, run *models.EtlRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO etl_runs (id, started_at, status, rows_extracted, rows_transformed)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.Status, run.RowsExtracted, run.RowsTransformed)
	return err
}

func (s *SQLiteStore) FinishRun(ctx context.Context, run *models.EtlRun) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE etl_runs SET finished_at = ?, status = ?, rows_loaded = ?, error = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.RowsLoaded, run.Error, run.ID)
	return err
}
