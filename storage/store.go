// Package storage persists normalized car listings, one row per listing url.
//
// regnr carries its own uniqueness constraint: one stored row per registered
// vehicle, no matter how many listing urls have carried it. A batch bringing
// a second url for an already-stored regnr therefore fails the whole upsert
// transaction with a conflict error. This is intentional (one canonical
// listing per vehicle) and matches the source dataset's contract.
package storage

import (
	"context"
	"strings"

	"cars_etl/models"
)

// CarStore is the persistence contract shared by the SQLite and Postgres
// backends.
type CarStore interface {
	// InitSchema creates the table, indexes and run journal if absent. Safe
	// to call on every run; never touches existing data.
	InitSchema(ctx context.Context) error

	// UpsertCars applies the whole batch in one transaction: insert each car,
	// on url conflict overwrite every non-key field with the incoming value
	// (nulls included). Returns the number of rows submitted, not changed.
	// An empty batch returns 0 without touching the database.
	UpsertCars(ctx context.Context, cars []models.Car, loadTS string) (int, error)

	CreateRun(ctx context.Context, run *models.EtlRun) error
	FinishRun(ctx context.Context, run *models.EtlRun) error

	Close() error
}

// Open selects a backend from the DSN: postgres:// connection strings get the
// Postgres store, anything else is treated as a SQLite database file path.
func Open(ctx context.Context, dsn string) (CarStore, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return NewPostgresStore(ctx, dsn)
	}
	return NewSQLiteStore(dsn)
}
