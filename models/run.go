package models

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// EtlRun is one journal entry in etl_runs, written at the start of each load
// and finalized when the run ends.
type EtlRun struct {
	ID              string     `json:"id" db:"id"`
	StartedAt       time.Time  `json:"started_at" db:"started_at"`
	FinishedAt      *time.Time `json:"finished_at" db:"finished_at"`
	Status          RunStatus  `json:"status" db:"status"`
	RowsExtracted   int        `json:"rows_extracted" db:"rows_extracted"`
	RowsTransformed int        `json:"rows_transformed" db:"rows_transformed"`
	RowsLoaded      int        `json:"rows_loaded" db:"rows_loaded"`
	Error           string     `json:"error" db:"error"`
}
