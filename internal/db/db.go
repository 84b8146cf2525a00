// Package db persists upload runs and their row-level telemetry: how many
// rows each upload carried, which failed and why, and how many values the
// sanitizer had to impute. The emitted result tables themselves live on
// disk; the database is the audit trail.
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/exoscan-data/exoplanet.report/internal/pipeline"
)

// DB wraps the sqlite handle.
type DB struct {
	*sql.DB
}

// NewDB opens (creating if necessary) the run database at path and applies
// any pending migrations.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Run is one persisted upload run.
type Run struct {
	RunID          string    `json:"run_id"`
	Mission        string    `json:"mission"`
	SourceName     string    `json:"source_name"`
	ProcessedFile  string    `json:"processed_file"`
	TotalRows      int       `json:"total_rows"`
	OKRows         int       `json:"ok_rows"`
	FailedRows     int       `json:"failed_rows"`
	ImputedValues  int       `json:"imputed_values"`
	Candidates     int       `json:"candidates"`
	Confirmed      int       `json:"confirmed"`
	FalsePositives int       `json:"false_positives"`
	Unknowns       int       `json:"unknowns"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewRunFromResult builds a Run record from a pipeline result.
func NewRunFromResult(runID, sourceName, processedFile string, res *pipeline.Result) Run {
	counts := res.ClassCounts()
	return Run{
		RunID:          runID,
		Mission:        res.Mission.String(),
		SourceName:     sourceName,
		ProcessedFile:  processedFile,
		TotalRows:      res.TotalRows,
		OKRows:         len(res.Records),
		FailedRows:     len(res.Failures),
		ImputedValues:  res.ImputedValues,
		Candidates:     counts[0],
		Confirmed:      counts[1],
		FalsePositives: counts[2],
		Unknowns:       counts[-1],
	}
}

// RecordRun inserts a run and its row failures in one transaction.
func (db *DB) RecordRun(run Run, failures []pipeline.RowFailure) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin run insert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (
			run_id, mission, source_name, processed_file,
			total_rows, ok_rows, failed_rows, imputed_values,
			candidates, confirmed, false_positives, unknowns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Mission, run.SourceName, run.ProcessedFile,
		run.TotalRows, run.OKRows, run.FailedRows, run.ImputedValues,
		run.Candidates, run.Confirmed, run.FalsePositives, run.Unknowns,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.RunID, err)
	}

	for _, f := range failures {
		if _, err := tx.Exec(
			`INSERT INTO row_failures (run_id, row_index, reason) VALUES (?, ?, ?)`,
			run.RunID, f.Index, f.Reason,
		); err != nil {
			return fmt.Errorf("insert row failure %d for run %s: %w", f.Index, run.RunID, err)
		}
	}

	return tx.Commit()
}

// GetRun fetches one run by ID.
func (db *DB) GetRun(runID string) (Run, error) {
	var run Run
	err := db.QueryRow(`
		SELECT run_id, mission, source_name, processed_file,
		       total_rows, ok_rows, failed_rows, imputed_values,
		       candidates, confirmed, false_positives, unknowns, created_at
		FROM runs WHERE run_id = ?`, runID).Scan(
		&run.RunID, &run.Mission, &run.SourceName, &run.ProcessedFile,
		&run.TotalRows, &run.OKRows, &run.FailedRows, &run.ImputedValues,
		&run.Candidates, &run.Confirmed, &run.FalsePositives, &run.Unknowns,
		&run.CreatedAt,
	)
	if err != nil {
		return Run{}, fmt.Errorf("load run %s: %w", runID, err)
	}
	return run, nil
}

// RecentRuns returns the most recent runs, newest first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT run_id, mission, source_name, processed_file,
		       total_rows, ok_rows, failed_rows, imputed_values,
		       candidates, confirmed, false_positives, unknowns, created_at
		FROM runs ORDER BY created_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.RunID, &run.Mission, &run.SourceName, &run.ProcessedFile,
			&run.TotalRows, &run.OKRows, &run.FailedRows, &run.ImputedValues,
			&run.Candidates, &run.Confirmed, &run.FalsePositives, &run.Unknowns,
			&run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RowFailures returns the recorded failures for a run in input order.
func (db *DB) RowFailures(runID string) ([]pipeline.RowFailure, error) {
	rows, err := db.Query(
		`SELECT row_index, reason FROM row_failures WHERE run_id = ? ORDER BY row_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query row failures for %s: %w", runID, err)
	}
	defer rows.Close()

	var failures []pipeline.RowFailure
	for rows.Next() {
		var f pipeline.RowFailure
		if err := rows.Scan(&f.Index, &f.Reason); err != nil {
			return nil, fmt.Errorf("scan row failure: %w", err)
		}
		failures = append(failures, f)
	}
	return failures, rows.Err()
}
