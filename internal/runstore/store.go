package runstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users clear the database after schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store persists batch runs and per-file results backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the run database and applies the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// BeginRun inserts a new run row.
func (s *Store) BeginRun(ctx context.Context, id, rootDir, outputDir string, total int) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, root_dir, output_dir, total, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, rootDir, outputDir, total, now,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordFile persists one file's result and bumps the run's counters.
func (s *Store) RecordFile(ctx context.Context, runID string, result FileResult) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO run_files (run_id, source_path, status, error, segments, elapsed_ms, finished_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, result.SourcePath, string(result.Status), nullableString(result.Error), result.Segments, result.Elapsed.Milliseconds(), now,
	)
	if err != nil {
		return fmt.Errorf("insert run file: %w", err)
	}

	column, ok := counterColumn(result.Status)
	if !ok {
		return fmt.Errorf("unknown status %q", result.Status)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("UPDATE runs SET %s = %s + 1 WHERE id = ?", column, column), runID); err != nil {
		return fmt.Errorf("bump run counter: %w", err)
	}
	return tx.Commit()
}

// FinishRun stamps the run's completion time.
func (s *Store) FinishRun(ctx context.Context, id string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `UPDATE runs SET finished_at = ? WHERE id = ?`, now, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root_dir, output_dir, total, succeeded, failed, skipped, cancelled, started_at, COALESCE(finished_at, '')
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished string
		if err := rows.Scan(&run.ID, &run.RootDir, &run.OutputDir, &run.Total, &run.Succeeded, &run.Failed, &run.Skipped, &run.Cancelled, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTimestamp(started)
		run.FinishedAt = parseTimestamp(finished)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunFiles returns every file result recorded for a run, in insertion order.
func (s *Store) RunFiles(ctx context.Context, runID string) ([]FileResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_path, status, COALESCE(error, ''), segments, elapsed_ms FROM run_files WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run files: %w", err)
	}
	defer rows.Close()

	var results []FileResult
	for rows.Next() {
		var result FileResult
		var status string
		var elapsedMS int64
		if err := rows.Scan(&result.SourcePath, &status, &result.Error, &result.Segments, &elapsedMS); err != nil {
			return nil, fmt.Errorf("scan run file: %w", err)
		}
		result.Status = Status(status)
		result.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		results = append(results, result)
	}
	return results, rows.Err()
}

func counterColumn(status Status) (string, bool) {
	switch status {
	case StatusSucceeded:
		return "succeeded", true
	case StatusFailed:
		return "failed", true
	case StatusSkipped:
		return "skipped", true
	case StatusCancelled:
		return "cancelled", true
	}
	return "", false
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	return time.Time{}
}
