package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dmaloney/deepscan/internal/usecase/detect"
)

// Store implements the detect.Store interface using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates all tables and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	-- Stores metadata about each detection run
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		video TEXT NOT NULL,
		sampling TEXT NOT NULL,
		frames_analyzed INTEGER NOT NULL,
		classification TEXT NOT NULL,
		confidence INTEGER NOT NULL,
		combined_score REAL NOT NULL
	);

	-- Individual heuristic findings from each run
	CREATE TABLE IF NOT EXISTS findings (
		finding_id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		source TEXT NOT NULL CHECK(source IN ('visual', 'temporal')),
		frame_index INTEGER NOT NULL,
		description TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
	);

	-- Indexes for performance
	CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_video ON runs(video);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateRun stores a new detection run.
func (s *Store) CreateRun(ctx context.Context, run detect.StoreRun) error {
	query := `
		INSERT INTO runs (run_id, timestamp, video, sampling, frames_analyzed, classification, confidence, combined_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		run.RunID,
		run.Timestamp.Unix(),
		run.Video,
		run.Sampling,
		run.FramesAnalyzed,
		run.Classification,
		run.Confidence,
		run.CombinedScore,
	)

	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// SaveFindings stores findings in a single transaction.
func (s *Store) SaveFindings(ctx context.Context, findings []detect.StoreFinding) error {
	if len(findings) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO findings (finding_id, run_id, source, frame_index, description)
		VALUES (?, ?, ?, ?, ?)
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, f := range findings {
		if _, err := stmt.ExecContext(ctx,
			f.FindingID,
			f.RunID,
			f.Source,
			f.FrameIndex,
			f.Description,
		); err != nil {
			return fmt.Errorf("failed to save finding %s: %w", f.FindingID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit findings: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (detect.StoreRun, error) {
	query := `
		SELECT run_id, timestamp, video, sampling, frames_analyzed, classification, confidence, combined_score
		FROM runs WHERE run_id = ?
	`

	var run detect.StoreRun
	var ts int64
	err := s.db.QueryRowContext(ctx, query, runID).Scan(
		&run.RunID,
		&ts,
		&run.Video,
		&run.Sampling,
		&run.FramesAnalyzed,
		&run.Classification,
		&run.Confidence,
		&run.CombinedScore,
	)
	if err == sql.ErrNoRows {
		return detect.StoreRun{}, fmt.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return detect.StoreRun{}, fmt.Errorf("failed to get run: %w", err)
	}

	run.Timestamp = time.Unix(ts, 0).UTC()
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]detect.StoreRun, error) {
	query := `
		SELECT run_id, timestamp, video, sampling, frames_analyzed, classification, confidence, combined_score
		FROM runs ORDER BY timestamp DESC LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []detect.StoreRun
	for rows.Next() {
		var run detect.StoreRun
		var ts int64
		if err := rows.Scan(
			&run.RunID,
			&ts,
			&run.Video,
			&run.Sampling,
			&run.FramesAnalyzed,
			&run.Classification,
			&run.Confidence,
			&run.CombinedScore,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Timestamp = time.Unix(ts, 0).UTC()
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// FindingsForRun returns all findings recorded for a run, in insertion order.
func (s *Store) FindingsForRun(ctx context.Context, runID string) ([]detect.StoreFinding, error) {
	query := `
		SELECT finding_id, run_id, source, frame_index, description
		FROM findings WHERE run_id = ? ORDER BY finding_id
	`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer rows.Close()

	var findings []detect.StoreFinding
	for rows.Next() {
		var f detect.StoreFinding
		if err := rows.Scan(&f.FindingID, &f.RunID, &f.Source, &f.FrameIndex, &f.Description); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		findings = append(findings, f)
	}

	return findings, rows.Err()
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
