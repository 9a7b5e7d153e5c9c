package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when a run id has no row.
var ErrRunNotFound = errors.New("run not found")

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("journal path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection keeps PRAGMA settings in effect for every statement.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// StartRun inserts a run row in the running state.
func (s *Store) StartRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is empty")
	}
	started := run.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (id, status, input_dir, output_dir, items_total, started_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		StatusRunning,
		run.InputDir,
		run.OutputDir,
		run.ItemsTotal,
		formatTime(started),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// SetItemsTotal records the ordered corpus size once it is known.
func (s *Store) SetItemsTotal(ctx context.Context, runID string, total int) error {
	res, err := s.db.ExecContext(ctx, `UPDATE runs SET items_total = ? WHERE id = ?`, total, runID)
	if err != nil {
		return fmt.Errorf("update run items: %w", err)
	}
	return requireRow(res, runID)
}

// RecordPart stores an assembled part for the run.
func (s *Store) RecordPart(ctx context.Context, part Part) error {
	created := part.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO parts (run_id, part_index, path, first_date, last_date, photo_count, size_bytes, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		part.RunID,
		part.Index,
		part.Path,
		formatTime(part.FirstDate),
		formatTime(part.LastDate),
		part.Count,
		part.SizeBytes,
		formatTime(created),
	)
	if err != nil {
		return fmt.Errorf("insert part %d: %w", part.Index, err)
	}
	return nil
}

// FinishRun stamps the outcome and finish time on a run.
func (s *Store) FinishRun(ctx context.Context, runID string, outcome Outcome) error {
	if !outcome.Status.IsTerminal() {
		return fmt.Errorf("finish run: status %q is not terminal", outcome.Status)
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE runs
         SET status = ?, parts_total = ?, photos_total = ?, merged_path = ?, error_message = ?, finished_at = ?
         WHERE id = ?`,
		outcome.Status,
		outcome.PartsTotal,
		outcome.PhotosTotal,
		nullableString(outcome.MergedPath),
		nullableString(outcome.ErrorMessage),
		formatTime(time.Now()),
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return requireRow(res, runID)
}

// GetRun fetches one run by id.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. A non-positive limit returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Parts returns the parts of a run ordered by index.
func (s *Store) Parts(ctx context.Context, runID string) ([]Part, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT run_id, part_index, path, first_date, last_date, photo_count, size_bytes, created_at
         FROM parts WHERE run_id = ? ORDER BY part_index`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}
	defer rows.Close()

	var parts []Part
	for rows.Next() {
		var (
			p                          Part
			firstRaw, lastRaw, created string
		)
		if err := rows.Scan(&p.RunID, &p.Index, &p.Path, &firstRaw, &lastRaw, &p.Count, &p.SizeBytes, &created); err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		p.FirstDate = parseTime(firstRaw)
		p.LastDate = parseTime(lastRaw)
		p.CreatedAt = parseTime(created)
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

// MarkAbandoned finalizes runs left in the running state by a process that
// exited without finishing them. The caller must hold the output lock.
func (s *Store) MarkAbandoned(ctx context.Context, outputDir string) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET status = ?, error_message = ?, finished_at = ?
         WHERE status = ? AND output_dir = ?`,
		StatusFailed,
		"abandoned: process exited before the run finished",
		formatTime(time.Now()),
		StatusRunning,
		outputDir,
	)
	if err != nil {
		return 0, fmt.Errorf("mark abandoned runs: %w", err)
	}
	return res.RowsAffected()
}
