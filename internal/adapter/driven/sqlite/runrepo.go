package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/threadsweep/internal/domain/model"
	"github.com/ericfisherdev/threadsweep/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RunStore = (*RunRepo)(nil)

// RunRepo is the SQLite implementation of the RunStore port interface.
type RunRepo struct {
	db *DB
}

// NewRunRepo creates a new RunRepo backed by the given DB.
func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// StartRun inserts a new run row.
func (r *RunRepo) StartRun(ctx context.Context, run model.Run) error {
	const query = `INSERT INTO runs (id, username, dry_run, status, started_at) VALUES (?, ?, ?, ?, ?)`

	startedAt := run.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	status := run.Status
	if status == "" {
		status = model.RunStatusRunning
	}

	_, err := r.db.Writer.ExecContext(ctx, query, run.ID, run.Username, run.DryRun, string(status), formatTime(startedAt))
	if err != nil {
		return fmt.Errorf("start run %s: %w", run.ID, err)
	}
	return nil
}

// RecordOutcome appends the outcome of one thread to a run.
func (r *RunRepo) RecordOutcome(ctx context.Context, runID string, outcome model.ThreadOutcome) error {
	const query = `INSERT INTO thread_outcomes (run_id, thread_id, repository, title, action, rule, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	recordedAt := outcome.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		runID,
		outcome.ThreadID,
		outcome.Repository,
		outcome.Title,
		string(outcome.Action),
		outcome.Rule,
		formatTime(recordedAt),
	)
	if err != nil {
		return fmt.Errorf("record outcome of thread %s in run %s: %w", outcome.ThreadID, runID, err)
	}
	return nil
}

// FinishRun stores the final counts and status of a run. Returns
// driven.ErrRunNotFound if the run was never started.
func (r *RunRepo) FinishRun(ctx context.Context, run model.Run) error {
	const query = `UPDATE runs SET status = ?, examined = ?, resolved = ?, failed = ?, error = ?, finished_at = ?
		WHERE id = ?`

	finishedAt := run.FinishedAt
	if finishedAt.IsZero() {
		finishedAt = time.Now()
	}

	result, err := r.db.Writer.ExecContext(ctx, query,
		string(run.Status),
		run.Examined,
		run.Resolved,
		run.Failed,
		run.Error,
		formatTime(finishedAt),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", run.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("finish run %s: %w", run.ID, driven.ErrRunNotFound)
	}
	return nil
}

const runColumns = `id, username, dry_run, status, examined, resolved, failed, error, started_at, finished_at`

// ListRecent returns up to limit runs, newest first.
func (r *RunRepo) ListRecent(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC LIMIT ?`
	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent runs: %w", err)
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Latest returns the most recently started run.
func (r *RunRepo) Latest(ctx context.Context) (model.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC LIMIT 1`

	run, err := scanRun(r.db.Reader.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Run{}, driven.ErrRunNotFound
	}
	if err != nil {
		return model.Run{}, err
	}
	return run, nil
}

// ListOutcomes returns the outcomes of a run in the order they were recorded.
func (r *RunRepo) ListOutcomes(ctx context.Context, runID string) ([]model.ThreadOutcome, error) {
	const query = `SELECT thread_id, repository, title, action, rule, recorded_at
		FROM thread_outcomes WHERE run_id = ? ORDER BY id`

	rows, err := r.db.Reader.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list outcomes of run %s: %w", runID, err)
	}
	defer rows.Close()

	var outcomes []model.ThreadOutcome
	for rows.Next() {
		var o model.ThreadOutcome
		var action, recordedAt string
		if err := rows.Scan(&o.ThreadID, &o.Repository, &o.Title, &action, &o.Rule, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.Action = model.OutcomeAction(action)
		o.RecordedAt, err = parseTime(recordedAt)
		if err != nil {
			return nil, fmt.Errorf("parse recorded_at: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return outcomes, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (model.Run, error) {
	var run model.Run
	var status, startedAt string
	var finishedAt sql.NullString

	err := row.Scan(
		&run.ID,
		&run.Username,
		&run.DryRun,
		&status,
		&run.Examined,
		&run.Resolved,
		&run.Failed,
		&run.Error,
		&startedAt,
		&finishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Run{}, err
	}
	if err != nil {
		return model.Run{}, fmt.Errorf("scan run: %w", err)
	}

	run.Status = model.RunStatus(status)
	run.StartedAt, err = parseTime(startedAt)
	if err != nil {
		return model.Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	if finishedAt.Valid {
		run.FinishedAt, err = parseTime(finishedAt.String)
		if err != nil {
			return model.Run{}, fmt.Errorf("parse finished_at: %w", err)
		}
	}
	return run, nil
}

// formatTime renders t in a form that sorts lexically in chronological order.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z")
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05.000000000Z",
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
