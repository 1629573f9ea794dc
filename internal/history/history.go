// package history persists a record of each pipeline run to SQLite.
//
// The repository follows the same conventions as the rest of the
// application's persistence: uuid primary keys, a per-table sequence
// counter for human-readable ordering, and soft deletes.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/curator/internal/shared"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusAborted   = "aborted"
	StatusFailed    = "failed"
)

// Run is one recorded pipeline execution.
type Run struct {
	ID               string     `json:"id"`
	Sequence         int        `json:"sequence"`
	Strategy         string     `json:"strategy"`
	URLsTotal        int        `json:"urls_total"`
	DownloadedOK     int        `json:"downloaded_ok"`
	DownloadedFailed int        `json:"downloaded_failed"`
	DuplicateGroups  int        `json:"duplicate_groups"`
	FilesRemoved     int        `json:"files_removed"`
	FilesMoved       int        `json:"files_moved"`
	Status           string     `json:"status"`
	StartedAt        time.Time  `json:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	deletedAt        *time.Time
}

// Validate checks required fields before persistence.
func (r *Run) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: run ID is required", shared.ErrInvalidInput)
	}
	switch r.Status {
	case StatusRunning, StatusCompleted, StatusAborted, StatusFailed:
	default:
		return fmt.Errorf("%w: unknown run status %q", shared.ErrInvalidInput, r.Status)
	}
	if r.StartedAt.IsZero() {
		return fmt.Errorf("%w: run start time is required", shared.ErrInvalidInput)
	}
	return nil
}

// RunRepository provides CRUD access to the runs table.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// nextSequence atomically increments and returns the next run sequence number.
func (r *RunRepository) nextSequence() (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE runs_sequence SET value = value + 1 WHERE id = 1"); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	if err := tx.QueryRow("SELECT value FROM runs_sequence WHERE id = 1").Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}

	return sequence, nil
}

// Create inserts a new [Run] with a generated ID and sequence.
func (r *RunRepository) Create(run *Run) error {
	sequence, err := r.nextSequence()
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	run.ID = shared.GenerateID()
	run.Sequence = sequence
	now := time.Now()
	run.CreatedAt = now
	run.UpdatedAt = now

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO runs (id, sequence, strategy, urls_total, downloaded_ok, downloaded_failed,
			duplicate_groups, files_removed, files_moved, status, started_at, finished_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		run.ID,
		run.Sequence,
		run.Strategy,
		run.URLsTotal,
		run.DownloadedOK,
		run.DownloadedFailed,
		run.DuplicateGroups,
		run.FilesRemoved,
		run.FilesMoved,
		run.Status,
		run.StartedAt,
		run.FinishedAt,
		run.CreatedAt,
		run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs.
func (r *RunRepository) Get(id string) (*Run, error) {
	query := selectColumns + " WHERE id = ? AND deleted_at IS NULL"
	return scanRun(r.db.QueryRow(query, id))
}

// Update modifies an existing run.
func (r *RunRepository) Update(run *Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	run.UpdatedAt = time.Now()

	query := `
		UPDATE runs
		SET strategy = ?, urls_total = ?, downloaded_ok = ?, downloaded_failed = ?,
			duplicate_groups = ?, files_removed = ?, files_moved = ?, status = ?,
			finished_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		run.Strategy,
		run.URLsTotal,
		run.DownloadedOK,
		run.DownloadedFailed,
		run.DuplicateGroups,
		run.FilesRemoved,
		run.FilesMoved,
		run.Status,
		run.FinishedAt,
		run.UpdatedAt,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found or already deleted: %s", run.ID)
	}

	return nil
}

// Delete soft-deletes a run by ID.
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec("UPDATE runs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves runs ordered most recent first, excluding soft-deleted
// runs. A non-positive limit returns all runs.
func (r *RunRepository) List(limit int) ([]*Run, error) {
	query := selectColumns + " WHERE deleted_at IS NULL ORDER BY sequence DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

const selectColumns = `
	SELECT id, sequence, strategy, urls_total, downloaded_ok, downloaded_failed,
		duplicate_groups, files_removed, files_moved, status, started_at, finished_at,
		created_at, updated_at, deleted_at
	FROM runs`

// scanner covers both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run        Run
		finishedAt sql.NullTime
		deletedAt  sql.NullTime
	)

	err := row.Scan(
		&run.ID,
		&run.Sequence,
		&run.Strategy,
		&run.URLsTotal,
		&run.DownloadedOK,
		&run.DownloadedFailed,
		&run.DuplicateGroups,
		&run.FilesRemoved,
		&run.FilesMoved,
		&run.Status,
		&run.StartedAt,
		&finishedAt,
		&run.CreatedAt,
		&run.UpdatedAt,
		&deletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: run", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}
	if deletedAt.Valid {
		run.deletedAt = &deletedAt.Time
	}

	return &run, nil
}
