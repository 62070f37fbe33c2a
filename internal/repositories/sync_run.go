package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
)

// SyncRunRepository implements models.Repository[*models.SyncRun] for library sync bookkeeping.
//
// Handles sync run CRUD operations with soft delete support and status-based queries.
type SyncRunRepository struct {
	db *sql.DB
}

// NewSyncRunRepository creates a new SyncRunRepository with the given database connection
func NewSyncRunRepository(db *sql.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

// Create inserts a new sync run into the database with generated ID and sequence
func (r *SyncRunRepository) Create(run *models.SyncRun) error {
	sequence, err := NextSequence(r.db, "sync_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	run.SetID(id)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO sync_runs (
			id, sequence, status, total, synced, failed, error,
			started_at, finished_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var errorMessage any = run.ErrorMessage()
	if errorMessage == "" {
		errorMessage = nil
	}

	_, err = r.db.Exec(query,
		id,
		sequence,
		run.Status(),
		run.Total(),
		run.Synced(),
		run.Failed(),
		errorMessage,
		run.StartedAt(),
		run.FinishedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync run: %w", err)
	}

	return nil
}

// Get retrieves a sync run by ID, excluding soft-deleted runs
func (r *SyncRunRepository) Get(id string) (*models.SyncRun, error) {
	query := `
		SELECT
			id, sequence, status, total, synced, failed, error,
			started_at, finished_at, created_at, updated_at, deleted_at
		FROM sync_runs
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// Update modifies an existing sync run in the database
func (r *SyncRunRepository) Update(run *models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE sync_runs
		SET status = ?, total = ?, synced = ?, failed = ?, error = ?,
			started_at = ?, finished_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	var errorMessage any = run.ErrorMessage()
	if errorMessage == "" {
		errorMessage = nil
	}

	result, err := r.db.Exec(query,
		run.Status(),
		run.Total(),
		run.Synced(),
		run.Failed(),
		errorMessage,
		run.StartedAt(),
		run.FinishedAt(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update sync run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("sync run not found or already deleted: %s", run.ID())
	}

	return nil
}

// Delete soft-deletes a sync run by ID
func (r *SyncRunRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE sync_runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete sync run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("sync run not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all sync runs matching the given criteria, excluding soft-deleted runs
func (r *SyncRunRepository) List(criteria map[string]any) ([]*models.SyncRun, error) {
	query := `
		SELECT
			id, sequence, status, total, synced, failed, error,
			started_at, finished_at, created_at, updated_at, deleted_at
		FROM sync_runs
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		run, err := r.scanRow(rows)
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

// scanOne scans a single [sql.Row] into a [models.SyncRun]
func (r *SyncRunRepository) scanOne(row *sql.Row) (*models.SyncRun, error) {
	var (
		id           string
		sequence     int
		status       string
		total        int
		synced       int
		failed       int
		errorMessage sql.NullString
		startedAt    sql.NullTime
		finishedAt   sql.NullTime
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &status, &total, &synced, &failed, &errorMessage,
		&startedAt, &finishedAt, &createdAt, &updatedAt, &deletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sync run not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sync run: %w", err)
	}

	run := models.NewSyncRun(sequence)
	run.SetID(id)
	run.SetStatus(status)
	run.SetTotal(total)
	run.SetSynced(synced)
	run.SetFailed(failed)
	run.SetUpdatedAt(updatedAt)

	if errorMessage.Valid {
		run.SetErrorMessage(errorMessage.String)
	}
	if startedAt.Valid {
		run.SetStartedAt(&startedAt.Time)
	}
	if finishedAt.Valid {
		run.SetFinishedAt(&finishedAt.Time)
	}
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}

// scanRow scans a row from [sql.Rows] into a [models.SyncRun]
func (r *SyncRunRepository) scanRow(rows *sql.Rows) (*models.SyncRun, error) {
	var (
		id           string
		sequence     int
		status       string
		total        int
		synced       int
		failed       int
		errorMessage sql.NullString
		startedAt    sql.NullTime
		finishedAt   sql.NullTime
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := rows.Scan(
		&id, &sequence, &status, &total, &synced, &failed, &errorMessage,
		&startedAt, &finishedAt, &createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan sync run: %w", err)
	}

	run := models.NewSyncRun(sequence)
	run.SetID(id)
	run.SetStatus(status)
	run.SetTotal(total)
	run.SetSynced(synced)
	run.SetFailed(failed)
	run.SetUpdatedAt(updatedAt)

	if errorMessage.Valid {
		run.SetErrorMessage(errorMessage.String)
	}
	if startedAt.Valid {
		run.SetStartedAt(&startedAt.Time)
	}
	if finishedAt.Valid {
		run.SetFinishedAt(&finishedAt.Time)
	}
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}
