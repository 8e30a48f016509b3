// ABOUTME: Database operations for transfer_runs and transfer_items tables
// ABOUTME: Records import/export progress and serves the run history
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/gcard/models"
)

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// SaveRun inserts a run or updates its mutable columns.
func SaveRun(ctx context.Context, db *sql.DB, run *models.TransferRun) error {
	var finished sql.NullTime
	if run.FinishedAt != nil {
		finished = sql.NullTime{Time: *run.FinishedAt, Valid: true}
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO transfer_runs (id, kind, scope, state, count, import_group, import_group_id,
			last_resource, error_message, started_at, finished_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			count = excluded.count,
			import_group = excluded.import_group,
			import_group_id = excluded.import_group_id,
			last_resource = excluded.last_resource,
			error_message = excluded.error_message,
			finished_at = excluded.finished_at,
			updated_at = CURRENT_TIMESTAMP
	`, run.ID, run.Kind, nullString(run.Scope), run.State, run.Count,
		nullString(run.ImportGroup), nullString(run.ImportGroupID), nullString(run.LastResource),
		nullString(run.ErrorMessage), run.StartedAt, finished)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// CreateRunItem logs the outcome for one contact of a run.
func CreateRunItem(ctx context.Context, db *sql.DB, item *models.TransferItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO transfer_items (id, run_id, resource_name, display_name, status, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, item.ID.String(), item.RunID, nullString(item.ResourceName), item.DisplayName, item.Status,
		nullString(item.Detail), item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create run item: %w", err)
	}
	return nil
}

const runColumns = `id, kind, scope, state, count, import_group, import_group_id,
	last_resource, error_message, started_at, finished_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*models.TransferRun, error) {
	var run models.TransferRun
	var scope, group, groupID, last, errMsg sql.NullString
	var finished sql.NullTime

	if err := row.Scan(&run.ID, &run.Kind, &scope, &run.State, &run.Count, &group, &groupID,
		&last, &errMsg, &run.StartedAt, &finished); err != nil {
		return nil, err
	}
	run.Scope = scope.String
	run.ImportGroup = group.String
	run.ImportGroupID = groupID.String
	run.LastResource = last.String
	run.ErrorMessage = errMsg.String
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	return &run, nil
}

// GetRun retrieves a run by ID, nil if it does not exist.
func GetRun(ctx context.Context, db *sql.DB, id string) (*models.TransferRun, error) {
	run, err := scanRun(db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM transfer_runs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first, optionally of one kind.
func ListRuns(ctx context.Context, db *sql.DB, kind models.RunKind, limit int) ([]models.TransferRun, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + runColumns + ` FROM transfer_runs`
	args := []interface{}{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY started_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []models.TransferRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// ListRunItems returns the items of a run in the order they were logged.
func ListRunItems(ctx context.Context, db *sql.DB, runID string) ([]models.TransferItem, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, run_id, resource_name, display_name, status, detail, created_at
		FROM transfer_items
		WHERE run_id = ?
		ORDER BY created_at, rowid
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []models.TransferItem
	for rows.Next() {
		var item models.TransferItem
		var id string
		var resource, detail sql.NullString
		if err := rows.Scan(&id, &item.RunID, &resource, &item.DisplayName, &item.Status, &detail, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run item: %w", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid run item id %q: %w", id, err)
		}
		item.ID = parsed
		item.ResourceName = resource.String
		item.Detail = detail.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run items: %w", err)
	}
	return items, nil
}

// FindImportedResource returns the latest created item for a resource name, nil if none.
func FindImportedResource(ctx context.Context, db *sql.DB, resourceName string) (*models.TransferItem, error) {
	var item models.TransferItem
	var id string
	var detail sql.NullString
	err := db.QueryRowContext(ctx, `
		SELECT id, run_id, display_name, status, detail, created_at
		FROM transfer_items
		WHERE resource_name = ? AND status = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, resourceName, models.ItemCreated).Scan(&id, &item.RunID, &item.DisplayName, &item.Status, &detail, &item.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find imported resource: %w", err)
	}
	item.ID, _ = uuid.Parse(id)
	item.ResourceName = resourceName
	item.Detail = detail.String
	return &item, nil
}

// Recorder stores transfer progress in the database.
type Recorder struct {
	DB *sql.DB
}

// StartRun records a new run.
func (r *Recorder) StartRun(ctx context.Context, run *models.TransferRun) error {
	return SaveRun(ctx, r.DB, run)
}

// UpdateRun records a run's state change.
func (r *Recorder) UpdateRun(ctx context.Context, run *models.TransferRun) error {
	return SaveRun(ctx, r.DB, run)
}

// RecordItem logs a per-contact outcome.
func (r *Recorder) RecordItem(ctx context.Context, item *models.TransferItem) error {
	return CreateRunItem(ctx, r.DB, item)
}
