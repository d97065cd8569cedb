package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/zendesk-ingest/internal/database"
	"github.com/zendesk-ingest/internal/models"
)

// syncRunRepo is the concrete implementation of SyncRunRepository
type syncRunRepo struct {
	db *database.DB
}

// NewSyncRunRepo creates a new sync run repository
func NewSyncRunRepo(db *database.DB) SyncRunRepository {
	return &syncRunRepo{db: db}
}

// Create inserts a new sync run
func (r *syncRunRepo) Create(ctx context.Context, run *models.SyncRun) error {
	query := `
		INSERT INTO sync_runs (id, connector_id, trigger, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.ConnectorID, run.Trigger, run.Status, run.CreatedAt,
	)
	return err
}

// Update updates run status and counters
func (r *syncRunRepo) Update(ctx context.Context, run *models.SyncRun) error {
	query := `
		UPDATE sync_runs SET
			status = $1, ticket_count = $2, article_count = $3, document_count = $4,
			skipped_count = $5, duration_ms = $6, records_per_sec = $7, error = $8,
			started_at = $9, completed_at = $10
		WHERE id = $11
	`
	_, err := r.db.ExecContext(ctx, query,
		run.Status, run.TicketCount, run.ArticleCount, run.DocumentCount,
		run.SkippedCount, run.DurationMs, run.RecordsPerSec, run.Error,
		run.StartedAt, run.CompletedAt, run.ID,
	)
	return err
}

const runColumns = `id, connector_id, trigger, status, ticket_count, article_count,
	document_count, skipped_count, duration_ms, records_per_sec, error,
	created_at, started_at, completed_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*models.SyncRun, error) {
	var run models.SyncRun
	var startedAt, completedAt sql.NullTime

	err := row.Scan(
		&run.ID, &run.ConnectorID, &run.Trigger, &run.Status, &run.TicketCount,
		&run.ArticleCount, &run.DocumentCount, &run.SkippedCount, &run.DurationMs,
		&run.RecordsPerSec, &run.Error, &run.CreatedAt, &startedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if startedAt.Valid {
		run.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}

	return &run, nil
}

// GetByID retrieves a sync run by ID. A malformed id is treated the same
// as an unknown one.
func (r *syncRunRepo) GetByID(ctx context.Context, id string) (*models.SyncRun, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	query := `SELECT ` + runColumns + ` FROM sync_runs WHERE id = $1`
	return scanRun(r.db.QueryRowContext(ctx, query, id))
}

// GetLatestByConnector retrieves the most recent run for a connector
func (r *syncRunRepo) GetLatestByConnector(ctx context.Context, connectorID string) (*models.SyncRun, error) {
	query := `SELECT ` + runColumns + ` FROM sync_runs WHERE connector_id = $1 ORDER BY created_at DESC LIMIT 1`
	return scanRun(r.db.QueryRowContext(ctx, query, connectorID))
}

// GetPendingRuns retrieves all pending sync runs
func (r *syncRunRepo) GetPendingRuns(ctx context.Context) ([]*models.SyncRun, error) {
	query := `
		SELECT id, connector_id, trigger, created_at
		FROM sync_runs WHERE status = 'pending'
		ORDER BY created_at
		FOR UPDATE SKIP LOCKED
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		var run models.SyncRun
		if err := rows.Scan(&run.ID, &run.ConnectorID, &run.Trigger, &run.CreatedAt); err != nil {
			continue
		}
		run.Status = models.SyncStatusPending
		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// MarkRunAsRunning atomically claims a pending run
func (r *syncRunRepo) MarkRunAsRunning(ctx context.Context, runID string) (bool, error) {
	query := `
		UPDATE sync_runs SET status = 'running', started_at = $1
		WHERE id = $2 AND status = 'pending'
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), runID)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// AddErrors records skipped records using the COPY protocol. A run over a
// large tenant can skip thousands of records; COPY keeps that one round
// trip.
func (r *syncRunRepo) AddErrors(ctx context.Context, runID string, errs []models.RecordError) error {
	if len(errs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("sync_errors",
		"run_id", "kind", "source_id", "field", "message",
	))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range errs {
		if _, err := stmt.ExecContext(ctx, runID, e.Kind, e.SourceID, e.Field, e.Message); err != nil {
			return err
		}
	}

	// Flush the COPY buffer
	if _, err := stmt.ExecContext(ctx); err != nil {
		return err
	}

	return tx.Commit()
}

// GetErrors retrieves skipped-record errors for a run
func (r *syncRunRepo) GetErrors(ctx context.Context, runID string, limit int) ([]models.RecordError, error) {
	query := `SELECT kind, source_id, field, message FROM sync_errors WHERE run_id = $1 ORDER BY id`
	if limit > 0 {
		query += " LIMIT $2"
	}

	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query, runID, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query, runID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var errs []models.RecordError
	for rows.Next() {
		var e models.RecordError
		if err := rows.Scan(&e.Kind, &e.SourceID, &e.Field, &e.Message); err != nil {
			continue
		}
		errs = append(errs, e)
	}

	return errs, rows.Err()
}
