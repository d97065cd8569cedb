package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/zendesk-ingest/internal/database"
	"github.com/zendesk-ingest/internal/models"
)

// connectorRepo is the concrete implementation of ConnectorRepository
type connectorRepo struct {
	db *database.DB
}

// NewConnectorRepo creates a new connector repository
func NewConnectorRepo(db *database.DB) ConnectorRepository {
	return &connectorRepo{db: db}
}

// EnsureConnector inserts the connector row if absent and returns the
// stored row either way.
func (r *connectorRepo) EnsureConnector(ctx context.Context, name string, kind models.ConnectorKind) (*models.Connector, error) {
	query := `
		INSERT INTO connectors (id, name, kind, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET kind = EXCLUDED.kind
		RETURNING id, name, kind, created_at, last_indexed_at
	`

	var connector models.Connector
	var lastIndexedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, uuid.New().String(), name, kind, time.Now()).Scan(
		&connector.ID, &connector.Name, &connector.Kind, &connector.CreatedAt, &lastIndexedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastIndexedAt.Valid {
		connector.LastIndexedAt = &lastIndexedAt.Time
	}

	return &connector, nil
}

// GetByID retrieves a connector by ID. A malformed id is treated the same
// as an unknown one.
func (r *connectorRepo) GetByID(ctx context.Context, id string) (*models.Connector, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	query := `SELECT id, name, kind, created_at, last_indexed_at FROM connectors WHERE id = $1`

	var connector models.Connector
	var lastIndexedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&connector.ID, &connector.Name, &connector.Kind, &connector.CreatedAt, &lastIndexedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if lastIndexedAt.Valid {
		connector.LastIndexedAt = &lastIndexedAt.Time
	}

	return &connector, nil
}

// Count returns the total number of connectors
func (r *connectorRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM connectors").Scan(&count)
	return count, err
}

// StampLastIndexed sets last_indexed_at on the connector row. It reports
// false when no row has the given id. The single UPDATE keeps concurrent
// stampers last-write-wins without explicit locking.
func (r *connectorRepo) StampLastIndexed(ctx context.Context, id string, at time.Time) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	result, err := r.db.ExecContext(ctx, `UPDATE connectors SET last_indexed_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}
