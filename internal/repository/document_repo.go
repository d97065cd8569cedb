package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/zendesk-ingest/internal/database"
	"github.com/zendesk-ingest/internal/models"
)

// documentRepo is the concrete implementation of DocumentRepository
type documentRepo struct {
	db *database.DB
}

// NewDocumentRepo creates a new document repository
func NewDocumentRepo(db *database.DB) DocumentRepository {
	return &documentRepo{db: db}
}

// UpsertBatch writes documents in one transaction, refreshing rows that
// already exist for the same (connector, kind, source) key. Re-running a
// sync is idempotent. Returns the number of rows written.
func (r *documentRepo) UpsertBatch(ctx context.Context, docs []*models.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO documents (id, connector_id, kind, source_id, title, url, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (connector_id, kind, source_id) DO UPDATE SET
			title = EXCLUDED.title,
			url = EXCLUDED.url,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now()
	written := 0

	for _, doc := range docs {
		_, err := stmt.ExecContext(ctx,
			doc.ID, doc.ConnectorID, doc.Kind, doc.SourceID, doc.Title, doc.URL,
			[]byte(doc.Payload), doc.CreatedAt, now,
		)
		if err != nil {
			return 0, err
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return written, nil
}

// GetBySource retrieves a document by its upstream identity
func (r *documentRepo) GetBySource(ctx context.Context, connectorID string, kind models.DocumentKind, sourceID string) (*models.Document, error) {
	query := `
		SELECT id, connector_id, kind, source_id, title, url, payload, created_at, updated_at
		FROM documents WHERE connector_id = $1 AND kind = $2 AND source_id = $3
	`

	var doc models.Document
	var payload []byte

	err := r.db.QueryRowContext(ctx, query, connectorID, kind, sourceID).Scan(
		&doc.ID, &doc.ConnectorID, &doc.Kind, &doc.SourceID, &doc.Title, &doc.URL,
		&payload, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	doc.Payload = payload

	return &doc, nil
}

// Count returns the total number of documents
func (r *documentRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&count)
	return count, err
}

// CountByKind returns the number of documents of one kind
func (r *documentRepo) CountByKind(ctx context.Context, kind models.DocumentKind) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE kind = $1", kind).Scan(&count)
	return count, err
}
