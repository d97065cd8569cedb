package repository

import (
	"context"
	"time"

	"github.com/zendesk-ingest/internal/database"
	"github.com/zendesk-ingest/internal/models"
)

// ConnectorRepository defines the interface for connector data operations
type ConnectorRepository interface {
	EnsureConnector(ctx context.Context, name string, kind models.ConnectorKind) (*models.Connector, error)
	GetByID(ctx context.Context, id string) (*models.Connector, error)
	Count(ctx context.Context) (int, error)
	StampLastIndexed(ctx context.Context, id string, at time.Time) (bool, error)
}

// DocumentRepository defines the interface for document data operations
type DocumentRepository interface {
	UpsertBatch(ctx context.Context, docs []*models.Document) (int, error)
	GetBySource(ctx context.Context, connectorID string, kind models.DocumentKind, sourceID string) (*models.Document, error)
	Count(ctx context.Context) (int, error)
	CountByKind(ctx context.Context, kind models.DocumentKind) (int, error)
}

// SyncRunRepository defines the interface for sync run data operations
type SyncRunRepository interface {
	Create(ctx context.Context, run *models.SyncRun) error
	Update(ctx context.Context, run *models.SyncRun) error
	GetByID(ctx context.Context, id string) (*models.SyncRun, error)
	GetLatestByConnector(ctx context.Context, connectorID string) (*models.SyncRun, error)
	GetPendingRuns(ctx context.Context) ([]*models.SyncRun, error)
	MarkRunAsRunning(ctx context.Context, runID string) (bool, error)
	AddErrors(ctx context.Context, runID string, errs []models.RecordError) error
	GetErrors(ctx context.Context, runID string, limit int) ([]models.RecordError, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Connector ConnectorRepository
	Document  DocumentRepository
	SyncRun   SyncRunRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Connector: NewConnectorRepo(db),
		Document:  NewDocumentRepo(db),
		SyncRun:   NewSyncRunRepo(db),
	}
}
