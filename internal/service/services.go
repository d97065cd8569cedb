package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/zendesk-ingest/internal/config"
	"github.com/zendesk-ingest/internal/models"
	"github.com/zendesk-ingest/internal/repository"
	"github.com/zendesk-ingest/internal/zendesk"
)

// Fetcher is the upstream fetch surface the services depend on
type Fetcher interface {
	FetchTickets(ctx context.Context, limit int) ([]models.TicketRecord, error)
	FetchArticles(ctx context.Context, limit int) ([]models.ArticleRecord, error)
	TestConnection(ctx context.Context) bool
}

var _ Fetcher = (*zendesk.Fetcher)(nil)

// ConnectorService defines the interface for connector state operations
type ConnectorService interface {
	EnsureConnector(ctx context.Context, name string, kind models.ConnectorKind) (*models.Connector, error)
	GetConnector(ctx context.Context, id string) (*models.Connector, error)
	UpdateLastIndexed(ctx context.Context, connectorID string) error
	TestConnection(ctx context.Context) bool
	Count(ctx context.Context) (int, error)
}

// SyncService defines the interface for sync run management
type SyncService interface {
	EnqueueRun(ctx context.Context, connectorID, trigger string) (*models.SyncRun, error)
	ProcessRun(ctx context.Context, run *models.SyncRun) error
	GetRun(ctx context.Context, id string) (*models.SyncRunResponse, error)
	GetRunErrors(ctx context.Context, id string) ([]models.RecordError, error)
	GetLatestRun(ctx context.Context, connectorID string) (*models.SyncRun, error)
	CountDocuments(ctx context.Context, kind models.DocumentKind) (int, error)
	StartProcessor(ctx context.Context)
	StopProcessor()
}

// Services holds all service interfaces
type Services struct {
	Connector ConnectorService
	Sync      SyncService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, fetcher Fetcher, cfg *config.Config, log zerolog.Logger) *Services {
	connectorSvc := newConnectorService(repos.Connector, fetcher, log)
	syncSvc := newSyncService(repos, fetcher, connectorSvc, cfg, log)

	return &Services{
		Connector: connectorSvc,
		Sync:      syncSvc,
	}
}
