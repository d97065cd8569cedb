package mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/zendesk-ingest/internal/api"
	"github.com/zendesk-ingest/internal/models"
	"github.com/zendesk-ingest/internal/service"
)

// MockConnectorService is a mock implementation of ConnectorService
type MockConnectorService struct {
	Connectors  map[string]*models.Connector
	Connected   bool
	UpdateError error
	UpdatedIDs  []string
}

// Verify interface compliance
var _ service.ConnectorService = (*MockConnectorService)(nil)

func NewMockConnectorService() *MockConnectorService {
	return &MockConnectorService{
		Connectors: make(map[string]*models.Connector),
	}
}

func (m *MockConnectorService) EnsureConnector(ctx context.Context, name string, kind models.ConnectorKind) (*models.Connector, error) {
	connector := &models.Connector{
		ID:        "test-connector-id",
		Name:      name,
		Kind:      kind,
		CreatedAt: time.Now(),
	}
	m.Connectors[connector.ID] = connector
	return connector, nil
}

func (m *MockConnectorService) GetConnector(ctx context.Context, id string) (*models.Connector, error) {
	return m.Connectors[id], nil
}

func (m *MockConnectorService) UpdateLastIndexed(ctx context.Context, connectorID string) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.UpdatedIDs = append(m.UpdatedIDs, connectorID)
	return nil
}

func (m *MockConnectorService) TestConnection(ctx context.Context) bool {
	return m.Connected
}

func (m *MockConnectorService) Count(ctx context.Context) (int, error) {
	return len(m.Connectors), nil
}

// MockSyncService is a mock implementation of SyncService
type MockSyncService struct {
	Runs         map[string]*models.SyncRunResponse
	Errors       map[string][]models.RecordError
	Counts       map[models.DocumentKind]int
	EnqueueError error
	EnqueuedRuns []*models.SyncRun
}

// Verify interface compliance
var _ service.SyncService = (*MockSyncService)(nil)

func NewMockSyncService() *MockSyncService {
	return &MockSyncService{
		Runs:   make(map[string]*models.SyncRunResponse),
		Errors: make(map[string][]models.RecordError),
		Counts: make(map[models.DocumentKind]int),
	}
}

func (m *MockSyncService) EnqueueRun(ctx context.Context, connectorID, trigger string) (*models.SyncRun, error) {
	if m.EnqueueError != nil {
		return nil, m.EnqueueError
	}
	run := &models.SyncRun{
		ID:          "test-run-id",
		ConnectorID: connectorID,
		Trigger:     trigger,
		Status:      models.SyncStatusPending,
		CreatedAt:   time.Now(),
	}
	m.EnqueuedRuns = append(m.EnqueuedRuns, run)
	return run, nil
}

func (m *MockSyncService) ProcessRun(ctx context.Context, run *models.SyncRun) error {
	run.Status = models.SyncStatusCompleted
	return nil
}

func (m *MockSyncService) GetRun(ctx context.Context, id string) (*models.SyncRunResponse, error) {
	return m.Runs[id], nil
}

func (m *MockSyncService) GetRunErrors(ctx context.Context, id string) ([]models.RecordError, error) {
	return m.Errors[id], nil
}

func (m *MockSyncService) GetLatestRun(ctx context.Context, connectorID string) (*models.SyncRun, error) {
	var latest *models.SyncRun
	for _, r := range m.Runs {
		if r.ConnectorID != connectorID {
			continue
		}
		run := r.SyncRun
		if latest == nil || run.CreatedAt.After(latest.CreatedAt) {
			latest = &run
		}
	}
	return latest, nil
}

func (m *MockSyncService) CountDocuments(ctx context.Context, kind models.DocumentKind) (int, error) {
	return m.Counts[kind], nil
}

func (m *MockSyncService) StartProcessor(ctx context.Context) {}

func (m *MockSyncService) StopProcessor() {}

// MockFetcher is a mock implementation of the upstream Fetcher
type MockFetcher struct {
	Tickets            []models.TicketRecord
	Articles           []models.ArticleRecord
	TicketsError       error
	ArticlesError      error
	Connected          bool
	FetchTicketsCalls  int
	FetchArticlesCalls int
}

// Verify interface compliance
var _ service.Fetcher = (*MockFetcher)(nil)

func NewMockFetcher() *MockFetcher {
	return &MockFetcher{Connected: true}
}

func (m *MockFetcher) FetchTickets(ctx context.Context, limit int) ([]models.TicketRecord, error) {
	m.FetchTicketsCalls++
	if m.TicketsError != nil {
		return nil, m.TicketsError
	}
	if limit <= 0 {
		return []models.TicketRecord{}, nil
	}
	if limit < len(m.Tickets) {
		return m.Tickets[:limit], nil
	}
	return m.Tickets, nil
}

func (m *MockFetcher) FetchArticles(ctx context.Context, limit int) ([]models.ArticleRecord, error) {
	m.FetchArticlesCalls++
	if m.ArticlesError != nil {
		return nil, m.ArticlesError
	}
	if limit <= 0 {
		return []models.ArticleRecord{}, nil
	}
	if limit < len(m.Articles) {
		return m.Articles[:limit], nil
	}
	return m.Articles, nil
}

func (m *MockFetcher) TestConnection(ctx context.Context) bool {
	return m.Connected
}

// MockDatabase is a mock implementation of the router's Database dependency
type MockDatabase struct {
	HealthError error
	DBStats     sql.DBStats
}

// Verify interface compliance
var _ api.Database = (*MockDatabase)(nil)

func (m *MockDatabase) HealthCheck(ctx context.Context) error {
	return m.HealthError
}

func (m *MockDatabase) Stats() sql.DBStats {
	return m.DBStats
}
