package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zendesk-ingest/internal/models"
)

// MockConnectorRepository is a mock implementation of ConnectorRepository
type MockConnectorRepository struct {
	Connectors  map[string]*models.Connector
	NameIndex   map[string]*models.Connector
	EnsureError error
	StampError  error
	StampCalls  int
}

func NewMockConnectorRepository() *MockConnectorRepository {
	return &MockConnectorRepository{
		Connectors: make(map[string]*models.Connector),
		NameIndex:  make(map[string]*models.Connector),
	}
}

func (m *MockConnectorRepository) EnsureConnector(ctx context.Context, name string, kind models.ConnectorKind) (*models.Connector, error) {
	if m.EnsureError != nil {
		return nil, m.EnsureError
	}
	if existing, ok := m.NameIndex[name]; ok {
		existing.Kind = kind
		return existing, nil
	}
	connector := &models.Connector{
		ID:        uuid.New().String(),
		Name:      name,
		Kind:      kind,
		CreatedAt: time.Now(),
	}
	m.Connectors[connector.ID] = connector
	m.NameIndex[name] = connector
	return connector, nil
}

func (m *MockConnectorRepository) GetByID(ctx context.Context, id string) (*models.Connector, error) {
	return m.Connectors[id], nil
}

func (m *MockConnectorRepository) Count(ctx context.Context) (int, error) {
	return len(m.Connectors), nil
}

func (m *MockConnectorRepository) StampLastIndexed(ctx context.Context, id string, at time.Time) (bool, error) {
	m.StampCalls++
	if m.StampError != nil {
		return false, m.StampError
	}
	connector, exists := m.Connectors[id]
	if !exists {
		return false, nil
	}
	connector.LastIndexedAt = &at
	return true, nil
}

// MockDocumentRepository is a mock implementation of DocumentRepository
type MockDocumentRepository struct {
	Documents     map[string]*models.Document
	UpsertError   error
	UpsertFunc    func(ctx context.Context, docs []*models.Document) (int, error)
	UpsertCalls   int
	UpsertedCount int
}

func NewMockDocumentRepository() *MockDocumentRepository {
	return &MockDocumentRepository{
		Documents: make(map[string]*models.Document),
	}
}

func docKey(connectorID string, kind models.DocumentKind, sourceID string) string {
	return connectorID + "/" + string(kind) + "/" + sourceID
}

func (m *MockDocumentRepository) UpsertBatch(ctx context.Context, docs []*models.Document) (int, error) {
	m.UpsertCalls++
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, docs)
	}
	if m.UpsertError != nil {
		return 0, m.UpsertError
	}
	for _, doc := range docs {
		m.Documents[docKey(doc.ConnectorID, doc.Kind, doc.SourceID)] = doc
	}
	m.UpsertedCount += len(docs)
	return len(docs), nil
}

func (m *MockDocumentRepository) GetBySource(ctx context.Context, connectorID string, kind models.DocumentKind, sourceID string) (*models.Document, error) {
	return m.Documents[docKey(connectorID, kind, sourceID)], nil
}

func (m *MockDocumentRepository) Count(ctx context.Context) (int, error) {
	return len(m.Documents), nil
}

func (m *MockDocumentRepository) CountByKind(ctx context.Context, kind models.DocumentKind) (int, error) {
	count := 0
	for _, doc := range m.Documents {
		if doc.Kind == kind {
			count++
		}
	}
	return count, nil
}

// MockSyncRunRepository is a mock implementation of SyncRunRepository
type MockSyncRunRepository struct {
	Runs           map[string]*models.SyncRun
	RunErrors      map[string][]models.RecordError
	CreateError    error
	UpdateError    error
	AddErrorsError error
}

func NewMockSyncRunRepository() *MockSyncRunRepository {
	return &MockSyncRunRepository{
		Runs:      make(map[string]*models.SyncRun),
		RunErrors: make(map[string][]models.RecordError),
	}
}

func (m *MockSyncRunRepository) Create(ctx context.Context, run *models.SyncRun) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Runs[run.ID] = run
	return nil
}

func (m *MockSyncRunRepository) Update(ctx context.Context, run *models.SyncRun) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.Runs[run.ID] = run
	return nil
}

func (m *MockSyncRunRepository) GetByID(ctx context.Context, id string) (*models.SyncRun, error) {
	return m.Runs[id], nil
}

func (m *MockSyncRunRepository) GetLatestByConnector(ctx context.Context, connectorID string) (*models.SyncRun, error) {
	var latest *models.SyncRun
	for _, run := range m.Runs {
		if run.ConnectorID != connectorID {
			continue
		}
		if latest == nil || run.CreatedAt.After(latest.CreatedAt) {
			latest = run
		}
	}
	return latest, nil
}

func (m *MockSyncRunRepository) GetPendingRuns(ctx context.Context) ([]*models.SyncRun, error) {
	var pending []*models.SyncRun
	for _, run := range m.Runs {
		if run.Status == models.SyncStatusPending {
			pending = append(pending, run)
		}
	}
	return pending, nil
}

func (m *MockSyncRunRepository) MarkRunAsRunning(ctx context.Context, runID string) (bool, error) {
	run, exists := m.Runs[runID]
	if !exists || run.Status != models.SyncStatusPending {
		return false, nil
	}
	now := time.Now()
	run.Status = models.SyncStatusRunning
	run.StartedAt = &now
	return true, nil
}

func (m *MockSyncRunRepository) AddErrors(ctx context.Context, runID string, errs []models.RecordError) error {
	if m.AddErrorsError != nil {
		return m.AddErrorsError
	}
	m.RunErrors[runID] = append(m.RunErrors[runID], errs...)
	return nil
}

func (m *MockSyncRunRepository) GetErrors(ctx context.Context, runID string, limit int) ([]models.RecordError, error) {
	errs := m.RunErrors[runID]
	if limit > 0 && len(errs) > limit {
		return errs[:limit], nil
	}
	return errs, nil
}
