package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/zendesk-ingest/internal/config"
	"github.com/zendesk-ingest/internal/mocks"
	"github.com/zendesk-ingest/internal/models"
	"github.com/zendesk-ingest/internal/repository"
	"github.com/zendesk-ingest/internal/service"
)

func testConfig() *config.Config {
	return &config.Config{
		Sync:    config.SyncConfig{ConnectorName: "zendesk", BatchSize: 100},
		Zendesk: config.ZendeskConfig{TicketLimit: 100, ArticleLimit: 50},
	}
}

func TestEnsureConnector_Idempotent(t *testing.T) {
	connectorRepo := mocks.NewMockConnectorRepository()
	repos := &repository.Repositories{
		Connector: connectorRepo,
		Document:  mocks.NewMockDocumentRepository(),
		SyncRun:   mocks.NewMockSyncRunRepository(),
	}
	services := service.NewServices(repos, mocks.NewMockFetcher(), testConfig(), zerolog.Nop())
	ctx := context.Background()

	first, err := services.Connector.EnsureConnector(ctx, "zendesk", models.ConnectorZendesk)
	if err != nil {
		t.Fatalf("EnsureConnector failed: %v", err)
	}
	if first.ID == "" {
		t.Fatal("Connector should get an ID")
	}

	second, err := services.Connector.EnsureConnector(ctx, "zendesk", models.ConnectorZendesk)
	if err != nil {
		t.Fatalf("EnsureConnector failed on second call: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Second EnsureConnector returned ID %s, want %s", second.ID, first.ID)
	}

	count, _ := services.Connector.Count(ctx)
	if count != 1 {
		t.Errorf("Expected 1 connector, got %d", count)
	}
}

func TestUpdateLastIndexed(t *testing.T) {
	connectorRepo := mocks.NewMockConnectorRepository()
	repos := &repository.Repositories{
		Connector: connectorRepo,
		Document:  mocks.NewMockDocumentRepository(),
		SyncRun:   mocks.NewMockSyncRunRepository(),
	}
	services := service.NewServices(repos, mocks.NewMockFetcher(), testConfig(), zerolog.Nop())
	ctx := context.Background()

	connector, _ := connectorRepo.EnsureConnector(ctx, "zendesk", models.ConnectorZendesk)
	if connector.LastIndexedAt != nil {
		t.Fatal("Fresh connector should have no last indexed timestamp")
	}

	before := time.Now()
	if err := services.Connector.UpdateLastIndexed(ctx, connector.ID); err != nil {
		t.Fatalf("UpdateLastIndexed failed: %v", err)
	}

	stored := connectorRepo.Connectors[connector.ID]
	if stored.LastIndexedAt == nil {
		t.Fatal("Timestamp should be set after update")
	}
	if stored.LastIndexedAt.Before(before) {
		t.Errorf("Timestamp %v is before the update call", stored.LastIndexedAt)
	}
	if connectorRepo.StampCalls != 1 {
		t.Errorf("Expected 1 stamp call, got %d", connectorRepo.StampCalls)
	}
}

func TestUpdateLastIndexed_UnknownConnector(t *testing.T) {
	connectorRepo := mocks.NewMockConnectorRepository()
	repos := &repository.Repositories{
		Connector: connectorRepo,
		Document:  mocks.NewMockDocumentRepository(),
		SyncRun:   mocks.NewMockSyncRunRepository(),
	}
	services := service.NewServices(repos, mocks.NewMockFetcher(), testConfig(), zerolog.Nop())
	ctx := context.Background()

	connector, _ := connectorRepo.EnsureConnector(ctx, "zendesk", models.ConnectorZendesk)

	// An unknown id is a silent no-op, not an error
	if err := services.Connector.UpdateLastIndexed(ctx, "no-such-connector"); err != nil {
		t.Errorf("UpdateLastIndexed for unknown id returned %v, want nil", err)
	}
	if connectorRepo.StampCalls != 1 {
		t.Errorf("Expected the stamp to be attempted once, got %d calls", connectorRepo.StampCalls)
	}
	if connectorRepo.Connectors[connector.ID].LastIndexedAt != nil {
		t.Error("Existing connector should be untouched")
	}
}

func TestUpdateLastIndexed_PersistenceFailure(t *testing.T) {
	stampErr := errors.New("connection refused")

	connectorRepo := mocks.NewMockConnectorRepository()
	connectorRepo.StampError = stampErr
	repos := &repository.Repositories{
		Connector: connectorRepo,
		Document:  mocks.NewMockDocumentRepository(),
		SyncRun:   mocks.NewMockSyncRunRepository(),
	}
	services := service.NewServices(repos, mocks.NewMockFetcher(), testConfig(), zerolog.Nop())

	connector, _ := connectorRepo.EnsureConnector(context.Background(), "zendesk", models.ConnectorZendesk)

	err := services.Connector.UpdateLastIndexed(context.Background(), connector.ID)
	if err == nil {
		t.Fatal("Expected persistence failure to surface")
	}
	if !errors.Is(err, stampErr) {
		t.Errorf("Error = %v, want the repository error wrapped", err)
	}
}

func TestConnectorTestConnection(t *testing.T) {
	for _, connected := range []bool{true, false} {
		fetcher := mocks.NewMockFetcher()
		fetcher.Connected = connected

		repos := &repository.Repositories{
			Connector: mocks.NewMockConnectorRepository(),
			Document:  mocks.NewMockDocumentRepository(),
			SyncRun:   mocks.NewMockSyncRunRepository(),
		}
		services := service.NewServices(repos, fetcher, testConfig(), zerolog.Nop())

		if got := services.Connector.TestConnection(context.Background()); got != connected {
			t.Errorf("TestConnection() = %v, want %v", got, connected)
		}
	}
}

func TestEnqueueRun(t *testing.T) {
	connectorRepo := mocks.NewMockConnectorRepository()
	syncRepo := mocks.NewMockSyncRunRepository()
	repos := &repository.Repositories{
		Connector: connectorRepo,
		Document:  mocks.NewMockDocumentRepository(),
		SyncRun:   syncRepo,
	}
	services := service.NewServices(repos, mocks.NewMockFetcher(), testConfig(), zerolog.Nop())
	ctx := context.Background()

	connector, _ := connectorRepo.EnsureConnector(ctx, "zendesk", models.ConnectorZendesk)

	run, err := services.Sync.EnqueueRun(ctx, connector.ID, models.TriggerAPI)
	if err != nil {
		t.Fatalf("EnqueueRun failed: %v", err)
	}
	if run.ID == "" {
		t.Fatal("Run should get an ID")
	}
	if run.Status != models.SyncStatusPending {
		t.Errorf("Status = %s, want %s", run.Status, models.SyncStatusPending)
	}
	if run.Trigger != models.TriggerAPI {
		t.Errorf("Trigger = %s, want %s", run.Trigger, models.TriggerAPI)
	}
	if run.ConnectorID != connector.ID {
		t.Errorf("ConnectorID = %s, want %s", run.ConnectorID, connector.ID)
	}

	if syncRepo.Runs[run.ID] == nil {
		t.Error("Run should be persisted")
	}
}

func TestEnqueueRun_UnknownConnector(t *testing.T) {
	syncRepo := mocks.NewMockSyncRunRepository()
	repos := &repository.Repositories{
		Connector: mocks.NewMockConnectorRepository(),
		Document:  mocks.NewMockDocumentRepository(),
		SyncRun:   syncRepo,
	}
	services := service.NewServices(repos, mocks.NewMockFetcher(), testConfig(), zerolog.Nop())

	_, err := services.Sync.EnqueueRun(context.Background(), "no-such-connector", models.TriggerAPI)
	if !errors.Is(err, service.ErrConnectorNotFound) {
		t.Errorf("Error = %v, want ErrConnectorNotFound", err)
	}
	if len(syncRepo.Runs) != 0 {
		t.Errorf("No run should be created, found %d", len(syncRepo.Runs))
	}
}

func TestGetRun(t *testing.T) {
	syncRepo := mocks.NewMockSyncRunRepository()
	repos := &repository.Repositories{
		Connector: mocks.NewMockConnectorRepository(),
		Document:  mocks.NewMockDocumentRepository(),
		SyncRun:   syncRepo,
	}
	services := service.NewServices(repos, mocks.NewMockFetcher(), testConfig(), zerolog.Nop())
	ctx := context.Background()

	run := &models.SyncRun{
		ID:           "run-1",
		ConnectorID:  "conn-1",
		Status:       models.SyncStatusCompleted,
		TicketCount:  10,
		ArticleCount: 4,
		SkippedCount: 2,
		CreatedAt:    time.Now(),
	}
	syncRepo.Runs[run.ID] = run
	syncRepo.RunErrors[run.ID] = []models.RecordError{
		{Kind: models.KindTicket, SourceID: "7", Field: "tags", Message: "tags must not be null"},
		{Kind: models.KindArticle, SourceID: "5001", Field: "created_at", Message: "invalid ISO 8601 date format"},
	}

	response, err := services.Sync.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if response == nil {
		t.Fatal("Expected a response")
	}
	if response.ErrorCount != 2 {
		t.Errorf("ErrorCount = %d, want 2", response.ErrorCount)
	}
	if len(response.Errors) != 2 {
		t.Errorf("Errors len = %d, want 2", len(response.Errors))
	}
	if response.ErrorsURL != "/v1/syncs/run-1/errors" {
		t.Errorf("ErrorsURL = %q, want the errors endpoint", response.ErrorsURL)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	repos := &repository.Repositories{
		Connector: mocks.NewMockConnectorRepository(),
		Document:  mocks.NewMockDocumentRepository(),
		SyncRun:   mocks.NewMockSyncRunRepository(),
	}
	services := service.NewServices(repos, mocks.NewMockFetcher(), testConfig(), zerolog.Nop())

	response, err := services.Sync.GetRun(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if response != nil {
		t.Errorf("Expected nil for unknown run, got %+v", response)
	}
}

func TestGetLatestRun(t *testing.T) {
	syncRepo := mocks.NewMockSyncRunRepository()
	repos := &repository.Repositories{
		Connector: mocks.NewMockConnectorRepository(),
		Document:  mocks.NewMockDocumentRepository(),
		SyncRun:   syncRepo,
	}
	services := service.NewServices(repos, mocks.NewMockFetcher(), testConfig(), zerolog.Nop())

	syncRepo.Runs["run-old"] = &models.SyncRun{
		ID: "run-old", ConnectorID: "conn-1", Status: models.SyncStatusCompleted,
		CreatedAt: time.Now().Add(-time.Hour),
	}
	syncRepo.Runs["run-new"] = &models.SyncRun{
		ID: "run-new", ConnectorID: "conn-1", Status: models.SyncStatusPending,
		CreatedAt: time.Now(),
	}
	syncRepo.Runs["run-other"] = &models.SyncRun{
		ID: "run-other", ConnectorID: "conn-2", Status: models.SyncStatusCompleted,
		CreatedAt: time.Now().Add(time.Hour),
	}

	latest, err := services.Sync.GetLatestRun(context.Background(), "conn-1")
	if err != nil {
		t.Fatalf("GetLatestRun failed: %v", err)
	}
	if latest == nil || latest.ID != "run-new" {
		t.Errorf("GetLatestRun = %+v, want run-new", latest)
	}
}

func TestCountDocuments(t *testing.T) {
	documentRepo := mocks.NewMockDocumentRepository()
	repos := &repository.Repositories{
		Connector: mocks.NewMockConnectorRepository(),
		Document:  documentRepo,
		SyncRun:   mocks.NewMockSyncRunRepository(),
	}
	services := service.NewServices(repos, mocks.NewMockFetcher(), testConfig(), zerolog.Nop())
	ctx := context.Background()

	documentRepo.UpsertBatch(ctx, []*models.Document{
		{ID: "d1", ConnectorID: "conn-1", Kind: models.KindTicket, SourceID: "1"},
		{ID: "d2", ConnectorID: "conn-1", Kind: models.KindTicket, SourceID: "2"},
		{ID: "d3", ConnectorID: "conn-1", Kind: models.KindArticle, SourceID: "5001"},
	})

	tickets, err := services.Sync.CountDocuments(ctx, models.KindTicket)
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if tickets != 2 {
		t.Errorf("Ticket documents = %d, want 2", tickets)
	}

	articles, _ := services.Sync.CountDocuments(ctx, models.KindArticle)
	if articles != 1 {
		t.Errorf("Article documents = %d, want 1", articles)
	}
}
