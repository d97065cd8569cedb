package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/zendesk-ingest/internal/config"
	"github.com/zendesk-ingest/internal/models"
	"github.com/zendesk-ingest/internal/repository"
	"github.com/zendesk-ingest/internal/validation"
)

// ErrConnectorNotFound is returned when a run is requested for an unknown
// connector.
var ErrConnectorNotFound = errors.New("connector not found")

// maxConcurrentRuns caps parallel sync runs. Runs hit the same upstream
// tenant and share its rate budget, so the pool stays small.
const maxConcurrentRuns = 2

// syncService is the concrete implementation of SyncService
type syncService struct {
	repos            *repository.Repositories
	fetcher          Fetcher
	connectorService ConnectorService
	cfg              *config.Config
	log              zerolog.Logger
	ctx              context.Context
	cancel           context.CancelFunc
	wg               sync.WaitGroup
	running          bool
	mu               sync.Mutex
	// Semaphore: buffered channel limiting concurrent run processing
	sem chan struct{}
}

// newSyncService creates a new SyncService
func newSyncService(repos *repository.Repositories, fetcher Fetcher, connectorService ConnectorService, cfg *config.Config, log zerolog.Logger) *syncService {
	return &syncService{
		repos:            repos,
		fetcher:          fetcher,
		connectorService: connectorService,
		cfg:              cfg,
		log:              log.With().Str("service", "sync").Logger(),
		sem:              make(chan struct{}, maxConcurrentRuns),
	}
}

// EnqueueRun records a pending run for the connector; the background
// processor picks it up. Runs for the same connector may overlap, which is
// safe because document writes are idempotent upserts.
func (s *syncService) EnqueueRun(ctx context.Context, connectorID, trigger string) (*models.SyncRun, error) {
	connector, err := s.repos.Connector.GetByID(ctx, connectorID)
	if err != nil {
		return nil, err
	}
	if connector == nil {
		return nil, ErrConnectorNotFound
	}

	run := &models.SyncRun{
		ID:          uuid.New().String(),
		ConnectorID: connector.ID,
		Trigger:     trigger,
		Status:      models.SyncStatusPending,
		CreatedAt:   time.Now(),
	}
	if err := s.repos.SyncRun.Create(ctx, run); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("run_id", run.ID).
		Str("connector_id", connector.ID).
		Str("trigger", trigger).
		Msg("Sync run enqueued")

	return run, nil
}

// StartProcessor starts the background run processor
func (s *syncService) StartProcessor(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.log.Info().Msg("Sync processor started")

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.log.Info().Msg("Sync processor stopping")
			return
		case <-ticker.C:
			s.processPendingRuns()
		}
	}
}

// StopProcessor stops the background run processor
func (s *syncService) StopProcessor() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.wg.Wait()
	s.running = false
	s.log.Info().Msg("Sync processor stopped")
}

// processPendingRuns claims and executes pending runs
func (s *syncService) processPendingRuns() {
	runs, err := s.repos.SyncRun.GetPendingRuns(s.ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to get pending runs")
		return
	}

	for _, run := range runs {
		// Acquire a slot; blocks when all workers are busy
		select {
		case s.sem <- struct{}{}:
		case <-s.ctx.Done():
			return
		}

		// Claim atomically; another worker may have taken it already
		claimed, err := s.repos.SyncRun.MarkRunAsRunning(s.ctx, run.ID)
		if err != nil || !claimed {
			<-s.sem
			continue
		}

		s.wg.Add(1)
		go func(r *models.SyncRun) {
			defer s.wg.Done()
			defer func() { <-s.sem }()

			// Runtime panics must not bring the processor down
			defer func() {
				if rec := recover(); rec != nil {
					s.log.Error().
						Interface("panic", rec).
						Str("run_id", r.ID).
						Msg("Sync run panicked - recovered")
					r.Status = models.SyncStatusFailed
					r.Error = fmt.Sprintf("panic: %v", rec)
					s.repos.SyncRun.Update(s.ctx, r)
				}
			}()
			s.ProcessRun(s.ctx, r)
		}(run)
	}
}

// ProcessRun executes one claimed run and finalizes its metrics. It returns
// the error that failed the run, nil when the run completed; the run status
// is persisted either way.
func (s *syncService) ProcessRun(ctx context.Context, run *models.SyncRun) error {
	select {
	case <-ctx.Done():
		s.log.Warn().Str("run_id", run.ID).Msg("Sync run cancelled due to shutdown")
		return ctx.Err()
	default:
	}

	s.log.Info().Str("run_id", run.ID).Str("connector_id", run.ConnectorID).Msg("Processing sync run")

	startTime := time.Now()
	now := startTime
	run.Status = models.SyncStatusRunning
	run.StartedAt = &now

	err := s.execute(ctx, run)

	duration := time.Since(startTime)
	run.DurationMs = duration.Milliseconds()
	if processed := run.TicketCount + run.ArticleCount; processed > 0 && duration.Seconds() > 0 {
		run.RecordsPerSec = float64(processed) / duration.Seconds()
	}
	completedAt := time.Now()
	run.CompletedAt = &completedAt

	if err != nil {
		run.Status = models.SyncStatusFailed
		run.Error = err.Error()
		s.log.Error().Err(err).Str("run_id", run.ID).Msg("Sync run failed")
	} else {
		run.Status = models.SyncStatusCompleted
		s.log.Info().
			Str("run_id", run.ID).
			Int("tickets", run.TicketCount).
			Int("articles", run.ArticleCount).
			Int("documents", run.DocumentCount).
			Int("skipped", run.SkippedCount).
			Int64("duration_ms", run.DurationMs).
			Float64("records_per_sec", run.RecordsPerSec).
			Msg("Sync run completed")
	}

	if updateErr := s.repos.SyncRun.Update(ctx, run); updateErr != nil {
		s.log.Error().Err(updateErr).Str("run_id", run.ID).Msg("Failed to update sync run")
	}

	return err
}

// execute fetches both collections and persists them as documents. A fetch
// or persistence failure aborts the run; a record failing validation only
// skips that record. The connector timestamp moves only after a fully
// successful cycle.
func (s *syncService) execute(ctx context.Context, run *models.SyncRun) error {
	tickets, err := s.fetcher.FetchTickets(ctx, s.cfg.Zendesk.TicketLimit)
	if err != nil {
		return err
	}
	run.TicketCount = len(tickets)

	articles, err := s.fetcher.FetchArticles(ctx, s.cfg.Zendesk.ArticleLimit)
	if err != nil {
		return err
	}
	run.ArticleCount = len(articles)

	validator := validation.NewValidator()
	batchSize := s.cfg.Sync.BatchSize
	var batch []*models.Document
	var recordErrors []models.RecordError

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		written, err := s.repos.Document.UpsertBatch(ctx, batch)
		if err != nil {
			return fmt.Errorf("persisting documents: %w", err)
		}
		run.DocumentCount += written
		batch = batch[:0]
		return nil
	}

	for i := range tickets {
		ticket := &tickets[i]
		sourceID := strconv.FormatInt(ticket.ID, 10)

		if errs := validator.ValidateTicket(ticket); len(errs) > 0 {
			run.SkippedCount++
			recordErrors = appendRecordErrors(recordErrors, models.KindTicket, sourceID, errs)
			continue
		}

		doc, err := ticketDocument(run.ConnectorID, ticket)
		if err != nil {
			run.SkippedCount++
			recordErrors = append(recordErrors, models.RecordError{
				Kind: models.KindTicket, SourceID: sourceID, Message: err.Error(),
			})
			continue
		}

		batch = append(batch, doc)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	for i := range articles {
		article := &articles[i]
		sourceID := strconv.FormatInt(article.ID, 10)

		if errs := validator.ValidateArticle(article); len(errs) > 0 {
			run.SkippedCount++
			recordErrors = appendRecordErrors(recordErrors, models.KindArticle, sourceID, errs)
			continue
		}

		doc, err := articleDocument(run.ConnectorID, article)
		if err != nil {
			run.SkippedCount++
			recordErrors = append(recordErrors, models.RecordError{
				Kind: models.KindArticle, SourceID: sourceID, Message: err.Error(),
			})
			continue
		}

		batch = append(batch, doc)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	if err := flush(); err != nil {
		return err
	}

	if len(recordErrors) > 0 {
		if err := s.repos.SyncRun.AddErrors(ctx, run.ID, recordErrors); err != nil {
			s.log.Error().Err(err).Str("run_id", run.ID).Int("count", len(recordErrors)).Msg("Failed to record skipped records")
		}
	}

	// A stamp failure is logged and absorbed; the run itself completed.
	if err := s.connectorService.UpdateLastIndexed(ctx, run.ConnectorID); err != nil {
		s.log.Warn().Err(err).Str("connector_id", run.ConnectorID).Msg("Run completed but timestamp update failed")
	}

	return nil
}

// GetRun retrieves a run by ID together with its first errors
func (s *syncService) GetRun(ctx context.Context, id string) (*models.SyncRunResponse, error) {
	run, err := s.repos.SyncRun.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, nil
	}

	// Limit to the first 100; the errors endpoint returns the rest
	errs, err := s.repos.SyncRun.GetErrors(ctx, id, 100)
	if err != nil {
		s.log.Error().Err(err).Str("run_id", id).Msg("Failed to get run errors")
	}

	response := &models.SyncRunResponse{
		SyncRun:    *run,
		Errors:     errs,
		ErrorCount: run.SkippedCount,
	}
	if run.SkippedCount > 0 {
		response.ErrorsURL = "/v1/syncs/" + run.ID + "/errors"
	}

	return response, nil
}

// GetRunErrors retrieves all skipped-record errors for a run
func (s *syncService) GetRunErrors(ctx context.Context, id string) ([]models.RecordError, error) {
	return s.repos.SyncRun.GetErrors(ctx, id, 0)
}

// GetLatestRun retrieves the most recent run for a connector
func (s *syncService) GetLatestRun(ctx context.Context, connectorID string) (*models.SyncRun, error) {
	return s.repos.SyncRun.GetLatestByConnector(ctx, connectorID)
}

// CountDocuments returns the number of stored documents of one kind
func (s *syncService) CountDocuments(ctx context.Context, kind models.DocumentKind) (int, error) {
	return s.repos.Document.CountByKind(ctx, kind)
}

func ticketDocument(connectorID string, ticket *models.TicketRecord) (*models.Document, error) {
	payload, err := json.Marshal(ticket)
	if err != nil {
		return nil, fmt.Errorf("encoding ticket payload: %w", err)
	}
	now := time.Now()
	return &models.Document{
		ID:          uuid.New().String(),
		ConnectorID: connectorID,
		Kind:        models.KindTicket,
		SourceID:    strconv.FormatInt(ticket.ID, 10),
		Title:       ticket.Subject,
		URL:         ticket.URL,
		Payload:     payload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func articleDocument(connectorID string, article *models.ArticleRecord) (*models.Document, error) {
	payload, err := json.Marshal(article)
	if err != nil {
		return nil, fmt.Errorf("encoding article payload: %w", err)
	}
	now := time.Now()
	return &models.Document{
		ID:          uuid.New().String(),
		ConnectorID: connectorID,
		Kind:        models.KindArticle,
		SourceID:    strconv.FormatInt(article.ID, 10),
		Title:       article.Title,
		URL:         article.URL,
		Payload:     payload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func appendRecordErrors(dst []models.RecordError, kind models.DocumentKind, sourceID string, errs []validation.ValidationError) []models.RecordError {
	for _, e := range errs {
		dst = append(dst, models.RecordError{
			Kind:     kind,
			SourceID: sourceID,
			Field:    e.Field,
			Message:  e.Message,
		})
	}
	return dst
}
