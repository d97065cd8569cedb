package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/zendesk-ingest/internal/models"
	"github.com/zendesk-ingest/internal/repository"
)

// connectorService is the concrete implementation of ConnectorService
type connectorService struct {
	connectorRepo repository.ConnectorRepository
	fetcher       Fetcher
	log           zerolog.Logger
}

// newConnectorService creates a new ConnectorService
func newConnectorService(connectorRepo repository.ConnectorRepository, fetcher Fetcher, log zerolog.Logger) *connectorService {
	return &connectorService{
		connectorRepo: connectorRepo,
		fetcher:       fetcher,
		log:           log.With().Str("service", "connector").Logger(),
	}
}

// EnsureConnector registers the configured connector row if it is missing
// and returns it either way
func (s *connectorService) EnsureConnector(ctx context.Context, name string, kind models.ConnectorKind) (*models.Connector, error) {
	connector, err := s.connectorRepo.EnsureConnector(ctx, name, kind)
	if err != nil {
		return nil, fmt.Errorf("ensuring connector %q: %w", name, err)
	}

	s.log.Info().
		Str("connector_id", connector.ID).
		Str("name", connector.Name).
		Str("kind", string(connector.Kind)).
		Msg("Connector registered")

	return connector, nil
}

// GetConnector retrieves a connector by ID
func (s *connectorService) GetConnector(ctx context.Context, id string) (*models.Connector, error) {
	return s.connectorRepo.GetByID(ctx, id)
}

// Count returns the number of registered connectors
func (s *connectorService) Count(ctx context.Context) (int, error) {
	return s.connectorRepo.Count(ctx)
}

// UpdateLastIndexed stamps last_indexed_at on the connector row with the
// current time. An unknown connector id is a silent no-op. Persistence
// failures are logged and returned; callers that only care about the
// original fire-and-forget behavior are free to drop the error.
func (s *connectorService) UpdateLastIndexed(ctx context.Context, connectorID string) error {
	stamped, err := s.connectorRepo.StampLastIndexed(ctx, connectorID, time.Now())
	if err != nil {
		s.log.Error().Err(err).Str("connector_id", connectorID).Msg("Failed to update last indexed timestamp")
		return fmt.Errorf("updating last_indexed_at for connector %s: %w", connectorID, err)
	}
	if !stamped {
		s.log.Debug().Str("connector_id", connectorID).Msg("Connector not found, timestamp not updated")
		return nil
	}

	s.log.Info().Str("connector_id", connectorID).Msg("Connector last indexed timestamp updated")
	return nil
}

// TestConnection checks whether the upstream credentials identify a user
func (s *connectorService) TestConnection(ctx context.Context) bool {
	return s.fetcher.TestConnection(ctx)
}
