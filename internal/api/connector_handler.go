package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/zendesk-ingest/internal/models"
	"github.com/zendesk-ingest/internal/service"
)

// ConnectorHandler handles connector endpoints
type ConnectorHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewConnectorHandler creates a new ConnectorHandler
func NewConnectorHandler(services *service.Services, log zerolog.Logger) *ConnectorHandler {
	return &ConnectorHandler{
		services: services,
		log:      log.With().Str("handler", "connector").Logger(),
	}
}

// GetConnector handles GET /v1/connectors/:id
func (h *ConnectorHandler) GetConnector(c *gin.Context) {
	ctx := c.Request.Context()
	connectorID := c.Param("id")
	if connectorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "connector id is required"})
		return
	}

	connector, err := h.services.Connector.GetConnector(ctx, connectorID)
	if err != nil {
		h.log.Error().Err(err).Str("connector_id", connectorID).Msg("Failed to get connector")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get connector"})
		return
	}
	if connector == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "connector not found"})
		return
	}

	c.JSON(http.StatusOK, connector)
}

// TriggerSync handles POST /v1/connectors/:id/sync
// Enqueues an async sync run for the connector
func (h *ConnectorHandler) TriggerSync(c *gin.Context) {
	ctx := c.Request.Context()
	connectorID := c.Param("id")
	if connectorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "connector id is required"})
		return
	}

	run, err := h.services.Sync.EnqueueRun(ctx, connectorID, models.TriggerAPI)
	if err != nil {
		if errors.Is(err, service.ErrConnectorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "connector not found"})
			return
		}
		h.log.Error().Err(err).Str("connector_id", connectorID).Msg("Failed to enqueue sync run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue sync run"})
		return
	}

	h.log.Info().
		Str("run_id", run.ID).
		Str("connector_id", connectorID).
		Msg("Sync run enqueued")

	c.JSON(http.StatusAccepted, gin.H{
		"run_id":  run.ID,
		"status":  run.Status,
		"message": "Sync run created and queued for processing",
	})
}

// TestConnection handles POST /v1/connectors/:id/test
// Probes the upstream with the configured credentials
func (h *ConnectorHandler) TestConnection(c *gin.Context) {
	ctx := c.Request.Context()
	connectorID := c.Param("id")
	if connectorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "connector id is required"})
		return
	}

	connector, err := h.services.Connector.GetConnector(ctx, connectorID)
	if err != nil {
		h.log.Error().Err(err).Str("connector_id", connectorID).Msg("Failed to get connector")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get connector"})
		return
	}
	if connector == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "connector not found"})
		return
	}

	connected := h.services.Connector.TestConnection(ctx)

	h.log.Info().
		Str("connector_id", connectorID).
		Bool("connected", connected).
		Msg("Connection test completed")

	c.JSON(http.StatusOK, gin.H{"connected": connected})
}

// GetLatestSync handles GET /v1/connectors/:id/syncs/latest
func (h *ConnectorHandler) GetLatestSync(c *gin.Context) {
	ctx := c.Request.Context()
	connectorID := c.Param("id")
	if connectorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "connector id is required"})
		return
	}

	run, err := h.services.Sync.GetLatestRun(ctx, connectorID)
	if err != nil {
		h.log.Error().Err(err).Str("connector_id", connectorID).Msg("Failed to get latest run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get latest run"})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no sync runs for connector"})
		return
	}

	c.JSON(http.StatusOK, run)
}
