package api

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/zendesk-ingest/internal/service"
)

// SyncHandler handles sync run endpoints
type SyncHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(services *service.Services, log zerolog.Logger) *SyncHandler {
	return &SyncHandler{
		services: services,
		log:      log.With().Str("handler", "sync").Logger(),
	}
}

// GetSyncStatus handles GET /v1/syncs/:run_id
func (h *SyncHandler) GetSyncStatus(c *gin.Context) {
	ctx := c.Request.Context()
	runID := c.Param("run_id")
	if runID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "run_id is required"})
		return
	}

	run, err := h.services.Sync.GetRun(ctx, runID)
	if err != nil {
		h.log.Error().Err(err).Str("run_id", runID).Msg("Failed to get run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get run status"})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}

	c.JSON(http.StatusOK, run)
}

// GetSyncErrors handles GET /v1/syncs/:run_id/errors
func (h *SyncHandler) GetSyncErrors(c *gin.Context) {
	ctx := c.Request.Context()
	runID := c.Param("run_id")
	if runID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "run_id is required"})
		return
	}

	errors, err := h.services.Sync.GetRunErrors(ctx, runID)
	if err != nil {
		h.log.Error().Err(err).Str("run_id", runID).Msg("Failed to get run errors")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get errors"})
		return
	}

	// Determine format from query param
	format := c.Query("format")
	if format == "" {
		format = "json"
	}

	if format == "csv" {
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=errors_%s.csv", runID))
		writer := csv.NewWriter(c.Writer)
		writer.Write([]string{"kind", "source_id", "field", "message"})
		for _, e := range errors {
			writer.Write([]string{string(e.Kind), e.SourceID, e.Field, e.Message})
		}
		writer.Flush()
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":      runID,
		"error_count": len(errors),
		"errors":      errors,
	})
}
