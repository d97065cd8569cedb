package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/zendesk-ingest/internal/database"
	"github.com/zendesk-ingest/internal/models"
	"github.com/zendesk-ingest/internal/service"
)

// Database is the subset of database.DB the router depends on
type Database interface {
	HealthCheck(ctx context.Context) error
	Stats() sql.DBStats
}

var _ Database = (*database.DB)(nil)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, db Database, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	connectorHandler := NewConnectorHandler(services, log)
	syncHandler := NewSyncHandler(services, log)

	// Health check
	router.GET("/health", healthCheck(db))
	router.GET("/metrics", metricsHandler(services, db))

	// API v1
	v1 := router.Group("/v1")
	{
		// Connector endpoints
		connectors := v1.Group("/connectors")
		{
			connectors.GET("/:id", connectorHandler.GetConnector)
			connectors.POST("/:id/sync", connectorHandler.TriggerSync)
			connectors.POST("/:id/test", connectorHandler.TestConnection)
			connectors.GET("/:id/syncs/latest", connectorHandler.GetLatestSync)
		}

		// Sync run endpoints
		syncs := v1.Group("/syncs")
		{
			syncs.GET("/:run_id", syncHandler.GetSyncStatus)
			syncs.GET("/:run_id/errors", syncHandler.GetSyncErrors)
		}
	}

	return router
}

// healthCheck reports service health including database reachability
func healthCheck(db Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now().Format(time.RFC3339),
				"service":   "zendesk-ingest",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "zendesk-ingest",
		})
	}
}

// metricsHandler returns ingestion metrics
func metricsHandler(services *service.Services, db Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ticketCount, _ := services.Sync.CountDocuments(ctx, models.KindTicket)
		articleCount, _ := services.Sync.CountDocuments(ctx, models.KindArticle)
		connectorCount, _ := services.Connector.Count(ctx)

		stats := db.Stats()

		c.JSON(http.StatusOK, gin.H{
			"documents": gin.H{
				"tickets":  ticketCount,
				"articles": articleCount,
			},
			"connectors": connectorCount,
			"db_pool": gin.H{
				"open_connections": stats.OpenConnections,
				"in_use":           stats.InUse,
				"idle":             stats.Idle,
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
