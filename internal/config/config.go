package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Zendesk upstream configuration
	Zendesk ZendeskConfig

	// Sync pipeline configuration
	Sync SyncConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// ZendeskConfig holds upstream API credentials and fetch settings.
// BaseURL is derived from the subdomain when left empty; setting it
// explicitly is intended for tests.
type ZendeskConfig struct {
	Subdomain   string
	Email       string
	APIToken    string
	BaseURL     string
	HTTPTimeout time.Duration

	TicketLimit  int
	ArticleLimit int

	// Pacing between fetched records: "interval" pauses PaceDelay after
	// every PaceEvery records, "rate" holds a steady PaceRPS records/sec.
	PaceMode  string
	PaceEvery int
	PaceDelay time.Duration
	PaceRPS   int
}

// SyncConfig holds sync run settings
type SyncConfig struct {
	ConnectorName string
	BatchSize     int
	SyncOnStart   bool
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 300*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Name:         getEnv("DB_NAME", "zendesk_ingest"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
		},
		Zendesk: ZendeskConfig{
			Subdomain:    getEnv("ZENDESK_SUBDOMAIN", ""),
			Email:        getEnv("ZENDESK_EMAIL", ""),
			APIToken:     getEnv("ZENDESK_API_TOKEN", ""),
			BaseURL:      getEnv("ZENDESK_BASE_URL", ""),
			HTTPTimeout:  getDurationEnv("ZENDESK_HTTP_TIMEOUT", 30*time.Second),
			TicketLimit:  getIntEnv("ZENDESK_TICKET_LIMIT", 1000),
			ArticleLimit: getIntEnv("ZENDESK_ARTICLE_LIMIT", 1000),
			PaceMode:     getEnv("ZENDESK_PACE_MODE", "interval"),
			PaceEvery:    getIntEnv("ZENDESK_PACE_EVERY", 100),
			PaceDelay:    getDurationEnv("ZENDESK_PACE_DELAY", time.Second),
			PaceRPS:      getIntEnv("ZENDESK_PACE_RPS", 100),
		},
		Sync: SyncConfig{
			ConnectorName: getEnv("CONNECTOR_NAME", "zendesk"),
			BatchSize:     getIntEnv("SYNC_BATCH_SIZE", 500),
			SyncOnStart:   getBoolEnv("SYNC_ON_START", false),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Zendesk.Subdomain == "" {
		return fmt.Errorf("ZENDESK_SUBDOMAIN is required")
	}
	if c.Zendesk.Email == "" {
		return fmt.Errorf("ZENDESK_EMAIL is required")
	}
	if c.Zendesk.APIToken == "" {
		return fmt.Errorf("ZENDESK_API_TOKEN is required")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
