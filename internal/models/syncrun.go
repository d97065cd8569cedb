package models

import (
	"time"
)

// SyncRunStatus represents the status of a sync run
type SyncRunStatus string

const (
	SyncStatusPending   SyncRunStatus = "pending"
	SyncStatusRunning   SyncRunStatus = "running"
	SyncStatusCompleted SyncRunStatus = "completed"
	SyncStatusFailed    SyncRunStatus = "failed"
)

// Sync run triggers
const (
	TriggerAPI     = "api"
	TriggerStartup = "startup"
)

// SyncRun represents one fetch-and-persist cycle for a connector
type SyncRun struct {
	ID            string        `json:"run_id" db:"id"`
	ConnectorID   string        `json:"connector_id" db:"connector_id"`
	Trigger       string        `json:"trigger" db:"trigger"`
	Status        SyncRunStatus `json:"status" db:"status"`
	TicketCount   int           `json:"tickets" db:"ticket_count"`
	ArticleCount  int           `json:"articles" db:"article_count"`
	DocumentCount int           `json:"documents" db:"document_count"`
	SkippedCount  int           `json:"skipped" db:"skipped_count"`
	DurationMs    int64         `json:"duration_ms,omitempty" db:"duration_ms"`
	RecordsPerSec float64       `json:"records_per_sec,omitempty" db:"records_per_sec"`
	Error         string        `json:"error,omitempty" db:"error"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	StartedAt     *time.Time    `json:"started_at,omitempty" db:"started_at"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
}

// RecordError describes why one fetched record was skipped during a run
type RecordError struct {
	Kind     DocumentKind `json:"kind"`
	SourceID string       `json:"source_id"`
	Field    string       `json:"field"`
	Message  string       `json:"message"`
}

// SyncRunResponse is the API response for run status
type SyncRunResponse struct {
	SyncRun
	Errors     []RecordError `json:"errors,omitempty"`
	ErrorCount int           `json:"error_count,omitempty"`
	ErrorsURL  string        `json:"errors_url,omitempty"`
}
