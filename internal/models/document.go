package models

import (
	"encoding/json"
	"time"
)

// DocumentKind tags the source record type of a stored document. The set is
// open: kinds are stored as plain text, so adding one needs no schema change.
type DocumentKind string

const (
	KindTicket  DocumentKind = "ticket"
	KindArticle DocumentKind = "article"
)

// Document is a normalized record persisted for downstream indexing, keyed
// by (connector_id, kind, source_id). Payload holds the full record JSON.
type Document struct {
	ID          string          `json:"id" db:"id"`
	ConnectorID string          `json:"connector_id" db:"connector_id"`
	Kind        DocumentKind    `json:"kind" db:"kind"`
	SourceID    string          `json:"source_id" db:"source_id"`
	Title       string          `json:"title" db:"title"`
	URL         string          `json:"url" db:"url"`
	Payload     json.RawMessage `json:"payload" db:"payload"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}
