package models

import (
	"time"
)

// ConnectorKind tags a connector's upstream system. Like DocumentKind the
// set is open and stored as plain text.
type ConnectorKind string

const (
	ConnectorZendesk ConnectorKind = "zendesk"
)

// Connector is a configured upstream source plus its indexing state.
// Credentials live in the environment, never on this row.
type Connector struct {
	ID            string        `json:"id" db:"id"`
	Name          string        `json:"name" db:"name"`
	Kind          ConnectorKind `json:"kind" db:"kind"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	LastIndexedAt *time.Time    `json:"last_indexed_at,omitempty" db:"last_indexed_at"`
}
