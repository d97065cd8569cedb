package models

// TicketRecord is a support ticket normalized for indexing. Timestamp fields
// hold RFC3339 strings; an empty string means the upstream value was absent.
// Tags and Comments are never nil.
type TicketRecord struct {
	ID          int64           `json:"id"`
	Subject     string          `json:"subject"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Priority    string          `json:"priority"`
	RequesterID int64           `json:"requester_id"`
	AssigneeID  *int64          `json:"assignee_id"`
	GroupID     *int64          `json:"group_id"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
	Tags        []string        `json:"tags"`
	Comments    []CommentRecord `json:"comments"`
	URL         string          `json:"url"`
	Type        DocumentKind    `json:"type"`
}

// CommentRecord is one entry of a ticket's comment thread. Records with a
// blank body are dropped during normalization.
type CommentRecord struct {
	AuthorID  int64  `json:"author"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	Public    bool   `json:"public"`
}
