package models

// ArticleRecord is a help-center article normalized for indexing. Timestamp
// fields hold RFC3339 strings; an empty string means the upstream value was
// absent. Labels is never nil.
type ArticleRecord struct {
	ID        int64        `json:"id"`
	Title     string       `json:"title"`
	Body      string       `json:"body"`
	SectionID *int64       `json:"section_id"`
	AuthorID  int64        `json:"author_id"`
	CreatedAt string       `json:"created_at"`
	UpdatedAt string       `json:"updated_at"`
	Draft     bool         `json:"draft"`
	Promoted  bool         `json:"promoted"`
	Labels    []string     `json:"label_names"`
	Locale    string       `json:"locale"`
	URL       string       `json:"url"`
	Type      DocumentKind `json:"type"`
}
