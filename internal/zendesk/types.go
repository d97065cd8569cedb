package zendesk

import (
	"time"
)

// Wire types for the Zendesk REST API. Pointer fields are ones the API
// returns as null when unset.

// Ticket is a support ticket as returned by the search export stream.
type Ticket struct {
	ID          int64      `json:"id"`
	Subject     string     `json:"subject"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	RequesterID int64      `json:"requester_id"`
	AssigneeID  *int64     `json:"assignee_id"`
	GroupID     *int64     `json:"group_id"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
	Tags        []string   `json:"tags"`
}

// Comment is one entry of a ticket's audit trail.
type Comment struct {
	ID        int64      `json:"id"`
	AuthorID  int64      `json:"author_id"`
	Body      string     `json:"body"`
	Public    bool       `json:"public"`
	CreatedAt *time.Time `json:"created_at"`
}

// Article is a help-center article.
type Article struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	SectionID  *int64     `json:"section_id"`
	AuthorID   int64      `json:"author_id"`
	CreatedAt  *time.Time `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
	Draft      bool       `json:"draft"`
	Promoted   bool       `json:"promoted"`
	LabelNames []string   `json:"label_names"`
	Locale     string     `json:"locale"`
	HTMLURL    string     `json:"html_url"`
}

// User is a Zendesk user, as returned by the users/me endpoint.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Response envelopes.

type searchExportPage struct {
	Results []Ticket `json:"results"`
	Meta    struct {
		HasMore     bool   `json:"has_more"`
		AfterCursor string `json:"after_cursor"`
	} `json:"meta"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
}

type commentsPage struct {
	Comments []Comment `json:"comments"`
	NextPage *string   `json:"next_page"`
}

type articlesPage struct {
	Articles []Article `json:"articles"`
	NextPage *string   `json:"next_page"`
}

type userEnvelope struct {
	User *User `json:"user"`
}
