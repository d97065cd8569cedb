package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/zendesk-ingest/internal/models"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Validator checks normalized records against the invariants the document
// store relies on. Records failing validation are skipped individually;
// they never fail the surrounding batch.
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateTicket validates a normalized ticket record
func (v *Validator) ValidateTicket(ticket *models.TicketRecord) []ValidationError {
	var errors []ValidationError

	// Validate ID
	if ticket.ID <= 0 {
		errors = append(errors, ValidationError{Field: "id", Message: "id must be positive", Value: ticket.ID})
	}

	// Validate discriminator
	if ticket.Type != models.KindTicket {
		errors = append(errors, ValidationError{
			Field:   "type",
			Message: fmt.Sprintf("type must be %q", models.KindTicket),
			Value:   string(ticket.Type),
		})
	}

	// Validate URL
	if ticket.URL == "" {
		errors = append(errors, ValidationError{Field: "url", Message: "url is required"})
	}

	// Validate timestamps
	errors = validateTimestamp(errors, "created_at", ticket.CreatedAt)
	errors = validateTimestamp(errors, "updated_at", ticket.UpdatedAt)

	// Tags and comments must be present, possibly empty
	if ticket.Tags == nil {
		errors = append(errors, ValidationError{Field: "tags", Message: "tags must not be null"})
	}
	if ticket.Comments == nil {
		errors = append(errors, ValidationError{Field: "comments", Message: "comments must not be null"})
	}

	// Validate comment thread
	for i, comment := range ticket.Comments {
		if strings.TrimSpace(comment.Body) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("comments[%d].body", i),
				Message: "comment body must not be blank",
			})
		}
		errors = validateTimestamp(errors, fmt.Sprintf("comments[%d].created_at", i), comment.CreatedAt)
	}

	return errors
}

// ValidateArticle validates a normalized article record
func (v *Validator) ValidateArticle(article *models.ArticleRecord) []ValidationError {
	var errors []ValidationError

	// Validate ID
	if article.ID <= 0 {
		errors = append(errors, ValidationError{Field: "id", Message: "id must be positive", Value: article.ID})
	}

	// Validate discriminator
	if article.Type != models.KindArticle {
		errors = append(errors, ValidationError{
			Field:   "type",
			Message: fmt.Sprintf("type must be %q", models.KindArticle),
			Value:   string(article.Type),
		})
	}

	// Validate timestamps
	errors = validateTimestamp(errors, "created_at", article.CreatedAt)
	errors = validateTimestamp(errors, "updated_at", article.UpdatedAt)

	// Labels must be present, possibly empty
	if article.Labels == nil {
		errors = append(errors, ValidationError{Field: "label_names", Message: "label_names must not be null"})
	}

	return errors
}

// validateTimestamp accepts an empty string or a valid RFC3339 timestamp
func validateTimestamp(errors []ValidationError, field, value string) []ValidationError {
	if value == "" {
		return errors
	}
	if _, err := time.Parse(time.RFC3339, value); err != nil {
		return append(errors, ValidationError{Field: field, Message: "invalid ISO 8601 date format", Value: value})
	}
	return errors
}
