package mocks

import (
	"context"

	"github.com/zendesk-ingest/internal/zendesk"
)

// MockZendeskAPI is a mock implementation of the Zendesk API surface
type MockZendeskAPI struct {
	Tickets           []zendesk.Ticket
	CommentsByTicket  map[int64][]zendesk.Comment
	CommentErrors     map[int64]error
	Articles          []zendesk.Article
	User              *zendesk.User
	TicketsError      error
	ArticlesError     error
	UserError         error
	ListCommentsCalls int
	ListCommentsFunc  func(ctx context.Context, ticketID int64) ([]zendesk.Comment, error)
}

// Verify interface compliance
var _ zendesk.API = (*MockZendeskAPI)(nil)

func NewMockZendeskAPI() *MockZendeskAPI {
	return &MockZendeskAPI{
		CommentsByTicket: make(map[int64][]zendesk.Comment),
		CommentErrors:    make(map[int64]error),
	}
}

func (m *MockZendeskAPI) StreamTickets(ctx context.Context, fn func(zendesk.Ticket) error) error {
	if m.TicketsError != nil {
		return m.TicketsError
	}
	for _, t := range m.Tickets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockZendeskAPI) ListComments(ctx context.Context, ticketID int64) ([]zendesk.Comment, error) {
	m.ListCommentsCalls++
	if m.ListCommentsFunc != nil {
		return m.ListCommentsFunc(ctx, ticketID)
	}
	if err := m.CommentErrors[ticketID]; err != nil {
		return nil, err
	}
	return m.CommentsByTicket[ticketID], nil
}

func (m *MockZendeskAPI) StreamArticles(ctx context.Context, fn func(zendesk.Article) error) error {
	if m.ArticlesError != nil {
		return m.ArticlesError
	}
	for _, a := range m.Articles {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(a); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockZendeskAPI) CurrentUser(ctx context.Context) (*zendesk.User, error) {
	if m.UserError != nil {
		return nil, m.UserError
	}
	return m.User, nil
}
