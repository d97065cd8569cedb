package zendesk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/zendesk-ingest/internal/config"
	"github.com/zendesk-ingest/internal/models"
)

// API is the upstream surface the Fetcher depends on. Implementations must
// return callback errors unchanged so the fetcher can stop a stream early.
type API interface {
	StreamTickets(ctx context.Context, fn func(Ticket) error) error
	ListComments(ctx context.Context, ticketID int64) ([]Comment, error)
	StreamArticles(ctx context.Context, fn func(Article) error) error
	CurrentUser(ctx context.Context) (*User, error)
}

var _ API = (*Client)(nil)

// errStopStream stops a stream walk once the record limit is reached.
var errStopStream = errors.New("stop stream")

// Fetcher pulls tickets and help-center articles from one Zendesk tenant
// and normalizes them into indexable records. It keeps no state between
// calls; every fetch starts from the top of the upstream collection.
type Fetcher struct {
	api       API
	subdomain string
	pacer     Pacer
	log       zerolog.Logger
}

// NewFetcher creates a Fetcher backed by the HTTP client. Construction
// performs no network I/O.
func NewFetcher(cfg config.ZendeskConfig, log zerolog.Logger) *Fetcher {
	return NewFetcherWithAPI(NewClient(cfg), cfg, log)
}

// NewFetcherWithAPI creates a Fetcher on a caller-supplied API
// implementation.
func NewFetcherWithAPI(api API, cfg config.ZendeskConfig, log zerolog.Logger) *Fetcher {
	var pacer Pacer
	if cfg.PaceMode == "rate" {
		pacer = NewLimiterPacer(cfg.PaceRPS)
	} else {
		pacer = IntervalPacer{Every: cfg.PaceEvery, Delay: cfg.PaceDelay}
	}
	return &Fetcher{
		api:       api,
		subdomain: cfg.Subdomain,
		pacer:     pacer,
		log:       log.With().Str("component", "fetcher").Logger(),
	}
}

// FetchTickets returns up to limit non-closed tickets in upstream order,
// each carrying its comment thread. A failed comment fetch empties that
// one ticket's thread and the fetch continues; a failed ticket stream
// aborts the whole call with a *FetchError and no partial result.
func (f *Fetcher) FetchTickets(ctx context.Context, limit int) ([]models.TicketRecord, error) {
	records := make([]models.TicketRecord, 0)
	if limit <= 0 {
		return records, nil
	}

	start := time.Now()
	err := f.api.StreamTickets(ctx, func(t Ticket) error {
		comments, err := f.collectComments(ctx, t.ID)
		if err != nil {
			return err
		}
		records = append(records, f.normalizeTicket(t, comments))
		if len(records) >= limit {
			return errStopStream
		}
		return f.pacer.Pace(ctx, len(records))
	})
	if err != nil && !errors.Is(err, errStopStream) {
		f.log.Error().Err(err).Msg("Ticket fetch failed")
		return nil, &FetchError{Resource: "tickets", Err: err}
	}

	f.log.Info().
		Int("tickets", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Fetched tickets")
	return records, nil
}

// FetchArticles returns up to limit help-center articles in upstream
// order. The whole call aborts with a *FetchError when the stream fails.
func (f *Fetcher) FetchArticles(ctx context.Context, limit int) ([]models.ArticleRecord, error) {
	records := make([]models.ArticleRecord, 0)
	if limit <= 0 {
		return records, nil
	}

	start := time.Now()
	err := f.api.StreamArticles(ctx, func(a Article) error {
		records = append(records, f.normalizeArticle(a))
		if len(records) >= limit {
			return errStopStream
		}
		return f.pacer.Pace(ctx, len(records))
	})
	if err != nil && !errors.Is(err, errStopStream) {
		f.log.Error().Err(err).Msg("Article fetch failed")
		return nil, &FetchError{Resource: "articles", Err: err}
	}

	f.log.Info().
		Int("articles", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Fetched articles")
	return records, nil
}

// TestConnection verifies the configured credentials by asking the API for
// the identity behind them. It reports false on any failure and never
// returns an error.
func (f *Fetcher) TestConnection(ctx context.Context) bool {
	user, err := f.api.CurrentUser(ctx)
	if err != nil {
		f.log.Error().Err(err).Msg("Connection test failed")
		return false
	}
	if user == nil {
		f.log.Error().Msg("Connection test returned no user")
		return false
	}
	f.log.Info().Int64("user_id", user.ID).Msg("Connection test succeeded")
	return true
}

// collectComments fetches one ticket's thread and normalizes it, dropping
// comments with blank bodies. A fetch failure yields an empty thread, not
// an error; a canceled context aborts the whole fetch, not just this
// ticket.
func (f *Fetcher) collectComments(ctx context.Context, ticketID int64) ([]models.CommentRecord, error) {
	comments, err := f.api.ListComments(ctx, ticketID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		f.log.Warn().Err(err).Int64("ticket_id", ticketID).Msg("Failed to fetch ticket comments")
		return []models.CommentRecord{}, nil
	}

	records := make([]models.CommentRecord, 0, len(comments))
	for _, cm := range comments {
		if strings.TrimSpace(cm.Body) == "" {
			continue
		}
		records = append(records, models.CommentRecord{
			AuthorID:  cm.AuthorID,
			Body:      cm.Body,
			CreatedAt: formatTime(cm.CreatedAt),
			Public:    cm.Public,
		})
	}
	return records, nil
}

func (f *Fetcher) normalizeTicket(t Ticket, comments []models.CommentRecord) models.TicketRecord {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.TicketRecord{
		ID:          t.ID,
		Subject:     t.Subject,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		RequesterID: t.RequesterID,
		AssigneeID:  t.AssigneeID,
		GroupID:     t.GroupID,
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
		Tags:        tags,
		Comments:    comments,
		URL:         fmt.Sprintf("https://%s.zendesk.com/agent/tickets/%d", f.subdomain, t.ID),
		Type:        models.KindTicket,
	}
}

func (f *Fetcher) normalizeArticle(a Article) models.ArticleRecord {
	labels := a.LabelNames
	if labels == nil {
		labels = []string{}
	}
	return models.ArticleRecord{
		ID:        a.ID,
		Title:     a.Title,
		Body:      a.Body,
		SectionID: a.SectionID,
		AuthorID:  a.AuthorID,
		CreatedAt: formatTime(a.CreatedAt),
		UpdatedAt: formatTime(a.UpdatedAt),
		Draft:     a.Draft,
		Promoted:  a.Promoted,
		Labels:    labels,
		Locale:    a.Locale,
		URL:       a.HTMLURL,
		Type:      models.KindArticle,
	}
}

// formatTime renders an upstream timestamp as RFC3339, or "" when absent.
func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
