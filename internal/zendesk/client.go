package zendesk

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zendesk-ingest/internal/config"
)

// exportQuery selects non-closed tickets from the search export stream.
const exportQuery = "type:ticket status<closed"

// pageSize is the page size requested from paginated endpoints.
const pageSize = 100

// Client is a Zendesk REST API client. It implements the API surface the
// Fetcher depends on.
type Client struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
}

// NewClient creates a new Zendesk client from the given config. Token auth
// follows the "{email}/token:{api_token}" basic-auth convention. When
// cfg.BaseURL is empty the tenant URL is derived from the subdomain.
func NewClient(cfg config.ZendeskConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.zendesk.com", cfg.Subdomain)
	}
	creds := base64.StdEncoding.EncodeToString([]byte(cfg.Email + "/token:" + cfg.APIToken))
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authHeader: "Basic " + creds,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// StreamTickets walks the ticket export stream in upstream order, calling
// fn for each ticket. A non-nil error from fn stops the walk and is
// returned unchanged.
func (c *Client) StreamTickets(ctx context.Context, fn func(Ticket) error) error {
	params := url.Values{}
	params.Set("query", exportQuery)
	params.Set("filter[type]", "ticket")
	params.Set("page[size]", strconv.Itoa(pageSize))
	next := c.baseURL + "/api/v2/search/export.json?" + params.Encode()

	for next != "" {
		var page searchExportPage
		if err := c.get(ctx, next, &page); err != nil {
			return err
		}
		for _, t := range page.Results {
			if err := fn(t); err != nil {
				return err
			}
		}
		if !page.Meta.HasMore {
			return nil
		}
		next = page.Links.Next
	}
	return nil
}

// ListComments returns the full comment thread of one ticket.
func (c *Client) ListComments(ctx context.Context, ticketID int64) ([]Comment, error) {
	next := fmt.Sprintf("%s/api/v2/tickets/%d/comments.json", c.baseURL, ticketID)
	var comments []Comment
	for next != "" {
		var page commentsPage
		if err := c.get(ctx, next, &page); err != nil {
			return nil, err
		}
		comments = append(comments, page.Comments...)
		if page.NextPage == nil {
			break
		}
		next = *page.NextPage
	}
	return comments, nil
}

// StreamArticles walks the help-center article collection in upstream
// order, calling fn for each article. A non-nil error from fn stops the
// walk and is returned unchanged.
func (c *Client) StreamArticles(ctx context.Context, fn func(Article) error) error {
	next := fmt.Sprintf("%s/api/v2/help_center/articles.json?per_page=%d", c.baseURL, pageSize)
	for next != "" {
		var page articlesPage
		if err := c.get(ctx, next, &page); err != nil {
			return err
		}
		for _, a := range page.Articles {
			if err := fn(a); err != nil {
				return err
			}
		}
		if page.NextPage == nil {
			return nil
		}
		next = *page.NextPage
	}
	return nil
}

// CurrentUser returns the identity behind the configured credentials.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var env userEnvelope
	if err := c.get(ctx, c.baseURL+"/api/v2/users/me.json", &env); err != nil {
		return nil, err
	}
	// An anonymous response carries a user with a null id.
	if env.User == nil || env.User.ID == 0 {
		return nil, fmt.Errorf("no authenticated user in response")
	}
	return env.User, nil
}

func (c *Client) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("zendesk API returned %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
