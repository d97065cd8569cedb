package zendesk_test

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zendesk-ingest/internal/config"
	"github.com/zendesk-ingest/internal/zendesk"
)

func newTestClient(t *testing.T, baseURL string) *zendesk.Client {
	t.Helper()
	return zendesk.NewClient(config.ZendeskConfig{
		BaseURL:  baseURL,
		Email:    "agent@acme.example",
		APIToken: "secret-token",
	})
}

func TestClient_StreamTickets_FollowsPagination(t *testing.T) {
	var server *httptest.Server
	requests := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/search/export.json", func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `{"results":[{"id":3,"subject":"Third"}],"meta":{"has_more":false}}`)
			return
		}
		if got := r.URL.Query().Get("query"); got != "type:ticket status<closed" {
			t.Errorf("query = %q, want the non-closed ticket filter", got)
		}
		if got := r.URL.Query().Get("page[size]"); got != "100" {
			t.Errorf("page[size] = %q, want 100", got)
		}
		fmt.Fprintf(w, `{"results":[{"id":1,"subject":"First","created_at":"2024-01-01T00:00:00Z"},{"id":2,"subject":"Second"}],"meta":{"has_more":true},"links":{"next":"%s/api/v2/search/export.json?page=2"}}`, server.URL)
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)

	var ids []int64
	err := client.StreamTickets(context.Background(), func(tk zendesk.Ticket) error {
		ids = append(ids, tk.ID)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamTickets() error = %v", err)
	}

	if requests != 2 {
		t.Errorf("Server received %d requests, want 2 pages", requests)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Errorf("Streamed IDs = %v, want [1 2 3] in upstream order", ids)
	}
}

func TestClient_StreamTickets_CallbackErrorStopsWalk(t *testing.T) {
	requests := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/search/export.json", func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, `{"results":[{"id":1},{"id":2}],"meta":{"has_more":true},"links":{"next":"unused"}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)

	stopErr := errors.New("stop here")
	seen := 0
	err := client.StreamTickets(context.Background(), func(tk zendesk.Ticket) error {
		seen++
		return stopErr
	})

	// The callback error must come back unchanged so callers can match it
	if !errors.Is(err, stopErr) {
		t.Errorf("StreamTickets() error = %v, want the callback error unchanged", err)
	}
	if seen != 1 {
		t.Errorf("Callback ran %d times after returning an error, want 1", seen)
	}
	if requests != 1 {
		t.Errorf("Server received %d requests, want no fetch past the stop", requests)
	}
}

func TestClient_ListComments_FollowsPagination(t *testing.T) {
	var server *httptest.Server

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/tickets/42/comments.json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `{"comments":[{"id":3,"author_id":7,"body":"Third"}],"next_page":null}`)
			return
		}
		fmt.Fprintf(w, `{"comments":[{"id":1,"author_id":7,"body":"First","public":true},{"id":2,"author_id":8,"body":"Second"}],"next_page":"%s/api/v2/tickets/42/comments.json?page=2"}`, server.URL)
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)

	comments, err := client.ListComments(context.Background(), 42)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("Expected 3 comments across pages, got %d", len(comments))
	}
	if comments[0].Body != "First" || comments[2].Body != "Third" {
		t.Errorf("Comment order lost: %+v", comments)
	}
	if !comments[0].Public {
		t.Error("Public flag lost in decoding")
	}
}

func TestClient_StreamArticles_FollowsPagination(t *testing.T) {
	var server *httptest.Server

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/help_center/articles.json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `{"articles":[{"id":5003,"title":"C"}],"next_page":null}`)
			return
		}
		if got := r.URL.Query().Get("per_page"); got != "100" {
			t.Errorf("per_page = %q, want 100", got)
		}
		fmt.Fprintf(w, `{"articles":[{"id":5001,"title":"A","label_names":["faq"]},{"id":5002,"title":"B"}],"next_page":"%s/api/v2/help_center/articles.json?page=2"}`, server.URL)
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)

	var ids []int64
	err := client.StreamArticles(context.Background(), func(a zendesk.Article) error {
		ids = append(ids, a.ID)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamArticles() error = %v", err)
	}
	if len(ids) != 3 || ids[0] != 5001 || ids[2] != 5003 {
		t.Errorf("Streamed IDs = %v, want [5001 5002 5003]", ids)
	}
}

func TestClient_SendsTokenAuthHeaders(t *testing.T) {
	var gotAuth, gotAccept string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/users/me.json", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		fmt.Fprint(w, `{"user":{"id":42,"name":"Agent","email":"agent@acme.example","role":"admin"}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)

	if _, err := client.CurrentUser(context.Background()); err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}

	wantCreds := base64.StdEncoding.EncodeToString([]byte("agent@acme.example/token:secret-token"))
	if gotAuth != "Basic "+wantCreds {
		t.Errorf("Authorization = %q, want basic auth with the {email}/token convention", gotAuth)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want application/json", gotAccept)
	}
}

func TestClient_CurrentUser(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantID   int64
		wantErr  bool
	}{
		{
			name:     "authenticated user",
			response: `{"user":{"id":42,"name":"Agent","email":"agent@acme.example","role":"admin"}}`,
			wantID:   42,
		},
		{
			name:     "anonymous response",
			response: `{"user":{"id":0,"name":"Anonymous"}}`,
			wantErr:  true,
		},
		{
			name:     "null user",
			response: `{"user":null}`,
			wantErr:  true,
		},
		{
			name:     "empty envelope",
			response: `{}`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/api/v2/users/me.json", func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.response)
			})
			server := httptest.NewServer(mux)
			defer server.Close()

			client := newTestClient(t, server.URL)

			user, err := client.CurrentUser(context.Background())
			if tt.wantErr {
				if err == nil {
					t.Error("Expected an error for unauthenticated response")
				}
				return
			}
			if err != nil {
				t.Fatalf("CurrentUser() error = %v", err)
			}
			if user.ID != tt.wantID {
				t.Errorf("user.ID = %d, want %d", user.ID, tt.wantID)
			}
		})
	}
}

func TestClient_NonOKStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/users/me.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":"rate limited"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.CurrentUser(context.Background())
	if err == nil {
		t.Fatal("Expected an error for a 429 response")
	}
	if !strings.Contains(err.Error(), "zendesk API returned 429") {
		t.Errorf("Error = %v, want the status code surfaced", err)
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("Error = %v, want the response body included", err)
	}
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/users/me.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"user":{"id":42}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL+"/")

	user, err := client.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if user.ID != 42 {
		t.Errorf("user.ID = %d, want 42", user.ID)
	}
}
