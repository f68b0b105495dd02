// Package trakt reads the popular-movies list from the Trakt API.
package trakt

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/lepinkainen/toplista/internal/httpretry"
)

const (
	defaultBaseURL = "https://api.trakt.tv"
	apiVersion     = "2"
	// DefaultLimit is the page size requested when none is given
	DefaultLimit = 350
)

// JSONFetcher fetches a JSON document, reporting false when nothing usable came back.
type JSONFetcher interface {
	FetchJSON(ctx context.Context, rawURL string, header http.Header, opts ...httpretry.RequestOption) (json.RawMessage, bool)
}

// IDs holds external identifiers for a movie
type IDs struct {
	Trakt int    `json:"trakt,omitempty"`
	Slug  string `json:"slug,omitempty"`
	IMDB  string `json:"imdb,omitempty"`
	TMDB  int    `json:"tmdb,omitempty"`
}

// Entry is one item of the popular list. Only IDs.IMDB is relied upon.
type Entry struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
	IDs   *IDs   `json:"ids,omitempty"`
}

// IMDBID returns the trimmed IMDb identifier, or "" when the entry has none.
func (e Entry) IMDBID() string {
	if e.IDs == nil {
		return ""
	}
	return strings.TrimSpace(e.IDs.IMDB)
}

// Client handles Trakt API interactions
type Client struct {
	fetcher  JSONFetcher
	clientID string
	baseURL  string
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL for the Trakt API.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// NewClient creates a new Trakt API client
func NewClient(fetcher JSONFetcher, clientID string, opts ...Option) *Client {
	c := &Client{
		fetcher:  fetcher,
		clientID: clientID,
		baseURL:  defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// headers returns the required Trakt API headers
func (c *Client) headers() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("trakt-api-version", apiVersion)
	h.Set("trakt-api-key", c.clientID)
	return h
}

// Popular fetches up to limit popular movies in a single request.
// Any failure (exhausted retries, non-array body) yields an empty slice.
func (c *Client) Popular(ctx context.Context, limit int) []Entry {
	if limit <= 0 {
		limit = DefaultLimit
	}

	endpoint := c.baseURL + "/movies/popular?" + url.Values{
		"limit": []string{strconv.Itoa(limit)},
	}.Encode()

	body, ok := c.fetcher.FetchJSON(ctx, endpoint, c.headers())
	if !ok {
		slog.Warn("Trakt popular list unavailable, continuing with empty catalog")
		return []Entry{}
	}

	var entries []Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		slog.Warn("Unexpected Trakt response shape", "error", err)
		return []Entry{}
	}
	if entries == nil {
		// a JSON null decodes without error
		return []Entry{}
	}

	slog.Info("Fetched popular movies", "count", len(entries), "limit", limit)
	return entries
}
