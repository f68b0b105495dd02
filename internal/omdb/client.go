// Package omdb looks up per-title metadata from the OMDb API.
package omdb

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lepinkainen/toplista/internal/cache"
	"github.com/lepinkainen/toplista/internal/errors"
	"github.com/lepinkainen/toplista/internal/httpretry"
)

const (
	defaultBaseURL  = "https://www.omdbapi.com"
	requestLimitMsg = "Request limit reached!"
)

var (
	errUnavailable = stdErrors.New("OMDB API unavailable")
	errMalformed   = stdErrors.New("malformed OMDB response")
)

// JSONFetcher fetches a JSON document, reporting false when nothing usable came back.
type JSONFetcher interface {
	FetchJSON(ctx context.Context, rawURL string, header http.Header, opts ...httpretry.RequestOption) (json.RawMessage, bool)
}

// Client is an OMDb API client.
type Client struct {
	fetcher  JSONFetcher
	apiKey   string
	baseURL  string
	cache    *cache.CacheDB
	cacheTTL time.Duration

	limitReached atomic.Bool
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL for the OMDb API.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithCache stores lookups in db. Found titles live for ttl, unknown IDs
// for cache.NegativeCacheTTL.
func WithCache(db *cache.CacheDB, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = db
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// NewClient creates a new OMDb API client.
func NewClient(fetcher JSONFetcher, apiKey string, opts ...Option) *Client {
	c := &Client{
		fetcher:  fetcher,
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		cacheTTL: cache.DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup fetches metadata for an IMDb ID. It reports false when the title is
// unknown to OMDb, the response could not be used, or the API stayed
// unreachable after retries. It never fails the caller.
func (c *Client) Lookup(ctx context.Context, imdbID string) (*Record, bool) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil, false
	}
	if !c.RequestsAllowed() {
		return nil, false
	}

	cached, fromCache, err := cache.GetOrFetchWithTTL(c.cache, cache.OMDBCacheTable, imdbID,
		func() (*CachedResponse, error) {
			return c.fetch(ctx, imdbID)
		},
		cache.SelectNegativeCacheTTL(c.cacheTTL, func(r *CachedResponse) bool {
			return r.NotFound
		}))
	if err != nil {
		slog.Debug("OMDB lookup failed", "imdb_id", imdbID, "error", err)
		return nil, false
	}

	if cached == nil || cached.NotFound || cached.Response == nil {
		slog.Debug("Movie not found in OMDB", "imdb_id", imdbID, "from_cache", fromCache)
		return nil, false
	}

	record := toRecord(cached.Response)
	if record.ImdbID == "" {
		record.ImdbID = imdbID
	}
	return record, true
}

// fetch performs the uncached lookup. Errors mark results that must not be cached.
func (c *Client) fetch(ctx context.Context, imdbID string) (*CachedResponse, error) {
	endpoint := c.baseURL + "/?" + url.Values{
		"apikey": []string{c.apiKey},
		"i":      []string{imdbID},
		"plot":   []string{"short"},
	}.Encode()

	slog.Debug("Fetching OMDB data by IMDb ID", "imdb_id", imdbID)

	body, ok := c.fetcher.FetchJSON(ctx, endpoint, nil, httpretry.WithStatusCheck(c.checkStatus))
	if !ok {
		if !c.RequestsAllowed() {
			return nil, errors.NewRateLimitError("OMDB API request limit reached")
		}
		return nil, errUnavailable
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}

	if resp.Response != "True" {
		if isRequestLimit(&resp) {
			c.markRateLimitReached()
			return nil, errors.NewRateLimitError("OMDB API request limit reached")
		}
		slog.Debug("OMDB reported failure", "imdb_id", imdbID, "error", resp.Error)
		return &CachedResponse{NotFound: true}, nil
	}

	return &CachedResponse{Response: &resp}, nil
}
