package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// OMDBMovie is the subset of an OMDb response the fakes need to produce.
type OMDBMovie struct {
	ImdbID     string `json:"imdbID"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Poster     string `json:"Poster"`
	Plot       string `json:"Plot"`
	Language   string `json:"Language"`
	ImdbRating string `json:"imdbRating"`
	Response   string `json:"Response"`
	Error      string `json:"Error,omitempty"`
}

// FakeOMDB is an httptest server answering OMDb "?i=<id>" lookups.
// Unknown IDs get the OMDb "Incorrect IMDb ID." failure response.
type FakeOMDB struct {
	Server *httptest.Server

	mu      sync.Mutex
	movies  map[string]OMDBMovie
	status  map[string]int
	calls   map[string]int
	queries []map[string]string

	quotaExhausted bool
}

// NewFakeOMDB starts a fake OMDb server that is closed when the test ends.
func NewFakeOMDB(t *testing.T) *FakeOMDB {
	t.Helper()

	f := &FakeOMDB{
		movies: make(map[string]OMDBMovie),
		status: make(map[string]int),
		calls:  make(map[string]int),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)

	return f
}

// URL returns the base URL of the server.
func (f *FakeOMDB) URL() string {
	return f.Server.URL
}

// Add registers a movie; Response defaults to "True".
func (f *FakeOMDB) Add(m OMDBMovie) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if m.Response == "" {
		m.Response = "True"
	}
	f.movies[m.ImdbID] = m
}

// FailWith makes lookups of id answer with the given HTTP status.
func (f *FakeOMDB) FailWith(id string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[id] = status
}

// ExhaustQuota makes every later lookup fail the way OMDb does once the daily
// limit is used up: HTTP 401 with a "Request limit reached!" error body.
func (f *FakeOMDB) ExhaustQuota() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotaExhausted = true
}

// Calls returns how many lookups were made for id.
func (f *FakeOMDB) Calls(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

// TotalCalls returns the number of lookups across all IDs.
func (f *FakeOMDB) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// LastQuery returns the query parameters of the most recent request.
func (f *FakeOMDB) LastQuery() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queries) == 0 {
		return nil
	}
	return f.queries[len(f.queries)-1]
}

func (f *FakeOMDB) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := q.Get("i")

	f.mu.Lock()
	f.calls[id]++
	f.queries = append(f.queries, map[string]string{
		"apikey": q.Get("apikey"),
		"i":      id,
		"plot":   q.Get("plot"),
	})
	status, failing := f.status[id]
	movie, known := f.movies[id]
	quotaExhausted := f.quotaExhausted
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if quotaExhausted {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"Response":"False","Error":"Request limit reached!"}`))
		return
	}

	if failing {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"Response":"False","Error":"Server error"}`))
		return
	}
	if !known {
		movie = OMDBMovie{Response: "False", Error: "Incorrect IMDb ID."}
	}

	_ = json.NewEncoder(w).Encode(movie)
}

// FakeTrakt is an httptest server answering /movies/popular with a canned body.
type FakeTrakt struct {
	Server *httptest.Server

	mu      sync.Mutex
	body    string
	status  int
	calls   int
	limit   string
	headers http.Header
}

// NewFakeTrakt starts a fake Trakt server returning body with status 200.
func NewFakeTrakt(t *testing.T, body string) *FakeTrakt {
	t.Helper()

	f := &FakeTrakt{body: body, status: http.StatusOK}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)

	return f
}

// URL returns the base URL of the server.
func (f *FakeTrakt) URL() string {
	return f.Server.URL
}

// SetStatus changes the HTTP status returned for subsequent requests.
func (f *FakeTrakt) SetStatus(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

// Calls returns the number of requests served.
func (f *FakeTrakt) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastLimit returns the limit query parameter of the most recent request.
func (f *FakeTrakt) LastLimit() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.limit
}

// LastHeaders returns the headers of the most recent request.
func (f *FakeTrakt) LastHeaders() http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.headers
}

func (f *FakeTrakt) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls++
	f.limit = r.URL.Query().Get("limit")
	f.headers = r.Header.Clone()
	status, body := f.status, f.body
	f.mu.Unlock()

	if r.URL.Path != "/movies/popular" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
