package trakt

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/lepinkainen/toplista/internal/httpretry"
	"github.com/lepinkainen/toplista/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRetryClient() *httpretry.Client {
	return httpretry.New("Trakt", httpretry.WithMaxAttempts(2), httpretry.WithDelay(time.Millisecond))
}

func TestPopular_DecodesEntries(t *testing.T) {
	fake := testutil.NewFakeTrakt(t, `[
		{"title":"Roma","year":2018,"ids":{"trakt":1,"slug":"roma-2018","imdb":"tt6155172","tmdb":426426}},
		{"title":"No IMDb","year":2020,"ids":{"trakt":2}},
		{"title":"No IDs","year":2021}
	]`)

	c := NewClient(newRetryClient(), "client-id", WithBaseURL(fake.URL()))
	entries := c.Popular(context.Background(), 200)

	require.Len(t, entries, 3)
	assert.Equal(t, "tt6155172", entries[0].IMDBID())
	assert.Equal(t, "Roma", entries[0].Title)
	assert.Equal(t, 426426, entries[0].IDs.TMDB)
	assert.Equal(t, "", entries[1].IMDBID())
	assert.Nil(t, entries[2].IDs)
	assert.Equal(t, "", entries[2].IMDBID())

	assert.Equal(t, 1, fake.Calls())
	assert.Equal(t, "200", fake.LastLimit())
}

func TestPopular_SendsTraktHeaders(t *testing.T) {
	fake := testutil.NewFakeTrakt(t, `[]`)

	c := NewClient(newRetryClient(), "client-id", WithBaseURL(fake.URL()+"/"))
	entries := c.Popular(context.Background(), 10)

	assert.Empty(t, entries)
	headers := fake.LastHeaders()
	assert.Equal(t, "2", headers.Get("trakt-api-version"))
	assert.Equal(t, "client-id", headers.Get("trakt-api-key"))
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
}

func TestPopular_NonPositiveLimitUsesDefault(t *testing.T) {
	fake := testutil.NewFakeTrakt(t, `[]`)

	c := NewClient(newRetryClient(), "id", WithBaseURL(fake.URL()))
	c.Popular(context.Background(), 0)

	assert.Equal(t, "350", fake.LastLimit())
}

func TestPopular_FailureYieldsEmpty(t *testing.T) {
	fake := testutil.NewFakeTrakt(t, `[]`)
	fake.SetStatus(http.StatusInternalServerError)

	c := NewClient(newRetryClient(), "id", WithBaseURL(fake.URL()))
	entries := c.Popular(context.Background(), 10)

	assert.NotNil(t, entries)
	assert.Empty(t, entries)
	// single logical request, retried by the retry client
	assert.Equal(t, 2, fake.Calls())
}

func TestPopular_MalformedShapes(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "object instead of array", body: `{"error":"unexpected"}`},
		{name: "null", body: `null`},
		{name: "array of strings", body: `["tt1","tt2"]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fake := testutil.NewFakeTrakt(t, tc.body)

			c := NewClient(newRetryClient(), "id", WithBaseURL(fake.URL()))
			entries := c.Popular(context.Background(), 10)

			assert.NotNil(t, entries)
			assert.Empty(t, entries)
		})
	}
}

type stubFetcher struct {
	url    string
	header http.Header
	body   string
	ok     bool
}

func (s *stubFetcher) FetchJSON(_ context.Context, rawURL string, header http.Header, _ ...httpretry.RequestOption) (json.RawMessage, bool) {
	s.url = rawURL
	s.header = header
	return json.RawMessage(s.body), s.ok
}

func TestPopular_DefaultBaseURL(t *testing.T) {
	stub := &stubFetcher{body: `[]`, ok: true}

	NewClient(stub, "id").Popular(context.Background(), 300)

	assert.Equal(t, "https://api.trakt.tv/movies/popular?limit=300", stub.url)
}
