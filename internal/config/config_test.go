package config

import (
	"testing"
	"time"

	"github.com/lepinkainen/toplista/internal/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	t.Setenv(TraktClientIDEnv, "")
	t.Setenv(OMDBAPIKeyEnv, "")

	v := viper.New()
	require.NoError(t, SetDefaults(v))
	return v
}

func TestLoad_Defaults(t *testing.T) {
	v := newTestViper(t)
	t.Setenv(TraktClientIDEnv, "trakt-id")
	t.Setenv(OMDBAPIKeyEnv, "omdb-key")

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "trakt-id", cfg.TraktClientID)
	assert.Equal(t, "omdb-key", cfg.OMDBAPIKey)
	assert.Equal(t, "https://api.trakt.tv", cfg.TraktBaseURL)
	assert.Equal(t, "https://www.omdbapi.com", cfg.OMDBBaseURL)
	assert.Equal(t, DefaultCatalogLimit, cfg.CatalogLimit)
	assert.Equal(t, DefaultMaxItems, cfg.MaxItems)
	assert.Equal(t, DefaultLanguage, cfg.Language)
	assert.Equal(t, DefaultPause, cfg.Pause)
	assert.Equal(t, DefaultOutputPath, cfg.OutputPath)
	assert.Equal(t, DefaultPoster, cfg.DefaultPoster)
	assert.Equal(t, DefaultRetryAttempts, cfg.RetryAttempts)
	assert.Equal(t, DefaultRetryDelay, cfg.RetryDelay)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Empty(t, cfg.CacheDBFile)
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
}

func TestLoad_MissingCredentials(t *testing.T) {
	testCases := []struct {
		name    string
		trakt   string
		omdb    string
		missing []string
	}{
		{
			name:    "both missing",
			missing: []string{TraktClientIDEnv, OMDBAPIKeyEnv},
		},
		{
			name:    "trakt missing",
			omdb:    "key",
			missing: []string{TraktClientIDEnv},
		},
		{
			name:    "omdb missing",
			trakt:   "id",
			missing: []string{OMDBAPIKeyEnv},
		},
		{
			name:    "whitespace only counts as missing",
			trakt:   "   ",
			omdb:    "key",
			missing: []string{TraktClientIDEnv},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := newTestViper(t)
			t.Setenv(TraktClientIDEnv, tc.trakt)
			t.Setenv(OMDBAPIKeyEnv, tc.omdb)

			_, err := Load(v)
			require.Error(t, err)
			assert.True(t, errors.IsConfigError(err))

			cfgErr := err.(*errors.ConfigError)
			assert.Equal(t, tc.missing, cfgErr.Missing)
		})
	}
}

func TestLoad_PrefixedEnvOverrides(t *testing.T) {
	v := newTestViper(t)
	t.Setenv(TraktClientIDEnv, "trakt-id")
	t.Setenv(OMDBAPIKeyEnv, "omdb-key")
	t.Setenv("TOPLISTA_CATALOG_LIMIT", "200")
	t.Setenv("TOPLISTA_CATALOG_PAUSE", "1s")
	t.Setenv("TOPLISTA_CATALOG_DESCRIPTION_FALLBACK", "Película hablada en español")

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 200, cfg.CatalogLimit)
	assert.Equal(t, time.Second, cfg.Pause)
	assert.Equal(t, "Película hablada en español", cfg.DescriptionFallback)
}

func TestLoad_InvalidPolicyValues(t *testing.T) {
	v := newTestViper(t)
	t.Setenv(TraktClientIDEnv, "trakt-id")
	t.Setenv(OMDBAPIKeyEnv, "omdb-key")

	v.Set("catalog.limit", 0)
	v.Set("retry.attempts", 0)
	v.Set("retry.delay", "-1s")
	v.Set("cache.dbfile", "cache.db")
	v.Set("cache.ttl", "0s")

	_, err := Load(v)
	require.Error(t, err)

	cfgErr := err.(*errors.ConfigError)
	assert.Empty(t, cfgErr.Missing)
	assert.ElementsMatch(t, []string{
		"catalog.limit must be > 0",
		"retry.attempts must be >= 1",
		"retry.delay must be >= 0",
		"cache.ttl must be > 0",
	}, cfgErr.Invalid)
}

func TestLoad_InvalidDurations(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "typo", key: "catalog.pause", value: "bogus"},
		{name: "missing unit", key: "catalog.pause", value: "350"},
		{name: "unknown unit", key: "retry.delay", value: "1x"},
		{name: "empty timeout", key: "http.timeout", value: ""},
		{name: "cache ttl", key: "cache.ttl", value: "one day"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestViper(t)
			t.Setenv(TraktClientIDEnv, "trakt-id")
			t.Setenv(OMDBAPIKeyEnv, "omdb-key")
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			require.Error(t, err)

			var cfgErr *errors.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			require.Len(t, cfgErr.Invalid, 1)
			assert.Contains(t, cfgErr.Invalid[0], tt.key+": invalid duration")
		})
	}
}

func TestLoad_DurationsWithUnits(t *testing.T) {
	v := newTestViper(t)
	t.Setenv(TraktClientIDEnv, "trakt-id")
	t.Setenv(OMDBAPIKeyEnv, "omdb-key")
	v.Set("catalog.pause", "0")
	v.Set("retry.delay", "1.5s")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.Pause)
	assert.Equal(t, 1500*time.Millisecond, cfg.RetryDelay)
}

func TestLoad_TrimsBaseURLs(t *testing.T) {
	v := newTestViper(t)
	t.Setenv(TraktClientIDEnv, "trakt-id")
	t.Setenv(OMDBAPIKeyEnv, "omdb-key")
	v.Set("trakt.base_url", "http://localhost:8080/")
	v.Set("omdb.base_url", "http://localhost:9090//")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.TraktBaseURL)
	assert.Equal(t, "http://localhost:9090", cfg.OMDBBaseURL)
}
