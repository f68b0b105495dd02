// Package config loads the run configuration from viper into an immutable struct.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/lepinkainen/toplista/internal/errors"
	"github.com/spf13/viper"
)

// Environment variables holding the required API credentials
const (
	TraktClientIDEnv = "TRAKT_CLIENT_ID"
	OMDBAPIKeyEnv    = "OMDB_KEY"
)

// Policy defaults
const (
	DefaultCatalogLimit  = 350
	DefaultMaxItems      = 150
	DefaultLanguage      = "spanish"
	DefaultPause         = 350 * time.Millisecond
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = time.Second
	DefaultOMDBRateLimit = 5
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultOutputPath    = "data/imdb_top_spanish.json"
	DefaultPoster        = "https://www.moviesindetail.com/icon-192.webp"
	DefaultCacheTTL      = 24 * time.Hour
)

// Config is the validated configuration for a single run.
type Config struct {
	TraktClientID string
	OMDBAPIKey    string

	TraktBaseURL string
	OMDBBaseURL  string

	CatalogLimit        int
	MaxItems            int
	Language            string
	Pause               time.Duration
	OutputPath          string
	DefaultPoster       string
	DescriptionFallback string

	RetryAttempts int
	RetryDelay    time.Duration
	OMDBRateLimit int
	HTTPTimeout   time.Duration

	// CacheDBFile enables the OMDb response cache when non-empty
	CacheDBFile string
	CacheTTL    time.Duration
}

// SetDefaults registers default values and environment bindings on v.
func SetDefaults(v *viper.Viper) error {
	v.SetDefault("trakt.base_url", "https://api.trakt.tv")
	v.SetDefault("omdb.base_url", "https://www.omdbapi.com")
	v.SetDefault("omdb.rate_limit", DefaultOMDBRateLimit)

	v.SetDefault("catalog.limit", DefaultCatalogLimit)
	v.SetDefault("catalog.max_items", DefaultMaxItems)
	v.SetDefault("catalog.language", DefaultLanguage)
	v.SetDefault("catalog.pause", DefaultPause.String())
	v.SetDefault("catalog.output", DefaultOutputPath)
	v.SetDefault("catalog.default_poster", DefaultPoster)
	v.SetDefault("catalog.description_fallback", "")

	v.SetDefault("retry.attempts", DefaultRetryAttempts)
	v.SetDefault("retry.delay", DefaultRetryDelay.String())
	v.SetDefault("http.timeout", DefaultHTTPTimeout.String())

	v.SetDefault("cache.dbfile", "")
	v.SetDefault("cache.ttl", DefaultCacheTTL.String())

	// TOPLISTA_CATALOG_LIMIT and friends override any key
	v.SetEnvPrefix("toplista")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("trakt.client_id", TraktClientIDEnv); err != nil {
		return fmt.Errorf("failed to bind %s: %w", TraktClientIDEnv, err)
	}
	if err := v.BindEnv("omdb.api_key", OMDBAPIKeyEnv); err != nil {
		return fmt.Errorf("failed to bind %s: %w", OMDBAPIKeyEnv, err)
	}
	return nil
}

// Load reads the configuration from v and validates it.
// A missing credential or an out-of-range policy value yields a *errors.ConfigError.
func Load(v *viper.Viper) (Config, error) {
	cfgErr := &errors.ConfigError{}

	// durations need an explicit unit; unparseable values are reported, never zeroed
	duration := func(key string) time.Duration {
		raw := strings.TrimSpace(v.GetString(key))
		d, err := time.ParseDuration(raw)
		if err != nil {
			cfgErr.Invalid = append(cfgErr.Invalid, fmt.Sprintf("%s: invalid duration %q (use a unit, e.g. 350ms)", key, raw))
			return 0
		}
		return d
	}

	cfg := Config{
		TraktClientID:       strings.TrimSpace(v.GetString("trakt.client_id")),
		OMDBAPIKey:          strings.TrimSpace(v.GetString("omdb.api_key")),
		TraktBaseURL:        strings.TrimRight(v.GetString("trakt.base_url"), "/"),
		OMDBBaseURL:         strings.TrimRight(v.GetString("omdb.base_url"), "/"),
		CatalogLimit:        v.GetInt("catalog.limit"),
		MaxItems:            v.GetInt("catalog.max_items"),
		Language:            strings.TrimSpace(v.GetString("catalog.language")),
		Pause:               duration("catalog.pause"),
		OutputPath:          v.GetString("catalog.output"),
		DefaultPoster:       v.GetString("catalog.default_poster"),
		DescriptionFallback: v.GetString("catalog.description_fallback"),
		RetryAttempts:       v.GetInt("retry.attempts"),
		RetryDelay:          duration("retry.delay"),
		OMDBRateLimit:       v.GetInt("omdb.rate_limit"),
		HTTPTimeout:         duration("http.timeout"),
		CacheDBFile:         v.GetString("cache.dbfile"),
		CacheTTL:            duration("cache.ttl"),
	}

	cfg.validate(cfgErr)
	if !cfgErr.Empty() {
		return Config{}, cfgErr
	}
	return cfg, nil
}

// validate records missing credentials and out-of-range policy values in cfgErr.
func (c Config) validate(cfgErr *errors.ConfigError) {
	if c.TraktClientID == "" {
		cfgErr.Missing = append(cfgErr.Missing, TraktClientIDEnv)
	}
	if c.OMDBAPIKey == "" {
		cfgErr.Missing = append(cfgErr.Missing, OMDBAPIKeyEnv)
	}

	if c.CatalogLimit <= 0 {
		cfgErr.Invalid = append(cfgErr.Invalid, "catalog.limit must be > 0")
	}
	if c.MaxItems <= 0 {
		cfgErr.Invalid = append(cfgErr.Invalid, "catalog.max_items must be > 0")
	}
	if c.Language == "" {
		cfgErr.Invalid = append(cfgErr.Invalid, "catalog.language must not be empty")
	}
	if c.Pause < 0 {
		cfgErr.Invalid = append(cfgErr.Invalid, "catalog.pause must be >= 0")
	}
	if c.OutputPath == "" {
		cfgErr.Invalid = append(cfgErr.Invalid, "catalog.output must not be empty")
	}
	if c.RetryAttempts < 1 {
		cfgErr.Invalid = append(cfgErr.Invalid, "retry.attempts must be >= 1")
	}
	if c.RetryDelay < 0 {
		cfgErr.Invalid = append(cfgErr.Invalid, "retry.delay must be >= 0")
	}
	if c.OMDBRateLimit < 0 {
		cfgErr.Invalid = append(cfgErr.Invalid, "omdb.rate_limit must be >= 0")
	}
	if c.CacheDBFile != "" && c.CacheTTL <= 0 {
		cfgErr.Invalid = append(cfgErr.Invalid, "cache.ttl must be > 0")
	}
}
