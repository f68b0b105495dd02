package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/lepinkainen/toplista/internal/cache"
	"github.com/lepinkainen/toplista/internal/catalog"
	"github.com/lepinkainen/toplista/internal/config"
	"github.com/lepinkainen/toplista/internal/errors"
	"github.com/lepinkainen/toplista/internal/httpretry"
	"github.com/lepinkainen/toplista/internal/omdb"
	"github.com/lepinkainen/toplista/internal/ratelimit"
	"github.com/lepinkainen/toplista/internal/trakt"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

var runGenerate = generate

// CLI represents the complete command structure for the toplista application
type CLI struct {
	// Global flags
	LogLevel string `help:"Log level (debug, info, warn, error)" enum:"debug,info,warn,error" default:"info"`
	LogFile  string `help:"Also write logs to this file, rotated by size"`

	Generate GenerateCmd `cmd:"" default:"withargs" help:"Build the Spanish-language top movie catalog"`
}

// GenerateCmd represents the generate command. Unset flags fall back to the
// environment and built-in defaults.
type GenerateCmd struct {
	Output        string `short:"o" help:"Path of the generated catalog file (default data/imdb_top_spanish.json)"`
	Limit         int    `help:"Number of popular titles to request from Trakt"`
	MaxItems      int    `help:"Maximum number of titles in the catalog"`
	Language      string `help:"Language that must appear in the OMDb language field"`
	Pause         string `help:"Pause between metadata lookups (e.g. 350ms)"`
	RetryAttempts int    `help:"Attempts per HTTP request"`
	RetryDelay    string `help:"Fixed delay between HTTP attempts (e.g. 1s)"`
	CacheDBFile   string `name:"cache-db" help:"Path to SQLite cache for OMDb responses (disabled when empty)"`
	CacheTTL      string `help:"Cache time-to-live for OMDb responses (e.g. 24h)"`
}

// Execute parses the command line and runs the selected command.
func Execute() {
	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("toplista"),
		kong.Description("Builds a ranked catalog of popular Spanish-language movies from Trakt and OMDb."),
		kong.UsageOnError(),
	)

	if err := initLogging(cli.LogLevel, cli.LogFile); err != nil {
		slog.Error("Failed to set up logging", "error", err)
		os.Exit(1)
	}

	if err := initConfig(); err != nil {
		slog.Error("Failed to initialise configuration", "error", err)
		os.Exit(1)
	}

	if err := ctx.Run(); err != nil {
		if errors.IsConfigError(err) {
			slog.Error("Configuration error", "error", err)
		} else {
			slog.Error("Command failed", "error", err)
		}
		os.Exit(1)
	}
}

func initConfig() error {
	return config.SetDefaults(viper.GetViper())
}

// applyFlags copies explicitly given flags over the viper configuration.
func (g *GenerateCmd) applyFlags(v *viper.Viper) {
	setString := func(key, value string) {
		if strings.TrimSpace(value) != "" {
			v.Set(key, value)
		}
	}
	setInt := func(key string, value int) {
		if value != 0 {
			v.Set(key, value)
		}
	}

	setString("catalog.output", g.Output)
	setInt("catalog.limit", g.Limit)
	setInt("catalog.max_items", g.MaxItems)
	setString("catalog.language", g.Language)
	setString("catalog.pause", g.Pause)
	setInt("retry.attempts", g.RetryAttempts)
	setString("retry.delay", g.RetryDelay)
	setString("cache.dbfile", g.CacheDBFile)
	setString("cache.ttl", g.CacheTTL)
}

func (g *GenerateCmd) Run() error {
	v := viper.GetViper()
	g.applyFlags(v)

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = runGenerate(ctx, cfg, afero.NewOsFs())
	return err
}

// generate wires the HTTP clients, the optional cache and the pipeline together.
func generate(ctx context.Context, cfg config.Config, fs afero.Fs) (*catalog.Result, error) {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	traktFetcher := httpretry.New("Trakt",
		httpretry.WithHTTPClient(httpClient),
		httpretry.WithMaxAttempts(cfg.RetryAttempts),
		httpretry.WithDelay(cfg.RetryDelay),
	)
	omdbFetcher := httpretry.New("OMDB",
		httpretry.WithHTTPClient(httpClient),
		httpretry.WithMaxAttempts(cfg.RetryAttempts),
		httpretry.WithDelay(cfg.RetryDelay),
		httpretry.WithLimiter(ratelimit.New("OMDB", cfg.OMDBRateLimit)),
	)

	omdbOpts := []omdb.Option{omdb.WithBaseURL(cfg.OMDBBaseURL)}
	if cfg.CacheDBFile != "" {
		db, err := cache.Open(cfg.CacheDBFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache %s: %w", cfg.CacheDBFile, err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				slog.Warn("Failed to close cache", "error", err)
			}
		}()

		if removed, err := db.ClearExpired(cache.OMDBCacheTable); err != nil {
			slog.Warn("Failed to prune cache", "error", err)
		} else if removed > 0 {
			slog.Debug("Pruned expired cache entries", "count", removed)
		}

		slog.Info("Using OMDB response cache", "path", db.Path(), "ttl", cfg.CacheTTL)
		omdbOpts = append(omdbOpts, omdb.WithCache(db, cfg.CacheTTL))
	}

	pipeline := catalog.NewPipeline(
		trakt.NewClient(traktFetcher, cfg.TraktClientID, trakt.WithBaseURL(cfg.TraktBaseURL)),
		omdb.NewClient(omdbFetcher, cfg.OMDBAPIKey, omdbOpts...),
		fs,
		catalog.OptionsFromConfig(cfg),
	)

	return pipeline.Run(ctx)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func initLogging(levelName, logFile string) error {
	level, err := parseLevel(levelName)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}

	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(out, &humanlog.Options{
		Level: level,
	})

	// Set the default logger
	slog.SetDefault(slog.New(handler))
	return nil
}
