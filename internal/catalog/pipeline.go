// Package catalog runs the fetch, enrich, filter, rank and write pipeline
// that produces the Spanish-language movie catalog.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lepinkainen/toplista/internal/config"
	"github.com/lepinkainen/toplista/internal/errors"
	"github.com/lepinkainen/toplista/internal/fileutil"
	"github.com/lepinkainen/toplista/internal/ratelimit"
	"github.com/spf13/afero"
)

// Options are the policy values for a pipeline run.
type Options struct {
	CatalogLimit        int
	MaxItems            int
	Language            string
	Pause               time.Duration
	OutputPath          string
	DefaultPoster       string
	DescriptionFallback string
}

// OptionsFromConfig extracts pipeline options from a loaded configuration.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		CatalogLimit:        cfg.CatalogLimit,
		MaxItems:            cfg.MaxItems,
		Language:            cfg.Language,
		Pause:               cfg.Pause,
		OutputPath:          cfg.OutputPath,
		DefaultPoster:       cfg.DefaultPoster,
		DescriptionFallback: cfg.DescriptionFallback,
	}
}

// Pipeline owns a single sequential run. It is not safe for concurrent use.
type Pipeline struct {
	source   CatalogSource
	metadata MetadataSource
	fs       afero.Fs
	opts     Options

	pause func(ctx context.Context, d time.Duration) error
}

// NewPipeline creates a pipeline. Zero-valued options other than Pause and
// DescriptionFallback take their configured defaults.
func NewPipeline(source CatalogSource, metadata MetadataSource, fs afero.Fs, opts Options) *Pipeline {
	if opts.CatalogLimit <= 0 {
		opts.CatalogLimit = config.DefaultCatalogLimit
	}
	if opts.MaxItems <= 0 {
		opts.MaxItems = config.DefaultMaxItems
	}
	if strings.TrimSpace(opts.Language) == "" {
		opts.Language = config.DefaultLanguage
	}
	if opts.OutputPath == "" {
		opts.OutputPath = config.DefaultOutputPath
	}
	if opts.DefaultPoster == "" {
		opts.DefaultPoster = config.DefaultPoster
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}

	return &Pipeline{
		source:   source,
		metadata: metadata,
		fs:       fs,
		opts:     opts,
		pause:    ratelimit.Pause,
	}
}

// Run executes the pipeline and writes the output file. Per-item problems are
// skipped; only cancellation and output failures are returned as errors.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	result := &Result{OutputPath: p.opts.OutputPath}

	entries := p.source.Popular(ctx, p.opts.CatalogLimit)
	result.CatalogSize = len(entries)
	slog.Info("Processing catalog", "entries", len(entries), "language", p.opts.Language)

	seen := make(map[string]struct{}, len(entries))
	items := make([]Item, 0)

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, errors.NewStopProcessingError("run interrupted", err)
		}

		id := entry.IMDBID()
		if id == "" {
			result.MissingID++
			slog.Debug("Skipping entry without IMDb ID", "index", i, "title", entry.Title)
			continue
		}
		if _, dup := seen[id]; dup {
			result.Duplicates++
			slog.Debug("Skipping duplicate entry", "imdb_id", id)
			continue
		}
		seen[id] = struct{}{}

		if item, ok := p.process(ctx, id, result); ok {
			items = append(items, item)
		}

		// paces metadata lookups; entries skipped above made no request
		if err := p.pause(ctx, p.opts.Pause); err != nil {
			return result, errors.NewStopProcessingError("run interrupted", err)
		}
	}

	result.Accepted = len(items)
	items = Rank(items, p.opts.MaxItems)

	out := Catalog{Metas: make([]Meta, 0, len(items))}
	for _, item := range items {
		out.Metas = append(out.Metas, item.ToMeta())
	}

	if _, err := fileutil.WriteJSONFile(p.fs, out, p.opts.OutputPath, true); err != nil {
		return result, fmt.Errorf("failed to write catalog %s: %w", p.opts.OutputPath, err)
	}
	result.Written = len(out.Metas)

	slog.Info("Catalog generated",
		"path", p.opts.OutputPath,
		"written", result.Written,
		"accepted", result.Accepted,
		"catalog", result.CatalogSize,
		"skipped", result.Skipped(),
	)

	return result, nil
}

// process looks up one title and decides whether it belongs in the catalog.
func (p *Pipeline) process(ctx context.Context, id string, result *Result) (Item, bool) {
	rec, ok := p.metadata.Lookup(ctx, id)
	if !ok || rec == nil {
		result.NotFound++
		slog.Debug("No metadata, skipping", "imdb_id", id)
		return Item{}, false
	}
	if rec.ImdbID == "" {
		rec.ImdbID = id
	}

	if !Accept(rec, p.opts.Language) {
		result.Filtered++
		slog.Debug("Filtered out", "imdb_id", id, "title", rec.Title, "language", rec.Language, "rating", rec.Rating)
		return Item{}, false
	}

	item := BuildItem(rec, p.opts.DefaultPoster, p.opts.DescriptionFallback)
	slog.Info("Accepted movie", "imdb_id", item.ID, "title", item.Name, "rating", item.Rating)
	return item, true
}
