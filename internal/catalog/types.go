package catalog

import (
	"context"

	"github.com/lepinkainen/toplista/internal/omdb"
	"github.com/lepinkainen/toplista/internal/trakt"
)

// ItemType is the only item type the catalog produces
const ItemType = "movie"

// CatalogSource supplies the ordered list of candidate titles.
type CatalogSource interface {
	Popular(ctx context.Context, limit int) []trakt.Entry
}

// MetadataSource resolves per-title metadata, reporting false for "not found".
type MetadataSource interface {
	Lookup(ctx context.Context, imdbID string) (*omdb.Record, bool)
}

// Item is an accepted title. Rating is the sort key and is not serialized.
type Item struct {
	ID          string
	Name        string
	Year        *int
	Poster      string
	Description string
	Rating      float64
}

// Meta is a single entry in the output file
type Meta struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Year        *int   `json:"year,omitempty"`
	Poster      string `json:"poster"`
	Description string `json:"description"`
}

// Catalog is the serialized output document
type Catalog struct {
	Metas []Meta `json:"metas"`
}

// Result summarizes a pipeline run.
type Result struct {
	CatalogSize int
	MissingID   int
	Duplicates  int
	NotFound    int
	Filtered    int
	Accepted    int
	Written     int
	OutputPath  string
}

// Skipped returns the number of catalog entries that did not produce an item.
func (r *Result) Skipped() int {
	return r.MissingID + r.Duplicates + r.NotFound + r.Filtered
}

// ToMeta converts an item into its serialized form.
func (i Item) ToMeta() Meta {
	return Meta{
		ID:          i.ID,
		Type:        ItemType,
		Name:        i.Name,
		Year:        i.Year,
		Poster:      i.Poster,
		Description: i.Description,
	}
}
