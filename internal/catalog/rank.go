package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/lepinkainen/toplista/internal/omdb"
	"golang.org/x/text/cases"
)

// MatchesLanguage reports whether the free-text language field mentions
// language, ignoring case.
func MatchesLanguage(field, language string) bool {
	if language == "" {
		return true
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(field), fold.String(language))
}

// Accept applies the language and rating filter to a metadata record.
func Accept(rec *omdb.Record, language string) bool {
	if rec == nil {
		return false
	}
	return rec.Rating > 0 && MatchesLanguage(rec.Language, language)
}

// FormatRating renders a rating the way it is shown in descriptions: "8.5", "8".
func FormatRating(rating float64) string {
	return strconv.FormatFloat(rating, 'f', -1, 64)
}

// BuildItem converts an accepted record into a catalog item.
// An absent poster falls back to defaultPoster and an absent plot to fallback.
func BuildItem(rec *omdb.Record, defaultPoster, fallback string) Item {
	poster := defaultPoster
	if rec.Poster != nil {
		poster = *rec.Poster
	}

	plot := fallback
	if rec.Plot != nil {
		plot = *rec.Plot
	}

	return Item{
		ID:          rec.ImdbID,
		Name:        rec.Title,
		Year:        rec.Year,
		Poster:      poster,
		Description: strings.TrimSpace(plot + " ⭐ IMDb " + FormatRating(rec.Rating)),
		Rating:      rec.Rating,
	}
}

// Rank sorts items by rating, highest first, keeping encounter order for
// ties, and truncates the result to maxItems. maxItems <= 0 means no limit.
func Rank(items []Item, maxItems int) []Item {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Rating > items[j].Rating
	})

	if maxItems > 0 && len(items) > maxItems {
		items = items[:maxItems]
	}
	return items
}
