package omdb

import (
	"math"
	"strconv"
	"strings"
)

const notAvailable = "N/A"

// toRecord converts a successful wire response into a Record.
func toRecord(resp *Response) *Record {
	return &Record{
		ImdbID:   strings.TrimSpace(resp.ImdbID),
		Title:    strings.TrimSpace(resp.Title),
		Year:     parseYear(resp.Year),
		Poster:   optionalString(resp.Poster),
		Plot:     optionalString(resp.Plot),
		Language: resp.Language,
		Rating:   parseRating(resp.ImdbRating),
		Found:    resp.Response == "True",
	}
}

// optionalString maps OMDb's empty and "N/A" values to nil
func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" || s == notAvailable {
		return nil
	}
	return &s
}

// parseRating parses an IMDb rating such as "8.5"; anything unparseable is 0
func parseRating(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// parseYear reads the leading year of values like "2019" or "2019–2021".
// A missing or zero year yields nil.
func parseYear(s string) *int {
	s = strings.TrimSpace(s)

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return nil
	}

	year, err := strconv.Atoi(s[:end])
	if err != nil || year == 0 {
		return nil
	}
	return &year
}
