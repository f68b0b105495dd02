package omdb

// Response is the wire format of an OMDb lookup by IMDb ID
type Response struct {
	Title      string   `json:"Title"`
	Year       string   `json:"Year"`
	Plot       string   `json:"Plot"`
	Language   string   `json:"Language"`
	Country    string   `json:"Country"`
	Poster     string   `json:"Poster"`
	Ratings    []Rating `json:"Ratings,omitempty"`
	ImdbRating string   `json:"imdbRating"`
	ImdbID     string   `json:"imdbID"`
	Type       string   `json:"Type"`
	Response   string   `json:"Response"` // "True" or "False"
	Error      string   `json:"Error,omitempty"`
}

// Rating represents a rating from a specific source
type Rating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// CachedResponse wraps a lookup result so "not found" answers can be cached too
type CachedResponse struct {
	Response *Response `json:"response,omitempty"`
	NotFound bool      `json:"not_found"`
}

// Record is a successful lookup with OMDb's "N/A" sentinels resolved to nil.
type Record struct {
	ImdbID   string
	Title    string
	Year     *int
	Poster   *string
	Plot     *string
	Language string
	// Rating is the IMDb rating; 0 when missing or unparseable
	Rating float64
	// Found mirrors OMDb's Response flag
	Found bool
}
