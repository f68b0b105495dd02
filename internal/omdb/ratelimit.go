package omdb

import (
	"encoding/json"
	"log/slog"

	"github.com/lepinkainen/toplista/internal/errors"
)

// markRateLimitReached marks the OMDb daily quota as exhausted.
// It logs a warning on the first call and subsequent calls are no-ops.
func (c *Client) markRateLimitReached() {
	if c.limitReached.CompareAndSwap(false, true) {
		slog.Warn("OMDB API rate limit reached; skipping further OMDB requests for this run")
	}
}

// RequestsAllowed returns true if OMDb requests are still allowed.
func (c *Client) RequestsAllowed() bool {
	return !c.limitReached.Load()
}

// isRequestLimit reports whether OMDb answered with its daily quota message.
func isRequestLimit(resp *Response) bool {
	return resp != nil && resp.Error == requestLimitMsg
}

// checkStatus classifies non-2xx OMDb responses. OMDb reports an exhausted
// quota as HTTP 401 with a JSON error body; that stops the retries and
// disables further lookups for this client.
func (c *Client) checkStatus(status int, body []byte) error {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil
	}
	if isRequestLimit(&resp) {
		c.markRateLimitReached()
		return errors.NewRateLimitError("OMDB API request limit reached")
	}
	if resp.Error != "" {
		slog.Warn("OMDB API error", "status", status, "error", resp.Error)
	}
	return nil
}
