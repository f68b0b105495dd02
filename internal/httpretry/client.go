// Package httpretry fetches JSON documents with bounded, fixed-delay retries.
//
// Failures never escape as errors: after the last attempt the caller gets a
// "no result" signal and decides how to degrade.
package httpretry

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/lepinkainen/toplista/internal/errors"
	"github.com/lepinkainen/toplista/internal/ratelimit"
)

const (
	defaultMaxAttempts = 3
	defaultDelay       = time.Second
	defaultTimeout     = 30 * time.Second
	maxBodyBytes       = 10 << 20
	errorBodyBytes     = 4 << 10
	errorLogBytes      = 512
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client performs GET requests that expect a JSON body.
type Client struct {
	name        string
	httpClient  HTTPDoer
	maxAttempts int
	delay       time.Duration
	limiter     *ratelimit.Limiter
	timer       retry.Timer
}

// StatusCheck inspects the status and (truncated) body of a non-2xx response.
// Returning an error stops further attempts for the request.
type StatusCheck func(status int, body []byte) error

// RequestOption customizes a single FetchJSON call.
type RequestOption func(*request)

type request struct {
	statusCheck StatusCheck
}

// WithStatusCheck lets the caller classify non-2xx responses, e.g. to stop
// retrying when the upstream reports an exhausted quota.
func WithStatusCheck(check StatusCheck) RequestOption {
	return func(r *request) {
		r.statusCheck = check
	}
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithMaxAttempts sets the total number of attempts, including the first one.
// Values below 1 are clamped to 1.
func WithMaxAttempts(n int) Option {
	return func(client *Client) {
		client.maxAttempts = max(n, 1)
	}
}

// WithDelay sets the fixed pause between attempts. Negative values are clamped to 0.
func WithDelay(d time.Duration) Option {
	return func(client *Client) {
		client.delay = max(d, 0)
	}
}

// WithLimiter makes every attempt wait on l first.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(client *Client) {
		client.limiter = l
	}
}

// New creates a Client; name identifies the upstream in log output.
func New(name string, opts ...Option) *Client {
	client := &Client{
		name:        name,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		maxAttempts: defaultMaxAttempts,
		delay:       defaultDelay,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// FetchJSON GETs rawURL with the given headers and returns the raw JSON body.
// An attempt succeeds on a 2xx status with a well-formed JSON body. Failed
// attempts are retried after the fixed delay; once all attempts are used up,
// a status check rejects the response or ctx is done it returns (nil, false).
func (c *Client) FetchJSON(ctx context.Context, rawURL string, header http.Header, reqOpts ...RequestOption) (json.RawMessage, bool) {
	endpoint := redactURL(rawURL)

	var r request
	for _, opt := range reqOpts {
		opt(&r)
	}

	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(uint(c.maxAttempts)),
		retry.Delay(c.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			attrs := []any{
				"client", c.name,
				"endpoint", endpoint,
				"attempt", n + 1,
				"max_attempts", c.maxAttempts,
				"error", err,
			}
			// the delay stays fixed; Retry-After is only reported
			var rateErr *errors.RateLimitError
			if stdErrors.As(err, &rateErr) && rateErr.RetryAfter > 0 {
				attrs = append(attrs, "retry_after", rateErr.RetryAfter)
			}
			slog.Warn("Request attempt failed", attrs...)
		}),
	}
	if c.timer != nil {
		opts = append(opts, retry.WithTimer(c.timer))
	}

	body, err := retry.DoWithData(func() (json.RawMessage, error) {
		return c.attempt(ctx, rawURL, header, r.statusCheck)
	}, opts...)
	if err != nil {
		if ctx.Err() != nil {
			slog.Debug("Request abandoned", "client", c.name, "endpoint", endpoint, "error", ctx.Err())
			return nil, false
		}
		slog.Warn("Giving up on request",
			"client", c.name,
			"endpoint", endpoint,
			"attempts", c.maxAttempts,
			"error", err)
		return nil, false
	}

	return body, true
}

func (c *Client) attempt(ctx context.Context, rawURL string, header http.Header, check StatusCheck) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, retry.Unrecoverable(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyBytes))
		if check != nil {
			if err := check(resp.StatusCode, snippet); err != nil {
				return nil, retry.Unrecoverable(err)
			}
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, errors.NewRateLimitErrorWithRetry(
				fmt.Sprintf("%s API rate limit hit", c.name),
				parseRetryAfter(resp.Header.Get("Retry-After")))
		}
		return nil, errors.NewStatusError(resp.StatusCode, strings.TrimSpace(string(snippet[:min(len(snippet), errorLogBytes)])))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("response body is not valid JSON (%d bytes)", len(data))
	}

	return json.RawMessage(data), nil
}

// parseRetryAfter handles the delta-seconds form of Retry-After.
func parseRetryAfter(value string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// redactURL drops the query string so API keys never reach the logs.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url"
	}
	u.RawQuery = ""
	u.User = nil
	return u.String()
}
