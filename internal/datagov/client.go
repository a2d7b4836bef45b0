// Package datagov implements the client for the data.gov.in Open Government
// Data platform API.
//
// Two endpoints are used:
//   - /resource/{id}: paginated tabular records of a published dataset
//   - /lists: catalog search by title
//
// All requests share one rate limiter and one retry policy so a burst of
// concurrent dataset fetches stays inside the platform's informal limits.
package datagov

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/samarthdata/samarth/internal/log"
)

var (
	// ErrMissingAPIKey indicates the client was built without an API key.
	ErrMissingAPIKey = errors.New("datagov: missing API key")

	// ErrBadStatus indicates a non-retryable, non-200 response.
	ErrBadStatus = errors.New("datagov: unexpected status")

	// ErrResponseTooLarge indicates the response body exceeded the size cap.
	ErrResponseTooLarge = errors.New("datagov: response too large")
)

const (
	// maxResponseBytes caps a single response body. A 1000-row page of a wide
	// dataset stays well under this; anything larger is a platform bug.
	maxResponseBytes = 32 << 20

	defaultPageLimit = 1000
	defaultMaxPages  = 10
	defaultTimeout   = 30 * time.Second
)

// Config holds client construction options.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.data.gov.in".
	BaseURL string

	// APIKey authenticates every request (api-key query parameter).
	APIKey string

	// PageLimit is the per-page record count for resource fetches.
	// Default: 1000 (the platform maximum).
	PageLimit int

	// MaxPages bounds FetchAllRecords pagination. Default: 10.
	MaxPages int

	// Timeout is the per-request timeout. Default: 30s.
	Timeout time.Duration

	// Logger for request diagnostics. Default: discard.
	Logger log.Logger
}

// Client is a data.gov.in API client. Safe for concurrent use.
type Client struct {
	baseURL   string
	apiKey    string
	pageLimit int
	maxPages  int
	http      *http.Client
	limiter   *rate.Limiter
	retry     RetryConfig
	logger    log.Logger
}

// New creates a data.gov.in client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.data.gov.in"
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = defaultPageLimit
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultMaxPages
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		pageLimit: cfg.PageLimit,
		maxPages:  cfg.MaxPages,
		http:      &http.Client{Timeout: cfg.Timeout},
		// 5 req/s with burst 10: gentle on the shared public API while still
		// letting a handful of datasets fetch concurrently.
		limiter: rate.NewLimiter(5, 10),
		retry:   DefaultRetryConfig(),
		logger:  cfg.Logger,
	}, nil
}

// getJSON performs a rate-limited, retried GET and decodes the body into v.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	body, err := c.getRaw(ctx, path, params, "json")
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}

// getRaw performs a rate-limited, retried GET in the requested representation
// and returns the body bytes.
func (c *Client) getRaw(ctx context.Context, path string, params url.Values, format string) ([]byte, error) {
	params.Set("api-key", c.apiKey)
	params.Set("format", format)
	reqURL := c.baseURL + path + "?" + params.Encode()

	return executeWithRetry(ctx, c.retry, c.limiter, c.logger, func(ctx context.Context) ([]byte, error) {
		return c.get(ctx, reqURL)
	})
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little of the body for diagnostics, then classify.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &statusError{code: resp.StatusCode, snippet: string(snippet)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, ErrResponseTooLarge
	}
	return body, nil
}

// statusError carries the HTTP status for retry classification.
type statusError struct {
	code    int
	snippet string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%v: %d %s", ErrBadStatus, e.code, e.snippet)
}

func (e *statusError) Unwrap() error { return ErrBadStatus }
