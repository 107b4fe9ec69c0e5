package zotero

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultBaseURL = "https://api.zotero.org"
	apiVersion     = "3"

	// MaxWriteItems is the per-request item limit of the write endpoint.
	MaxWriteItems = 50

	defaultTimeout     = 30 * time.Second
	maxRetries         = 3
	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2
)

type LibraryType string

const (
	LibraryTypeUser  LibraryType = "user"
	LibraryTypeGroup LibraryType = "group"
)

// Client talks to the Zotero Web API v3 for a single library.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	library    string
	retryDelay time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithRetryDelay sets the initial delay between retried requests.
func WithRetryDelay(delay time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = delay
	}
}

// NewClient creates a client for the given library.
func NewClient(apiKey, libraryID string, libraryType LibraryType, opts ...Option) *Client {
	prefix := "users"
	if libraryType == LibraryTypeGroup {
		prefix = "groups"
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		library:    fmt.Sprintf("/%s/%s", prefix, url.PathEscape(libraryID)),
		retryDelay: initialRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Top fetches top-level items. A call with limit 1 is used as a cheap
// connectivity and credentials check.
func (c *Client) Top(ctx context.Context, limit int) ([]Item, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.getItems(ctx, "/items/top", q)
}

// SearchItems runs a quick search over titles, creators and years.
func (c *Client) SearchItems(ctx context.Context, query string) ([]Item, error) {
	q := url.Values{}
	q.Set("q", query)
	return c.getItems(ctx, "/items", q)
}

// CreateItems creates items in batches of MaxWriteItems and returns one
// combined response indexed by position in items. Entries Zotero rejects are
// reported in WriteResponse.Failed; they are never retried.
func (c *Client) CreateItems(ctx context.Context, items []any) (*WriteResponse, error) {
	combined := newWriteResponse()

	for start := 0; start < len(items); start += MaxWriteItems {
		end := start + MaxWriteItems
		if end > len(items) {
			end = len(items)
		}

		chunk, err := c.postItems(ctx, items[start:end])
		if err != nil {
			if start == 0 {
				return nil, err
			}
			// Earlier chunks are already stored; report the rest as failed.
			for i := start; i < len(items); i++ {
				combined.Failed[strconv.Itoa(i)] = WriteFailure{Code: 0, Message: err.Error()}
			}
			combined.total = len(items)
			return combined, nil
		}
		combined.merge(chunk, start, end-start)
	}

	return combined, nil
}

func (c *Client) getItems(ctx context.Context, path string, query url.Values) ([]Item, error) {
	u := c.baseURL + c.library + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var items []Item
	err := c.withRetry(ctx, func() error {
		body, err := c.do(ctx, http.MethodGet, u, nil, "")
		if err != nil {
			return err
		}
		items = nil
		if err := json.Unmarshal(body, &items); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}, isRetryableRead)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) postItems(ctx context.Context, items []any) (*WriteResponse, error) {
	payload, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode items: %w", err)
	}

	// The same token is sent on every retry so Zotero rejects a duplicate
	// write instead of creating the items twice.
	writeToken := strings.ReplaceAll(uuid.NewString(), "-", "")
	u := c.baseURL + c.library + "/items"

	var resp *WriteResponse
	err = c.withRetry(ctx, func() error {
		body, err := c.do(ctx, http.MethodPost, u, payload, writeToken)
		if err != nil {
			return err
		}
		resp = newWriteResponse()
		if err := json.Unmarshal(body, resp); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}, isRetryableWrite)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) withRetry(ctx context.Context, fn func() error, retryable func(error) bool) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.calculateRetryDelay(attempt, lastErr)
			log.Printf("[ZOTERO] Request failed (%v), retrying in %s (attempt %d/%d)", lastErr, delay, attempt+1, maxRetries)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !retryable(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) do(ctx context.Context, method, u string, body []byte, writeToken string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Zotero-API-Version", apiVersion)
	req.Header.Set("Zotero-API-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if writeToken != "" {
		req.Header.Set("Zotero-Write-Token", writeToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrInvalidAPIKey
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &rateLimitError{retryAfter: parseRetryAfter(resp.Header)}
	case resp.StatusCode == http.StatusPreconditionFailed && writeToken != "":
		return nil, ErrWriteTokenUsed
	case resp.StatusCode >= 500:
		return nil, &ServerError{StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	return respBody, nil
}

// rateLimitError carries the server-requested wait alongside ErrRateLimited.
type rateLimitError struct {
	retryAfter time.Duration
}

func (e *rateLimitError) Error() string { return ErrRateLimited.Error() }
func (e *rateLimitError) Unwrap() error { return ErrRateLimited }

func parseRetryAfter(h http.Header) time.Duration {
	for _, name := range []string{"Retry-After", "Backoff"} {
		if v := h.Get(name); v != "" {
			if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return 0
}

func (c *Client) calculateRetryDelay(attempt int, lastErr error) time.Duration {
	var rl *rateLimitError
	if errors.As(lastErr, &rl) && rl.retryAfter > 0 {
		if rl.retryAfter > maxRetryDelay {
			return maxRetryDelay
		}
		return rl.retryAfter
	}

	delay := c.retryDelay
	for i := 1; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func isRetryableRead(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var serverErr *ServerError
	return errors.As(err, &serverErr)
}

// Writes are only retried when Zotero refused them outright; a 5xx may have
// been applied server-side.
func isRetryableWrite(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
