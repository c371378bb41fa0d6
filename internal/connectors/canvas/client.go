package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/coursekit/internal/classifier"
	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is the maximum number of retries for transient errors.
	MaxRetries = 3

	// RetryDelay is the initial delay between retries.
	RetryDelay = time.Second

	// AcceptHeader asks for ids encoded as strings.
	AcceptHeader = "application/json+canvas-string-ids"

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 64 << 10
)

// Client performs authenticated requests against the Canvas REST API.
//
// Successful GET responses are kept for the lifetime of the client and
// concurrent requests for the same URL share one round trip, so the
// adapters and the collector of one run read each listing once. Build a
// new client per run.
type Client struct {
	base        *url.URL
	http        *http.Client
	cookie      string
	rateLimiter *RateLimiter
	nestedDelay time.Duration
	retryDelay  time.Duration

	inflight  singleflight.Group
	mu        sync.RWMutex
	responses map[string]response
}

// response is a cached GET body with its Link header.
type response struct {
	body []byte
	link string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. The bearer token is not applied.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRateLimiter replaces the default rate limiter.
func WithRateLimiter(r *RateLimiter) Option {
	return func(c *Client) { c.rateLimiter = r }
}

// WithRetryDelay sets the initial backoff between retries.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

// NewClient creates a client for the platform described by settings.
func NewClient(ctx context.Context, settings domain.CanvasSettings, opts ...Option) (*Client, error) {
	if settings.BaseURL == "" {
		return nil, ErrNoBaseURL
	}
	base, err := url.Parse(strings.TrimRight(settings.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidInput, settings.BaseURL)
	}

	c := &Client{
		base:        base,
		cookie:      settings.Cookie,
		rateLimiter: NewRateLimiter(),
		nestedDelay: settings.NestedDelay,
		retryDelay:  RetryDelay,
		responses:   make(map[string]response),
	}

	if settings.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: settings.Token})
		c.http = oauth2.NewClient(ctx, ts)
		c.http.Timeout = DefaultTimeout
	} else {
		c.http = &http.Client{Timeout: DefaultTimeout}
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the platform origin.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// Pause waits the nested delay between per-item detail fetches.
func (c *Client) Pause(ctx context.Context) error {
	return sleep(ctx, c.nestedDelay)
}

// Get fetches a single JSON object into out.
func (c *Client) Get(ctx context.Context, ref string, out any) error {
	body, _, err := c.fetch(ctx, ref)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, ref, err)
	}
	return nil
}

// GetAll fetches every page of a JSON array, following Link rel="next".
// Items from pages fetched before a failure are returned with the error.
func GetAll[T any](ctx context.Context, c *Client, ref string) ([]T, error) {
	var all []T
	next := ref
	for next != "" {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		body, link, err := c.fetch(ctx, next)
		if err != nil {
			return all, err
		}

		var page []T
		if err := json.Unmarshal(body, &page); err != nil {
			return all, fmt.Errorf("%w: %s: %v", ErrDecode, next, err)
		}
		all = append(all, page...)
		next = ParseNextLink(link)
	}
	return all, nil
}

// ValidateCredentials checks the credentials by reading the current user.
func (c *Client) ValidateCredentials(ctx context.Context) error {
	var self struct {
		ID FlexString `json:"id"`
	}
	if err := c.Get(ctx, "/api/v1/users/self", &self); err != nil {
		return fmt.Errorf("validate credentials: %w", err)
	}
	return nil
}

// fetch returns the body and Link header of ref, from the response cache
// when an earlier request for the same URL succeeded.
func (c *Client) fetch(ctx context.Context, ref string) ([]byte, string, error) {
	target := classifier.ResolveURL(ref, c.base.String())

	c.mu.RLock()
	r, ok := c.responses[target]
	c.mu.RUnlock()
	if ok {
		return r.body, r.link, nil
	}

	v, err, _ := c.inflight.Do(target, func() (any, error) {
		body, link, err := c.fetchWithRetry(ctx, target)
		if err != nil {
			return nil, err
		}
		r := response{body: body, link: link}
		c.mu.Lock()
		c.responses[target] = r
		c.mu.Unlock()
		return r, nil
	})
	if err != nil {
		return nil, "", err
	}
	r = v.(response)
	return r.body, r.link, nil
}

// fetchWithRetry performs a GET with retries.
func (c *Client) fetchWithRetry(ctx context.Context, target string) ([]byte, string, error) {
	delay := c.retryDelay
	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			logger.Debug("canvas: retry %d for %s after %v", attempt, target, lastErr)
			if err := sleep(ctx, retryWait(lastErr, delay)); err != nil {
				return nil, "", err
			}
			delay *= 2
		}

		body, link, err := c.once(ctx, target)
		if err == nil {
			return body, link, nil
		}
		if !retryable(err) {
			return nil, "", err
		}
		lastErr = err
	}
	return nil, "", lastErr
}

func (c *Client) once(ctx context.Context, target string) ([]byte, string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", AcceptHeader)
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	logger.Debug("canvas: GET %s", target)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("get %s: %w", target, err)
	}
	defer resp.Body.Close()

	if err := c.rateLimiter.CheckRateLimit(resp); err != nil {
		return nil, "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, body),
			URL:        target,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", target, err)
	}
	return body, resp.Header.Get("Link"), nil
}

// Open starts a credentialed download of a file URL. The caller closes
// the body. The returned string is the response Content-Type.
func (c *Client) Open(ctx context.Context, rawURL string) (io.ReadCloser, string, error) {
	target := classifier.ResolveURL(rawURL, c.base.String())
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	logger.Debug("canvas: download %s", target)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("get %s: %w", target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, body),
			URL:        target,
		}
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// retryWait prefers the server's retry hint over the backoff delay.
func retryWait(err error, backoff time.Duration) time.Duration {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		if d := time.Until(rl.RetryAt); d > 0 && d < backoff*4 {
			return d
		}
	}
	return backoff
}

// errorMessage extracts a readable message from an error payload.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Errors  []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if len(payload.Errors) > 0 && payload.Errors[0].Message != "" {
			return payload.Errors[0].Message
		}
	}
	return http.StatusText(status)
}
