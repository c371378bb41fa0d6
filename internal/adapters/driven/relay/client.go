// Package relay provides a record sink that posts text records to the
// relay backend over HTTP.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.RecordSink = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL = domain.DefaultRelayURL
	DefaultTimeout = 60 * time.Second

	maxErrorBody = 64 << 10
)

// Relay endpoints.
const (
	PathIngest      = "/ingest"
	PathIngestBatch = "/ingest-batch"
	PathPing        = "/ping-snowflake"
	PathContent     = "/content"
)

// Config holds configuration for the relay client.
type Config struct {
	// BaseURL is the relay origin (default: http://localhost:3000).
	BaseURL string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// HTTPClient replaces the default client when set.
	HTTPClient *http.Client
}

// Error is a failure reported by the relay.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("relay error (status %d): %s", e.StatusCode, e.Message)
}

// Client talks to the relay backend.
type Client struct {
	client  *http.Client
	baseURL string
}

// envelope is the common response shape of the relay.
type envelope struct {
	OK      bool                  `json:"ok"`
	ID      string                `json:"id"`
	Error   string                `json:"error"`
	Details string                `json:"details"`
	Status  string                `json:"status"`
	Results []domain.IngestStatus `json:"results"`
	Files   []map[string]any      `json:"files"`
}

// batchRequest is the /ingest-batch request body.
type batchRequest struct {
	Files []domain.UploadRecord `json:"files"`
}

// NewClient creates a relay client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	c := cfg.HTTPClient
	if c == nil {
		c = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		client:  c,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// BaseURL returns the relay origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ingest posts one record and returns the id assigned by the relay.
func (c *Client) Ingest(ctx context.Context, rec domain.UploadRecord) (string, error) {
	env, err := c.do(ctx, http.MethodPost, PathIngest, rec)
	if err != nil {
		return "", err
	}
	return env.ID, nil
}

// IngestBatch posts records as one batch. The relay reports each outcome.
func (c *Client) IngestBatch(ctx context.Context, recs []domain.UploadRecord) ([]domain.IngestStatus, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	env, err := c.do(ctx, http.MethodPost, PathIngestBatch, batchRequest{Files: recs})
	if err != nil {
		return nil, err
	}
	return env.Results, nil
}

// Content lists the records the relay holds for a student and course.
// Row fields are matched case-insensitively.
func (c *Client) Content(ctx context.Context, studentID, courseID string) ([]domain.UploadRecord, error) {
	path := PathContent + "/" + url.PathEscape(studentID) + "/" + url.PathEscape(courseID)
	env, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.UploadRecord, 0, len(env.Files))
	for _, row := range env.Files {
		rec := decodeRow(row)
		if rec.StudentID == "" {
			rec.StudentID = studentID
		}
		if rec.CourseID == "" {
			rec.CourseID = courseID
		}
		out = append(out, rec)
	}
	return out, nil
}

// Ping checks that the relay and its warehouse connection are up.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, PathPing, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrRelayUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 256<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(data, &env)

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(data[:min(len(data), maxErrorBody)]))
		if decodeErr == nil && env.Error != "" {
			msg = env.Error
			if env.Details != "" {
				msg += ": " + env.Details
			}
		}
		return nil, &Error{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if !env.OK && env.Error != "" {
		return nil, &Error{StatusCode: resp.StatusCode, Message: env.Error}
	}
	return &env, nil
}

// IsRelayError reports whether err came back from the relay itself.
func IsRelayError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
