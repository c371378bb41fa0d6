package canvas

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/coursekit/internal/core/domain"
)

// Canvas-specific errors.
var (
	// ErrConfigInvalidSource indicates an unknown adapter name in configuration.
	ErrConfigInvalidSource = errors.New("canvas: invalid source")

	// ErrNoBaseURL indicates the client has no platform origin.
	ErrNoBaseURL = errors.New("canvas: base url not configured")

	// ErrDecode indicates a payload did not match the expected shape.
	ErrDecode = errors.New("canvas: unexpected payload")
)

// RateLimitError represents an exhausted request quota.
type RateLimitError struct {
	RetryAt   time.Time
	Remaining float64
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("canvas: rate limit exceeded, retry at %s", e.RetryAt.Format(time.RFC3339))
}

// APIError represents a non-success API response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("canvas: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsForbidden checks if the error indicates the caller may not read the resource.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsUnauthorized checks if the error indicates missing or expired credentials.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

func hasStatus(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == code
	}
	return false
}

// retryable reports whether a request may succeed on a later attempt.
func retryable(err error) bool {
	if IsRateLimited(err) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return false
}

// Classify maps an endpoint error onto the issue taxonomy.
func Classify(err error) domain.IssueKind {
	switch {
	case IsForbidden(err), IsUnauthorized(err):
		return domain.IssueAccessDenied
	case IsNotFound(err):
		return domain.IssueNotFound
	case IsRateLimited(err):
		return domain.IssueRateLimited
	case errors.Is(err, ErrDecode):
		return domain.IssueParse
	default:
		return domain.IssueTransient
	}
}

// newIssue records a failed endpoint.
func newIssue(source string, err error) domain.Issue {
	return domain.Issue{Source: source, Kind: Classify(err), Message: err.Error()}
}
