package canvas

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// ProactiveRate is the steady request rate per second.
	ProactiveRate = 5

	// ProactiveBurst allows short bursts above the steady rate.
	ProactiveBurst = 3

	// MinBuffer is the quota below which requests are spaced out.
	MinBuffer = 50.0

	// LowQuotaDelay is the extra pause while the quota is below MinBuffer.
	LowQuotaDelay = time.Second

	// HeaderRateRemaining is the remaining request quota (a float).
	HeaderRateRemaining = "X-Rate-Limit-Remaining"

	// HeaderRequestCost is the cost charged for the response.
	HeaderRequestCost = "X-Request-Cost"

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"

	// fullQuota is assumed until the first response arrives.
	fullQuota = 700.0
)

// RateLimiter combines a token bucket with the quota reported by the API.
type RateLimiter struct {
	mu        sync.Mutex
	remaining float64       // From API header
	lastCost  float64       // From API header
	bucket    *rate.Limiter // Proactive throttling
	minBuffer float64
	lowDelay  time.Duration
}

// NewRateLimiter creates a new rate limiter with proactive throttling.
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithRate(ProactiveRate, ProactiveBurst)
}

// NewRateLimiterWithRate creates a rate limiter with a custom steady rate.
func NewRateLimiterWithRate(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		remaining: fullQuota,
		bucket:    rate.NewLimiter(rate.Limit(perSecond), burst),
		minBuffer: MinBuffer,
		lowDelay:  LowQuotaDelay,
	}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	low := r.remaining < r.minBuffer
	delay := r.lowDelay
	r.mu.Unlock()

	if low {
		return sleep(ctx, delay)
	}
	return nil
}

// UpdateFromResponse updates quota state from response headers.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if v := resp.Header.Get(HeaderRateRemaining); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil {
			r.remaining = val
		}
	}
	if v := resp.Header.Get(HeaderRequestCost); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil {
			r.lastCost = val
		}
	}
}

// CheckRateLimit returns a RateLimitError if the response signals throttling.
func (r *RateLimiter) CheckRateLimit(resp *http.Response) error {
	if resp == nil {
		return nil
	}

	r.UpdateFromResponse(resp)

	r.mu.Lock()
	remaining := r.remaining
	r.mu.Unlock()

	if resp.StatusCode != http.StatusTooManyRequests &&
		(resp.StatusCode != http.StatusForbidden || remaining > 0) {
		return nil
	}

	retryAt := time.Now().Add(r.lowDelay)
	if v := resp.Header.Get(HeaderRetryAfter); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			retryAt = time.Now().Add(time.Duration(seconds) * time.Second)
		}
	}
	return &RateLimitError{RetryAt: retryAt, Remaining: remaining}
}

// Remaining returns the last reported quota.
func (r *RateLimiter) Remaining() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// LastCost returns the cost of the last response.
func (r *RateLimiter) LastCost() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastCost
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
