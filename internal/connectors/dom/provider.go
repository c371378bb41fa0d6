package dom

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
)

// Ensure providers implement the interface.
var (
	_ driven.PageProvider = (*FilePage)(nil)
	_ driven.PageProvider = (*LivePage)(nil)
)

// FilePage serves a saved HTML snapshot.
type FilePage struct {
	path     string
	location string
}

// NewFilePage creates a provider for the snapshot at path. location is
// the URL the page was saved from, used to resolve relative links.
func NewFilePage(path, location string) *FilePage {
	return &FilePage{path: path, location: location}
}

// Location returns the URL the snapshot was saved from.
func (p *FilePage) Location() string {
	return p.location
}

// Path returns the snapshot file path.
func (p *FilePage) Path() string {
	return p.path
}

// HTML reads the snapshot.
func (p *FilePage) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return "", fmt.Errorf("read snapshot: %w", err)
	}
	return string(data), nil
}

// DefaultUserAgent identifies live page fetches.
const DefaultUserAgent = "coursekit/1.0"

// DefaultPageTimeout bounds a live page fetch.
const DefaultPageTimeout = 30 * time.Second

// LivePage fetches a course page over HTTP with the session cookie.
// The first successful fetch is reused by later calls, so the page scan,
// the fallback and the content collector of one run share one request.
type LivePage struct {
	url       string
	cookie    string
	userAgent string
	timeout   time.Duration
	transport http.RoundTripper

	mu      sync.Mutex
	html    string
	fetched bool
}

// LiveOption configures a LivePage.
type LiveOption func(*LivePage)

// WithTransport sets the HTTP transport used for the fetch.
func WithTransport(rt http.RoundTripper) LiveOption {
	return func(p *LivePage) {
		p.transport = rt
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) LiveOption {
	return func(p *LivePage) {
		if ua != "" {
			p.userAgent = ua
		}
	}
}

// NewLivePage creates a provider for pageURL using the platform settings
// for the session cookie.
func NewLivePage(pageURL string, settings domain.CanvasSettings, opts ...LiveOption) *LivePage {
	p := &LivePage{
		url:       pageURL,
		cookie:    settings.Cookie,
		userAgent: DefaultUserAgent,
		timeout:   DefaultPageTimeout,
		transport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Location returns the page URL.
func (p *LivePage) Location() string {
	return p.url
}

// HTML returns the page, fetching it on first use. Non-2xx responses are
// errors and are not cached.
func (p *LivePage) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fetched {
		return p.html, nil
	}

	html, err := p.fetch(ctx)
	if err != nil {
		return "", err
	}
	p.html, p.fetched = html, true
	return html, nil
}

func (p *LivePage) fetch(ctx context.Context) (string, error) {

	c := colly.NewCollector(
		colly.UserAgent(p.userAgent),
		colly.AllowURLRevisit(),
	)
	c.WithTransport(contextTransport{ctx: ctx, base: p.transport})
	c.SetRequestTimeout(p.timeout)

	var body []byte
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml")
		if p.cookie != "" {
			r.Headers.Set("Cookie", p.cookie)
		}
	})
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	if err := c.Visit(p.url); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("fetch page %s: %w", p.url, err)
	}
	return string(body), nil
}

// contextTransport binds every request of a collector to ctx.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}
