// Package download saves discovered course files to disk in throttled
// batches and extracts text from the ones a normaliser understands.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/coursekit/internal/classifier"
	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
	"github.com/custodia-labs/coursekit/internal/logger"
)

const (
	// DefaultRoot is the directory downloads are saved under.
	DefaultRoot = "canvas_downloads"

	// DefaultMaxBytes caps the size of a single download.
	DefaultMaxBytes = 200 << 20
)

// ErrTooLarge is returned when a file exceeds the size cap.
var ErrTooLarge = errors.New("file exceeds download size limit")

// Fetcher opens a credentialed stream for a file URL.
type Fetcher interface {
	Open(ctx context.Context, url string) (io.ReadCloser, string, error)
}

// Result is the outcome of one download.
type Result struct {
	// Item is the input item with DownloadPath set on success.
	Item domain.ContentItem

	// Record is the extracted text, nil when the type has no normaliser.
	Record *domain.TextRecord

	Err error
}

// Downloader saves items in windows of concurrent downloads with a pause
// between windows.
type Downloader struct {
	fetcher  Fetcher
	registry driven.NormaliserRegistry
	root     string
	window   int
	delay    time.Duration
	maxBytes int64
	progress func(done, total int)
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithRoot sets the download directory.
func WithRoot(dir string) Option {
	return func(d *Downloader) { d.root = dir }
}

// WithNormalisers enables text extraction from saved files.
func WithNormalisers(r driven.NormaliserRegistry) Option {
	return func(d *Downloader) { d.registry = r }
}

// WithMaxBytes sets the per-file size cap.
func WithMaxBytes(n int64) Option {
	return func(d *Downloader) { d.maxBytes = n }
}

// WithProgress registers a callback invoked after each finished download.
func WithProgress(fn func(done, total int)) Option {
	return func(d *Downloader) { d.progress = fn }
}

// New creates a downloader. A non-positive window or a negative delay falls
// back to the default; a zero delay disables the pause between windows.
func New(f Fetcher, settings domain.DownloadSettings, opts ...Option) *Downloader {
	d := &Downloader{
		fetcher:  f,
		root:     DefaultRoot,
		window:   settings.Window,
		delay:    settings.Delay,
		maxBytes: DefaultMaxBytes,
	}
	if d.window <= 0 {
		d.window = domain.DefaultDownloadWindow
	}
	if d.delay < 0 {
		d.delay = domain.DefaultDownloadDelay
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download saves items and returns one result per item in input order.
// Items that would land on the same path get a " (n)" suffix, numbered in
// input order. Per-item failures are reported in the results. The error is
// non-nil only when ctx is cancelled, in which case unfinished items are
// absent.
func (d *Downloader) Download(ctx context.Context, items []domain.ContentItem) ([]Result, error) {
	results := make([]Result, len(items))
	paths := d.paths(items)
	var done atomic.Int32

	for start := 0; start < len(items); start += d.window {
		if start > 0 {
			if err := sleep(ctx, d.delay); err != nil {
				return results[:start], err
			}
		}
		end := min(start+d.window, len(items))

		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				results[i] = d.one(ctx, items[i], paths[i])
				if d.progress != nil {
					d.progress(int(done.Add(1)), len(items))
				}
				return nil
			})
		}
		_ = g.Wait()

		if err := ctx.Err(); err != nil {
			return results[:end], err
		}
	}
	return results, nil
}

func (d *Downloader) one(ctx context.Context, item domain.ContentItem, path string) Result {
	res := Result{Item: item}

	body, contentType, err := d.fetcher.Open(ctx, item.URL)
	if err != nil {
		res.Err = fmt.Errorf("download %s: %w", item.Name, err)
		logger.Warn("download: %v", res.Err)
		return res
	}
	defer body.Close()

	data, err := save(path, body, d.maxBytes)
	if err != nil {
		res.Err = fmt.Errorf("save %s: %w", item.Name, err)
		logger.Warn("download: %v", res.Err)
		return res
	}
	res.Item.DownloadPath = path
	logger.Debug("download: saved %s (%d bytes)", path, len(data))

	if d.registry == nil {
		return res
	}
	mimeType := mimeFor(item, contentType)
	rec, err := d.registry.Normalise(ctx, res.Item, mimeType, data)
	switch {
	case errors.Is(err, domain.ErrUnsupportedType):
	case err != nil:
		logger.Warn("download: extract text from %s: %v", item.Name, err)
	case rec != nil && strings.TrimSpace(rec.RawText) != "":
		res.Record = rec
	}
	return res
}

// PathFor returns where an item is saved:
// <root>/<course>/<folder path>/<file name>.
func (d *Downloader) PathFor(item domain.ContentItem) string {
	course := item.CourseName
	if strings.TrimSpace(course) == "" {
		course = item.CourseID
	}
	return filepath.Join(
		d.root,
		classifier.Sanitize(course, classifier.KindPathComponent),
		filepath.FromSlash(classifier.SanitizeFolderPath(item.FolderPath)),
		classifier.Sanitize(item.Name, classifier.KindFilename),
	)
}

// paths assigns every item its save path. Paths are compared case-insensitively
// so distinct items never share a file on case-folding filesystems.
func (d *Downloader) paths(items []domain.ContentItem) []string {
	taken := make(map[string]bool, len(items))
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = uniquePath(d.PathFor(item), taken)
	}
	return out
}

// uniquePath returns path, or path with " (n)" before its extension when
// path is already taken, and marks the result as taken.
func uniquePath(path string, taken map[string]bool) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)

	candidate := path
	for n := 1; taken[strings.ToLower(candidate)]; n++ {
		candidate = fmt.Sprintf("%s (%d)%s", stem, n, ext)
	}
	taken[strings.ToLower(candidate)] = true
	return candidate
}

// Records collects the extracted text records of results.
func Records(results []Result) []domain.TextRecord {
	var out []domain.TextRecord
	for _, r := range results {
		if r.Record != nil {
			out = append(out, *r.Record)
		}
	}
	return out
}

// save writes r to path through a temporary file and returns the bytes.
func save(path string, r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".partial-*")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, err
	}
	return data, nil
}

// extensionMIME covers the types the bundled normalisers handle.
var extensionMIME = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".py":   "text/x-python",
	".html": "text/html",
	".htm":  "text/html",
}

// mimeFor prefers a specific response type, then the listing type, then
// the file extension.
func mimeFor(item domain.ContentItem, contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct != "" && ct != "application/octet-stream" && ct != "binary/octet-stream" {
		return ct
	}
	if item.MIMEType != "" {
		return item.MIMEType
	}
	if m, ok := extensionMIME[strings.ToLower(filepath.Ext(item.Name))]; ok {
		return m
	}
	return item.ContentType.MIME()
}

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
