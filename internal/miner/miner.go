// Package miner recovers file references from HTML fragments.
//
// Mine runs the shared selector table over the parsed tree, then sweeps
// <img> elements, then runs a regex over the raw markup for absolute PDF
// URLs that only appear inside scripts or JSON blobs. Parsing is lenient:
// malformed markup never fails, it only yields fewer items.
package miner

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/coursekit/internal/classifier"
	"github.com/custodia-labs/coursekit/internal/core/domain"
)

var (
	// pdfPattern matches absolute .pdf URLs with optional trailing path or query.
	pdfPattern = regexp.MustCompile(`(?i)https?://[^\s<>"'()]+\.pdf[^\s<>"']*`)

	// canvasFilePattern matches platform file URLs such as /courses/1/files/2.
	canvasFilePattern = regexp.MustCompile(`(?i)https?://[^/\s<>"']+/(?:courses/\d+/)?files/\d+[^\s<>"']*`)
)

// Options sets the provenance of mined items.
type Options struct {
	// BaseURL resolves relative references.
	BaseURL string

	// Context labels where the fragment came from, e.g. "page_Week 1".
	Context string

	// Source overrides the provenance of anchor and embed matches.
	// Images keep html_image and regex hits keep pdf_text_pattern.
	Source domain.Source
}

// Mine returns the file references found in fragment, deduplicated by URL.
func Mine(fragment string, opts Options) []domain.ContentItem {
	if strings.TrimSpace(fragment) == "" {
		return nil
	}

	m := newCollector(opts)

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment)); err == nil {
		m.scanSelectors(doc)
		m.scanImages(doc)
	}
	m.scanPDFText(fragment, domain.SourcePDFTextPattern)

	return m.items
}

// MinePDFURLs runs only the PDF regex sweep. Hits carry opts.Source,
// pdf_text_pattern when unset.
func MinePDFURLs(fragment string, opts Options) []domain.ContentItem {
	source := opts.Source
	if source == "" {
		source = domain.SourcePDFTextPattern
	}
	m := newCollector(opts)
	m.scanPDFText(fragment, source)
	return m.items
}

// MineCanvasFileURLs returns platform file URLs referenced anywhere in the markup.
func MineCanvasFileURLs(fragment string, opts Options) []domain.ContentItem {
	m := newCollector(opts)
	for _, raw := range canvasFilePattern.FindAllString(fragment, -1) {
		u := html.UnescapeString(raw)
		m.add(domain.ContentItem{
			URL:         u,
			Name:        classifier.Sanitize(classifier.ExtractFilenameFromURL(u), classifier.KindFilename),
			ContentType: classifier.ContentTypeOf(u),
			Source:      domain.SourceCanvasFileEmbedded,
			PageTitle:   opts.Context,
			ElementType: "text_pattern",
		})
	}
	return m.items
}

type collector struct {
	opts  Options
	seen  map[string]struct{}
	items []domain.ContentItem
}

func newCollector(opts Options) *collector {
	return &collector{opts: opts, seen: make(map[string]struct{})}
}

// add keeps the first item per URL.
func (m *collector) add(item domain.ContentItem) {
	if item.URL == "" {
		return
	}
	if _, ok := m.seen[item.URL]; ok {
		return
	}
	m.seen[item.URL] = struct{}{}
	m.items = append(m.items, item)
}

func (m *collector) scanSelectors(doc *goquery.Document) {
	for _, sel := range classifier.Selectors(classifier.MinerGroups()...) {
		doc.Find(sel.Query).Each(func(_ int, s *goquery.Selection) {
			raw, ok := s.Attr(sel.Attr)
			if !ok || !UsableHref(raw) {
				return
			}
			u := classifier.ResolveURL(raw, m.opts.BaseURL)
			if sel.RequireFile && !classifier.IsDownloadableFile(u) {
				return
			}

			source := m.opts.Source
			if source == "" {
				source = domain.SourceHTMLContent
				if strings.Contains(strings.ToLower(u), ".pdf") {
					source = domain.SourcePDFEmbedded
				}
			}

			m.add(domain.ContentItem{
				URL:         u,
				Name:        AnchorName(s, u),
				ContentType: classifier.ContentTypeOf(u),
				Source:      source,
				PageTitle:   m.opts.Context,
				ElementType: sel.ElementType,
			})
		})
	}
}

func (m *collector) scanImages(doc *goquery.Document) {
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		raw, _ := s.Attr("src")
		if !UsableHref(raw) || strings.HasPrefix(raw, "data:") {
			return
		}
		u := classifier.ResolveURL(raw, m.opts.BaseURL)
		if !classifier.IsDownloadableFile(u) {
			return
		}

		name := firstNonEmpty(attr(s, "alt"), attr(s, "title"), classifier.ExtractFilenameFromURL(u))
		m.add(domain.ContentItem{
			URL:         u,
			Name:        classifier.Sanitize(name, classifier.KindFilename),
			ContentType: domain.ContentImage,
			Source:      domain.SourceHTMLImage,
			PageTitle:   m.opts.Context,
			ElementType: "img",
		})
	})
}

func (m *collector) scanPDFText(fragment string, source domain.Source) {
	for _, raw := range pdfPattern.FindAllString(fragment, -1) {
		u := html.UnescapeString(raw)
		m.add(domain.ContentItem{
			URL:         u,
			Name:        classifier.Sanitize(classifier.ExtractFilenameFromURL(u), classifier.KindFilename),
			ContentType: domain.ContentPDF,
			Source:      source,
			PageTitle:   m.opts.Context,
			ElementType: "text_pattern",
		})
	}
}

// AnchorName picks a display name for a link: download attribute, then
// visible text, then title, then the filename in the URL.
func AnchorName(s *goquery.Selection, u string) string {
	name := firstNonEmpty(
		attr(s, "download"),
		collapse(s.Text()),
		attr(s, "title"),
		classifier.ExtractFilenameFromURL(u),
	)
	return classifier.Sanitize(name, classifier.KindFilename)
}

// UsableHref reports whether raw can point at a resource: not empty,
// not a fragment, not a script or mail link.
func UsableHref(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return false
	}
	lower := strings.ToLower(raw)
	return !strings.HasPrefix(lower, "javascript:") && !strings.HasPrefix(lower, "mailto:")
}

func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return collapse(v)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
