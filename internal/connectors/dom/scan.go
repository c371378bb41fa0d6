package dom

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/coursekit/internal/classifier"
	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
	"github.com/custodia-labs/coursekit/internal/logger"
	"github.com/custodia-labs/coursekit/internal/miner"
)

// Ensure adapters implement the interface.
var (
	_ driven.SourceAdapter = (*PageScanAdapter)(nil)
	_ driven.SourceAdapter = (*Adapter)(nil)
)

// PageScanAdapter scans the current page for file references.
type PageScanAdapter struct {
	page driven.PageProvider
}

// NewPageScanAdapter creates a page scan over page.
func NewPageScanAdapter(page driven.PageProvider) *PageScanAdapter {
	return &PageScanAdapter{page: page}
}

// Name returns the adapter name.
func (a *PageScanAdapter) Name() string {
	return "page_scan"
}

// Fetch runs the selector table over the page, then the PDF and platform
// file URL sweeps over the raw markup.
func (a *PageScanAdapter) Fetch(ctx context.Context, courseID string) ([]domain.ContentItem, []domain.Issue) {
	markup, doc, issue := load(ctx, a.page, a.Name())
	if issue != nil {
		return nil, []domain.Issue{*issue}
	}

	location := a.page.Location()
	title := pageTitle(doc)
	set := newItemSet(0)

	for _, sel := range classifier.Selectors(classifier.PageGroups()...) {
		doc.Find(sel.Query).Each(func(_ int, s *goquery.Selection) {
			if isHidden(s) {
				return
			}
			raw, ok := s.Attr(sel.Attr)
			if !ok || !miner.UsableHref(raw) {
				return
			}
			u := classifier.ResolveURL(raw, location)
			if !classifier.IsDownloadableFile(u) {
				return
			}

			source := domain.SourcePageScan
			if strings.Contains(strings.ToLower(u), ".pdf") {
				source = domain.SourcePDFEmbedded
			}
			set.add(domain.ContentItem{
				URL:         u,
				Name:        miner.AnchorName(s, u),
				ContentType: classifier.ContentTypeOf(u),
				Source:      source,
				PageTitle:   title,
				ElementType: goquery.NodeName(s),
			})
		})
	}

	opts := miner.Options{BaseURL: location, Context: title, Source: domain.SourcePDFEmbedded}
	set.add(miner.MinePDFURLs(markup, opts)...)
	set.add(miner.MineCanvasFileURLs(markup, opts)...)

	items := set.stamp(courseID)
	logger.Debug("page_scan: %d items from %s", len(items), location)
	return items, nil
}

// Adapter is the comprehensive DOM scan of last resort.
type Adapter struct {
	page       driven.PageProvider
	maxResults int
}

// NewAdapter creates the comprehensive scan. maxResults <= 0 uses
// domain.DefaultDOMMaxResults.
func NewAdapter(page driven.PageProvider, maxResults int) *Adapter {
	if maxResults <= 0 {
		maxResults = domain.DefaultDOMMaxResults
	}
	return &Adapter{page: page, maxResults: maxResults}
}

// Name returns the adapter name.
func (a *Adapter) Name() string {
	return "dom"
}

// Fetch collects every visible element of the shared selector table whose
// URL classifies as a file, up to the result cap.
func (a *Adapter) Fetch(ctx context.Context, courseID string) ([]domain.ContentItem, []domain.Issue) {
	_, doc, issue := load(ctx, a.page, a.Name())
	if issue != nil {
		return nil, []domain.Issue{*issue}
	}

	location := a.page.Location()
	set := newItemSet(a.maxResults)

	for _, sel := range classifier.Selectors(classifier.PageGroups()...) {
		if set.full() {
			break
		}
		doc.Find(sel.Query).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if isHidden(s) {
				return true
			}
			raw := firstAttr(s, sel.Attr, "data-api-endpoint")
			if raw == "" || strings.HasPrefix(raw, "#") {
				return true
			}
			u := classifier.ResolveURL(raw, location)
			if !classifier.IsDownloadableFile(u) {
				return true
			}

			name := firstAttr(s, "download", "data-filename", "title")
			if name == "" {
				name = strings.Join(strings.Fields(s.Text()), " ")
			}
			if name == "" {
				name = classifier.ExtractFilenameFromURL(u)
			}
			set.add(domain.ContentItem{
				URL:         u,
				Name:        classifier.Sanitize(name, classifier.KindFilename),
				ContentType: classifier.ContentTypeOf(u),
				Source:      domain.SourceDOMComprehensive,
				ElementType: goquery.NodeName(s),
			})
			return !set.full()
		})
	}

	items := set.stamp(courseID)
	logger.Info("DOM scan found %d files", len(items))
	return items, nil
}

// load fetches and parses the page. Failures become an issue.
func load(ctx context.Context, page driven.PageProvider, source string) (string, *goquery.Document, *domain.Issue) {
	if page == nil {
		return "", nil, &domain.Issue{Source: source, Kind: domain.IssueNotFound, Message: "no page available"}
	}
	markup, err := page.HTML(ctx)
	if err != nil {
		logger.Warn("%s: %v", source, err)
		return "", nil, &domain.Issue{Source: source, Kind: domain.IssueTransient, Message: err.Error()}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", nil, &domain.Issue{Source: source, Kind: domain.IssueParse, Message: err.Error()}
	}
	return markup, doc, nil
}

// itemSet keeps the first item per key, up to an optional limit.
type itemSet struct {
	limit int
	seen  map[string]struct{}
	items []domain.ContentItem
}

func newItemSet(limit int) *itemSet {
	return &itemSet{limit: limit, seen: make(map[string]struct{})}
}

func (s *itemSet) full() bool {
	return s.limit > 0 && len(s.items) >= s.limit
}

func (s *itemSet) add(items ...domain.ContentItem) {
	for _, item := range items {
		if s.full() {
			return
		}
		if _, ok := s.seen[item.URL]; ok {
			continue
		}
		s.seen[item.URL] = struct{}{}
		s.items = append(s.items, item)
	}
}

func (s *itemSet) stamp(courseID string) []domain.ContentItem {
	for i := range s.items {
		s.items[i].CourseID = courseID
	}
	return s.items
}

// isHidden reports whether s or an ancestor is hidden by attribute or
// inline style.
func isHidden(s *goquery.Selection) bool {
	for n := s; n.Length() > 0; n = n.Parent() {
		if _, ok := n.Attr("hidden"); ok {
			return true
		}
		if strings.EqualFold(strings.TrimSpace(n.AttrOr("aria-hidden", "")), "true") {
			return true
		}
		style := strings.ToLower(strings.ReplaceAll(n.AttrOr("style", ""), " ", ""))
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return true
		}
	}
	return false
}

func firstAttr(s *goquery.Selection, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(s.AttrOr(name, "")); v != "" {
			return v
		}
	}
	return ""
}

func pageTitle(doc *goquery.Document) string {
	return strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
}
