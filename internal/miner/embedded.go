package miner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/coursekit/internal/classifier"
	"github.com/custodia-labs/coursekit/internal/core/domain"
)

// MineEmbedded collects images, videos, frames, external links and PDF
// references from fragment for the report's embedded content section.
func MineEmbedded(fragment, baseURL string) domain.EmbeddedContent {
	var out domain.EmbeddedContent
	if strings.TrimSpace(fragment) == "" {
		return out
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return out
	}

	seen := make(map[string]struct{})
	keep := func(u string) bool {
		if u == "" {
			return false
		}
		if _, ok := seen[u]; ok {
			return false
		}
		seen[u] = struct{}{}
		return true
	}

	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		u := classifier.ResolveURL(attr(s, "src"), baseURL)
		if strings.HasPrefix(u, "data:") || !keep(u) {
			return
		}
		out.Images = append(out.Images, domain.Link{Text: firstNonEmpty(attr(s, "alt"), "Image"), URL: u})
	})

	doc.Find("video[src], video source[src]").Each(func(_ int, s *goquery.Selection) {
		u := classifier.ResolveURL(attr(s, "src"), baseURL)
		if !keep(u) {
			return
		}
		out.Videos = append(out.Videos, domain.Link{Text: firstNonEmpty(attr(s, "title"), "Video"), URL: u})
	})

	doc.Find("iframe[src]").Each(func(_ int, s *goquery.Selection) {
		u := classifier.ResolveURL(attr(s, "src"), baseURL)
		if !keep(u) {
			return
		}
		out.Frames = append(out.Frames, domain.Link{Text: firstNonEmpty(attr(s, "title"), "Embedded content"), URL: u})
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		raw := attr(s, "href")
		if !UsableHref(raw) {
			return
		}
		u := classifier.ResolveURL(raw, baseURL)
		text := firstNonEmpty(collapse(s.Text()), classifier.ExtractFilenameFromURL(u))
		switch {
		case strings.Contains(strings.ToLower(u), ".pdf"):
			if keep(u) {
				out.PDFs = append(out.PDFs, domain.Link{Text: text, URL: u})
			}
		case strings.HasPrefix(u, "http") && baseURL != "" && !classifier.SameHost(u, baseURL):
			if keep(u) {
				out.Links = append(out.Links, domain.Link{Text: text, URL: u})
			}
		}
	})

	return out
}
