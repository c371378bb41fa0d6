package canvas

import (
	"context"
	"net/url"

	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
	"github.com/custodia-labs/coursekit/internal/logger"
	"github.com/custodia-labs/coursekit/internal/miner"
)

// Ensure PagesAdapter implements the interface.
var _ driven.SourceAdapter = (*PagesAdapter)(nil)

// PagesAdapter mines wiki page bodies for file references.
type PagesAdapter struct {
	client *Client
}

// NewPagesAdapter creates a pages adapter.
func NewPagesAdapter(client *Client) *PagesAdapter {
	return &PagesAdapter{client: client}
}

// Name returns the adapter name.
func (a *PagesAdapter) Name() string {
	return string(SourcePages)
}

// Fetch lists pages, then fetches and mines each page body.
func (a *PagesAdapter) Fetch(ctx context.Context, courseID string) ([]domain.ContentItem, []domain.Issue) {
	var issues []domain.Issue

	pages, err := GetAll[apiPage](ctx, a.client, coursePath(courseID, "pages?per_page=100"))
	if err != nil {
		logger.Warn("pages: %v", err)
		issues = append(issues, newIssue(a.Name(), err))
	}

	var items []domain.ContentItem
	for _, p := range keepValid(pages, apiPage.validate) {
		detail, err := fetchPage(ctx, a.client, courseID, p.URL)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Warn("page %s: %v", p.URL, err)
			issues = append(issues, newIssue(a.Name()+"/"+p.URL, err))
			continue
		}

		mined := miner.Mine(detail.Body, miner.Options{
			BaseURL: a.client.BaseURL(),
			Context: "page_" + detail.Title,
		})
		for _, item := range mined {
			item.CourseID = courseID
			items = append(items, item)
		}
	}

	logger.Debug("pages: %d items", len(items))
	return items, issues
}

// fetchPage pauses, then reads one page by its url slug.
func fetchPage(ctx context.Context, client *Client, courseID, slug string) (*apiPage, error) {
	if err := client.Pause(ctx); err != nil {
		return nil, err
	}
	var detail apiPage
	if err := client.Get(ctx, coursePath(courseID, "pages/"+url.PathEscape(slug)), &detail); err != nil {
		return nil, err
	}
	if detail.Title == "" {
		detail.Title = slug
	}
	return &detail, nil
}
