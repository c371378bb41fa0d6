package driven

import (
	"context"

	"github.com/custodia-labs/coursekit/internal/core/domain"
)

// SourceAdapter discovers downloadable items from one course source.
// Fetch never fails: remote errors are isolated, logged, and returned
// as issues. A failing source yields an empty list.
type SourceAdapter interface {
	// Name identifies the adapter in logs and issues.
	Name() string

	// Fetch returns the items the source exposes for a course.
	Fetch(ctx context.Context, courseID string) ([]domain.ContentItem, []domain.Issue)
}

// ContentCollector gathers structured course content.
// Like SourceAdapter it degrades instead of failing.
type ContentCollector interface {
	Collect(ctx context.Context, courseID string) (*domain.ExtractedContent, []domain.Issue)
}

// PageProvider supplies the rendered HTML of the current course page.
type PageProvider interface {
	// Location returns the page URL, used as the base for relative links.
	Location() string

	// HTML returns the page markup.
	HTML(ctx context.Context) (string, error)
}

// FolderResolver maps API folder ids to folder names.
type FolderResolver interface {
	Folders(ctx context.Context, courseID string) map[string]string
}
