package canvas

import (
	"context"
	"net/url"
	"path"

	"github.com/custodia-labs/coursekit/internal/classifier"
	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
	"github.com/custodia-labs/coursekit/internal/logger"
)

// Ensure FilesAdapter implements the interface.
var _ driven.SourceAdapter = (*FilesAdapter)(nil)

// FilesAdapter lists the course file store.
type FilesAdapter struct {
	client *Client
}

// NewFilesAdapter creates a files adapter.
func NewFilesAdapter(client *Client) *FilesAdapter {
	return &FilesAdapter{client: client}
}

// Name returns the adapter name.
func (a *FilesAdapter) Name() string {
	return string(SourceFiles)
}

// Fetch lists every file with a url, a filename and a positive size.
func (a *FilesAdapter) Fetch(ctx context.Context, courseID string) ([]domain.ContentItem, []domain.Issue) {
	var issues []domain.Issue

	files, err := GetAll[apiFile](ctx, a.client, coursePath(courseID, "files?per_page=100&sort=name"))
	if err != nil {
		logger.Warn("files: %v", err)
		issues = append(issues, newIssue(a.Name(), err))
	}

	files = keepValid(files, apiFile.validate)
	items := make([]domain.ContentItem, 0, len(files))
	for _, f := range files {
		folder := f.FolderID.String()
		if folder == "" {
			folder = "root"
		}
		items = append(items, domain.ContentItem{
			URL:         f.URL,
			Name:        classifier.Sanitize(f.name(), classifier.KindFilename),
			ContentType: fileType(f.ContentType, f.name()),
			Source:      domain.SourceAPI,
			Folder:      folder,
			SizeBytes:   f.Size,
			MIMEType:    f.ContentType,
			CourseID:    courseID,
			ElementType: "api",
		})
	}

	logger.Debug("files: %d items", len(items))
	return items, issues
}

// coursePath builds an API path under the course.
func coursePath(courseID, suffix string) string {
	return "/api/v1/courses/" + url.PathEscape(courseID) + "/" + suffix
}

// fileType prefers the reported MIME type and falls back to the extension.
func fileType(mime, name string) domain.ContentType {
	if ct := classifier.ContentTypeFromMIME(mime); ct != domain.ContentUnknown {
		return ct
	}
	return classifier.TypeOfExtension(path.Ext(name))
}

// attachmentItem converts an attachment into an item.
func attachmentItem(a apiAttachment, courseID string, source domain.Source) domain.ContentItem {
	return domain.ContentItem{
		URL:         a.URL,
		Name:        classifier.Sanitize(a.Filename, classifier.KindFilename),
		ContentType: fileType(a.ContentType, a.Filename),
		Source:      source,
		SizeBytes:   a.Size,
		MIMEType:    a.ContentType,
		CourseID:    courseID,
		ElementType: "attachment",
	}
}
