package canvas

import (
	"context"

	"github.com/custodia-labs/coursekit/internal/classifier"
	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
	"github.com/custodia-labs/coursekit/internal/logger"
)

// Module item types.
const (
	ItemFile        = "File"
	ItemPage        = "Page"
	ItemExternalURL = "ExternalUrl"
)

// Ensure ModulesAdapter implements the interface.
var _ driven.SourceAdapter = (*ModulesAdapter)(nil)

// ModulesAdapter collects files referenced by module items.
type ModulesAdapter struct {
	client *Client
}

// NewModulesAdapter creates a modules adapter.
func NewModulesAdapter(client *Client) *ModulesAdapter {
	return &ModulesAdapter{client: client}
}

// Name returns the adapter name.
func (a *ModulesAdapter) Name() string {
	return string(SourceModules)
}

// Fetch walks every module's items. File items are resolved through their
// detail endpoint; external URLs are kept when they look downloadable.
func (a *ModulesAdapter) Fetch(ctx context.Context, courseID string) ([]domain.ContentItem, []domain.Issue) {
	var issues []domain.Issue

	modules, err := GetAll[apiModule](ctx, a.client, coursePath(courseID, "modules?per_page=100"))
	if err != nil {
		logger.Warn("modules: %v", err)
		issues = append(issues, newIssue(a.Name(), err))
	}

	var items []domain.ContentItem
	for _, mod := range keepValid(modules, apiModule.validate) {
		if err := a.client.Pause(ctx); err != nil {
			break
		}

		source := a.Name() + "/" + mod.ID.String()
		entries, err := GetAll[apiModuleItem](ctx, a.client,
			coursePath(courseID, "modules/"+mod.ID.String()+"/items?per_page=100"))
		if err != nil {
			logger.Warn("module %s: %v", mod.ID, err)
			issues = append(issues, newIssue(source, err))
		}

		folder := "modules/" + classifier.Sanitize(mod.Name, classifier.KindPathComponent)
		for _, entry := range keepValid(entries, apiModuleItem.validate) {
			item, ok, err := a.resolve(ctx, entry)
			if err != nil {
				logger.Warn("module item %s: %v", entry.ID, err)
				issues = append(issues, newIssue(source+"/"+entry.ID.String(), err))
				continue
			}
			if !ok {
				continue
			}
			item.Folder = folder
			item.ModuleName = mod.Name
			item.CourseID = courseID
			items = append(items, item)
		}
	}

	logger.Debug("modules: %d items", len(items))
	return items, issues
}

// resolve turns a module item into a content item when it references a file.
func (a *ModulesAdapter) resolve(ctx context.Context, entry apiModuleItem) (domain.ContentItem, bool, error) {
	switch entry.Type {
	case ItemFile:
		if entry.URL == "" {
			return domain.ContentItem{}, false, nil
		}
		if err := a.client.Pause(ctx); err != nil {
			return domain.ContentItem{}, false, err
		}
		var f apiFile
		if err := a.client.Get(ctx, entry.URL, &f); err != nil {
			return domain.ContentItem{}, false, err
		}
		if f.URL == "" || f.Filename == "" {
			return domain.ContentItem{}, false, nil
		}
		return domain.ContentItem{
			URL:         f.URL,
			Name:        classifier.Sanitize(f.Filename, classifier.KindFilename),
			ContentType: fileType(f.ContentType, f.Filename),
			Source:      domain.SourceModule,
			SizeBytes:   f.Size,
			MIMEType:    f.ContentType,
			ElementType: "module_item",
		}, true, nil

	case ItemExternalURL:
		if !classifier.IsDownloadableFile(entry.ExternalURL) {
			return domain.ContentItem{}, false, nil
		}
		name := entry.Title
		if name == "" {
			name = classifier.ExtractFilenameFromURL(entry.ExternalURL)
		}
		return domain.ContentItem{
			URL:         entry.ExternalURL,
			Name:        classifier.Sanitize(name, classifier.KindFilename),
			ContentType: classifier.ContentTypeOf(entry.ExternalURL),
			Source:      domain.SourceModuleExternal,
			ElementType: "module_item",
		}, true, nil
	}
	return domain.ContentItem{}, false, nil
}
