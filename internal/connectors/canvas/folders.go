package canvas

import (
	"context"

	"github.com/custodia-labs/coursekit/internal/classifier"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
	"github.com/custodia-labs/coursekit/internal/logger"
)

// Ensure FolderResolver implements the interface.
var _ driven.FolderResolver = (*FolderResolver)(nil)

// FolderResolver maps folder ids to sanitised folder names.
type FolderResolver struct {
	client *Client
}

// NewFolderResolver creates a folder resolver.
func NewFolderResolver(client *Client) *FolderResolver {
	return &FolderResolver{client: client}
}

// Folders returns id to name. Failures yield an empty map.
func (r *FolderResolver) Folders(ctx context.Context, courseID string) map[string]string {
	folders, err := GetAll[apiFolder](ctx, r.client, coursePath(courseID, "folders?per_page=100"))
	if err != nil {
		logger.Warn("folders: %v", err)
	}

	out := make(map[string]string, len(folders))
	for _, f := range keepValid(folders, apiFolder.validate) {
		out[f.ID.String()] = classifier.Sanitize(f.Name, classifier.KindPathComponent)
	}
	return out
}
