// Package aggregate merges item lists from every source into one
// deduplicated, folder-placed set.
//
// An Aggregator lives for one run. Items are keyed by URL and name; the
// first list to deliver a key owns it, so callers add lists in source
// precedence order.
package aggregate

import (
	"strings"

	"github.com/custodia-labs/coursekit/internal/classifier"
	"github.com/custodia-labs/coursekit/internal/core/domain"
)

// Folder buckets.
const (
	FolderFiles       = "files"
	FolderAssignments = "assignments"
	FolderModules     = "modules"
	FolderDiscussions = "discussions"
	FolderPages       = "pages"
	FolderPDFs        = "pdfs"
	FolderMisc        = "misc"

	// rootFolder marks files at the top of the course file tree.
	rootFolder = "root"
)

// Aggregator deduplicates items across sources.
type Aggregator struct {
	index map[string]int
	items []domain.ContentItem
}

// New creates an empty aggregator.
func New() *Aggregator {
	return &Aggregator{index: make(map[string]int)}
}

// Add appends items whose key is not yet present. It returns the number
// of items kept.
func (a *Aggregator) Add(items ...domain.ContentItem) int {
	kept := 0
	for _, item := range items {
		key := item.Key()
		if _, ok := a.index[key]; ok {
			continue
		}
		a.index[key] = len(a.items)
		a.items = append(a.items, item)
		kept++
	}
	return kept
}

// Len returns the number of unique items.
func (a *Aggregator) Len() int {
	return len(a.items)
}

// Items returns a copy of the unique items in insertion order.
func (a *Aggregator) Items() []domain.ContentItem {
	out := make([]domain.ContentItem, len(a.items))
	copy(out, a.items)
	return out
}

// Aggregate merges lists in the given order and returns the result.
func Aggregate(lists ...[]domain.ContentItem) []domain.ContentItem {
	a := New()
	for _, list := range lists {
		a.Add(list...)
	}
	return a.Items()
}

// AttachFolders stamps the course on every item and assigns FolderPath.
// folderNames maps API folder ids to names and may be nil.
func (a *Aggregator) AttachFolders(course domain.Course, folderNames map[string]string) {
	for i := range a.items {
		item := &a.items[i]
		item.CourseID = course.ID
		if course.Name != "" {
			item.CourseName = course.Name
		}
		item.FolderPath = FolderFor(*item, folderNames)
	}
}

// FolderFor picks the logical folder of an item: explicit folder
// metadata first, then the bucket of its source, then the raw source.
func FolderFor(item domain.ContentItem, folderNames map[string]string) string {
	if folder := explicitFolder(item.Folder, folderNames); folder != "" {
		return folder
	}
	if bucket := sourceBucket(item); bucket != "" {
		return bucket
	}
	if item.Source != "" {
		return classifier.Sanitize(string(item.Source), classifier.KindPathComponent)
	}
	return FolderMisc
}

// explicitFolder resolves folder ids through the map. Non-numeric values
// other than root are logical paths already.
func explicitFolder(folder string, folderNames map[string]string) string {
	folder = strings.TrimSpace(folder)
	if folder == "" || folder == rootFolder {
		return ""
	}
	if name, ok := folderNames[folder]; ok && name != "" {
		return name
	}
	if isNumeric(folder) {
		return ""
	}
	return folder
}

func sourceBucket(item domain.ContentItem) string {
	switch item.Source {
	case domain.SourceAPI, domain.SourceCanvasFileEmbedded:
		return FolderFiles
	case domain.SourceAssignment, domain.SourceAssignmentEmbedded:
		return nested(FolderAssignments, item.AssignmentName)
	case domain.SourceModule, domain.SourceModuleExternal:
		return nested(FolderModules, item.ModuleName)
	case domain.SourceDiscussion, domain.SourceDiscussionReply:
		return FolderDiscussions
	case domain.SourcePageScan, domain.SourceHTMLContent, domain.SourceHTMLImage:
		return FolderPages
	case domain.SourcePDFEmbedded, domain.SourcePDFTextPattern:
		return FolderPDFs
	case domain.SourceDOMComprehensive:
		return FolderMisc
	default:
		return ""
	}
}

func nested(bucket, name string) string {
	if strings.TrimSpace(name) == "" {
		return bucket
	}
	return bucket + "/" + classifier.Sanitize(name, classifier.KindPathComponent)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Stats counts the unique items by content type and source.
func (a *Aggregator) Stats() domain.Stats {
	return StatsOf(a.items)
}

// StatsOf counts items by content type and source.
func StatsOf(items []domain.ContentItem) domain.Stats {
	stats := domain.Stats{
		Total:    len(items),
		ByType:   make(map[domain.ContentType]int),
		BySource: make(map[domain.Source]int),
	}
	for _, item := range items {
		stats.ByType[item.ContentType]++
		stats.BySource[item.Source]++
	}
	return stats
}
