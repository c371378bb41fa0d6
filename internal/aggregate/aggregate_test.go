package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursekit/internal/core/domain"
)

func TestAdd_FirstWins(t *testing.T) {
	a := New()
	first := domain.ContentItem{URL: "https://x.test/files/1", Name: "a.pdf", Source: domain.SourceAPI}
	dup := domain.ContentItem{URL: "https://x.test/files/1", Name: "a.pdf", Source: domain.SourcePageScan}

	assert.Equal(t, 1, a.Add(first))
	assert.Equal(t, 0, a.Add(dup))

	require.Equal(t, 1, a.Len())
	assert.Equal(t, first, a.Items()[0])
}

func TestAggregate_APISizeWins(t *testing.T) {
	api := []domain.ContentItem{{URL: "U", Name: "N", Source: domain.SourceAPI, SizeBytes: 1024}}
	scan := []domain.ContentItem{{URL: "U", Name: "N", Source: domain.SourcePageScan}}

	merged := Aggregate(api, scan)

	require.Len(t, merged, 1)
	assert.Equal(t, int64(1024), merged[0].SizeBytes)
	assert.Equal(t, domain.SourceAPI, merged[0].Source)
}

func TestAggregate_SameURLDifferentNameKept(t *testing.T) {
	merged := Aggregate([]domain.ContentItem{
		{URL: "U", Name: "Syllabus"},
		{URL: "U", Name: "syllabus.pdf"},
		{URL: "V", Name: "Syllabus"},
	})

	assert.Len(t, merged, 3)
}

func TestAggregate_Deterministic(t *testing.T) {
	lists := [][]domain.ContentItem{
		{{URL: "a", Name: "1"}, {URL: "b", Name: "2"}},
		{{URL: "b", Name: "2", Source: domain.SourceModule}, {URL: "c", Name: "3"}},
		{{URL: "a", Name: "1", Source: domain.SourceDOMComprehensive}},
	}

	first := Aggregate(lists...)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Aggregate(lists...))
	}
	require.Len(t, first, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{first[0].URL, first[1].URL, first[2].URL})
}

func TestItems_ReturnsCopy(t *testing.T) {
	a := New()
	a.Add(domain.ContentItem{URL: "a", Name: "1"})

	items := a.Items()
	items[0].Name = "changed"

	assert.Equal(t, "1", a.Items()[0].Name)
}

func TestFolderFor(t *testing.T) {
	folders := map[string]string{"9": "Lecture_Notes"}

	tests := []struct {
		name string
		item domain.ContentItem
		want string
	}{
		{"folder id resolved", domain.ContentItem{Folder: "9", Source: domain.SourceAPI}, "Lecture_Notes"},
		{"unknown folder id", domain.ContentItem{Folder: "77", Source: domain.SourceAPI}, FolderFiles},
		{"root folder", domain.ContentItem{Folder: "root", Source: domain.SourceAPI}, FolderFiles},
		{"explicit path", domain.ContentItem{Folder: "assignments/Essay_1", Source: domain.SourceAssignment}, "assignments/Essay_1"},
		{"assignment bucket", domain.ContentItem{Source: domain.SourceAssignmentEmbedded, AssignmentName: "Essay 1"}, "assignments/Essay_1"},
		{"assignment without name", domain.ContentItem{Source: domain.SourceAssignment}, FolderAssignments},
		{"module bucket", domain.ContentItem{Source: domain.SourceModuleExternal, ModuleName: "Week 2"}, "modules/Week_2"},
		{"discussion reply", domain.ContentItem{Source: domain.SourceDiscussionReply}, FolderDiscussions},
		{"page image", domain.ContentItem{Source: domain.SourceHTMLImage}, FolderPages},
		{"pdf regex", domain.ContentItem{Source: domain.SourcePDFTextPattern}, FolderPDFs},
		{"canvas file", domain.ContentItem{Source: domain.SourceCanvasFileEmbedded}, FolderFiles},
		{"dom scan", domain.ContentItem{Source: domain.SourceDOMComprehensive}, FolderMisc},
		{"raw source", domain.ContentItem{Source: domain.Source("rss feed")}, "rss_feed"},
		{"nothing", domain.ContentItem{}, FolderMisc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FolderFor(tt.item, folders))
		})
	}
}

func TestAttachFolders(t *testing.T) {
	a := New()
	a.Add(
		domain.ContentItem{URL: "a", Name: "1", Source: domain.SourceAPI, Folder: "9", CourseName: "Old"},
		domain.ContentItem{URL: "b", Name: "2", Source: domain.SourcePageScan},
	)

	a.AttachFolders(domain.Course{ID: "42", Name: "Biology"}, map[string]string{"9": "Labs"})

	items := a.Items()
	assert.Equal(t, "Labs", items[0].FolderPath)
	assert.Equal(t, "pages", items[1].FolderPath)
	for _, item := range items {
		assert.Equal(t, "42", item.CourseID)
		assert.Equal(t, "Biology", item.CourseName)
	}
}

func TestStats(t *testing.T) {
	a := New()
	a.Add(
		domain.ContentItem{URL: "a", Name: "1", ContentType: domain.ContentPDF, Source: domain.SourceAPI},
		domain.ContentItem{URL: "b", Name: "2", ContentType: domain.ContentPDF, Source: domain.SourceModule},
		domain.ContentItem{URL: "c", Name: "3", ContentType: domain.ContentImage, Source: domain.SourceHTMLImage},
	)

	stats := a.Stats()

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByType[domain.ContentPDF])
	assert.Equal(t, 1, stats.ByType[domain.ContentImage])
	assert.Equal(t, 1, stats.BySource[domain.SourceModule])
}
