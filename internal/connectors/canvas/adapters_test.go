package canvas

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursekit/internal/core/domain"
)

// announcementsSuffix keys the announcement listing, which shares its path
// with discussion topics.
const announcementsSuffix = "#announcements"

// fakeCanvas serves canned JSON by request path. "{{base}}" in a body is
// replaced with the server URL.
type fakeCanvas struct {
	srv    *httptest.Server
	routes map[string]string
	status map[string]int
}

func newFakeCanvas(t *testing.T) *fakeCanvas {
	t.Helper()
	f := &fakeCanvas{routes: map[string]string{}, status: map[string]int{}}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if code, ok := f.status[r.URL.Path]; ok {
			w.WriteHeader(code)
			fmt.Fprint(w, `{"errors":[{"message":"not allowed"}]}`)
			return
		}
		key := r.URL.Path
		if r.URL.Query().Get("only_announcements") == "true" {
			key += announcementsSuffix
		}
		body, ok := f.routes[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, strings.ReplaceAll(body, "{{base}}", f.srv.URL))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeCanvas) client(t *testing.T) *Client {
	return newTestClient(t, f.srv.URL)
}

func TestFilesAdapter(t *testing.T) {
	f := newFakeCanvas(t)
	f.routes["/api/v1/courses/101/files"] = `[
		{"id": 1, "filename": "Syllabus.pdf", "url": "{{base}}/files/1/download", "size": 1024, "content-type": "application/pdf", "folder_id": 9},
		{"id": 2, "filename": "empty.txt", "url": "{{base}}/files/2/download", "size": 0},
		{"id": 3, "filename": "notes.docx", "url": "{{base}}/files/3/download", "size": 20}
	]`

	items, issues := NewFilesAdapter(f.client(t)).Fetch(context.Background(), "101")

	assert.Empty(t, issues)
	require.Len(t, items, 2)
	assert.Equal(t, "Syllabus.pdf", items[0].Name)
	assert.Equal(t, domain.ContentPDF, items[0].ContentType)
	assert.Equal(t, domain.SourceAPI, items[0].Source)
	assert.Equal(t, int64(1024), items[0].SizeBytes)
	assert.Equal(t, "9", items[0].Folder)
	assert.Equal(t, "101", items[0].CourseID)
	assert.Equal(t, domain.ContentDoc, items[1].ContentType)
	assert.Equal(t, "root", items[1].Folder)
}

func TestFilesAdapter_ForbiddenIsIsolated(t *testing.T) {
	f := newFakeCanvas(t)
	f.status["/api/v1/courses/101/files"] = http.StatusForbidden

	items, issues := NewFilesAdapter(f.client(t)).Fetch(context.Background(), "101")

	assert.Empty(t, items)
	require.Len(t, issues, 1)
	assert.Equal(t, domain.IssueAccessDenied, issues[0].Kind)
	assert.Equal(t, "files", issues[0].Source)
}

func TestAssignmentsAdapter(t *testing.T) {
	f := newFakeCanvas(t)
	f.routes["/api/v1/courses/101/assignments"] = `[
		{"id": 5, "name": "Essay 1", "description": "<p>Read <a href=\"/courses/101/files/77\">the prompt</a></p>"},
		{"id": 6, "name": "Lab", "description": "", "attachments": [{"filename": "lab.zip", "url": "{{base}}/files/8/download", "size": 300}]},
		{"id": "", "name": "broken"}
	]`
	f.routes["/api/v1/courses/101/assignments/5"] = `{"id": 5, "name": "Essay 1", "attachments": [{"filename": "rubric.pdf", "url": "{{base}}/files/9/download", "size": 50}]}`

	items, issues := NewAssignmentsAdapter(f.client(t)).Fetch(context.Background(), "101")

	assert.Empty(t, issues)
	require.Len(t, items, 3)

	assert.Equal(t, "rubric.pdf", items[0].Name)
	assert.Equal(t, domain.SourceAssignment, items[0].Source)
	assert.Equal(t, "assignments/Essay_1", items[0].Folder)
	assert.Equal(t, "Essay 1", items[0].AssignmentName)

	assert.Equal(t, "the_prompt", items[1].Name)
	assert.Equal(t, domain.SourceAssignmentEmbedded, items[1].Source)
	assert.Equal(t, f.srv.URL+"/courses/101/files/77", items[1].URL)
	assert.Equal(t, "assignment_Essay 1", items[1].PageTitle)

	assert.Equal(t, "lab.zip", items[2].Name)
	assert.Equal(t, domain.ContentArchive, items[2].ContentType)
}

func TestModulesAdapter(t *testing.T) {
	f := newFakeCanvas(t)
	f.routes["/api/v1/courses/101/modules"] = `[{"id": 1, "name": "Week 1"}]`
	f.routes["/api/v1/courses/101/modules/1/items"] = `[
		{"id": 10, "title": "Slides", "type": "File", "url": "{{base}}/api/v1/courses/101/files/55"},
		{"id": 11, "title": "Reading", "type": "ExternalUrl", "external_url": "https://example.org/paper.pdf"},
		{"id": 12, "title": "Blog", "type": "ExternalUrl", "external_url": "https://example.org/post"},
		{"id": 13, "title": "Intro", "type": "Page", "page_url": "intro"},
		{"id": 14, "title": "Missing", "type": "File", "url": "{{base}}/api/v1/courses/101/files/404"}
	]`
	f.routes["/api/v1/courses/101/files/55"] = `{"id": 55, "filename": "week1.pptx", "url": "{{base}}/files/55/download", "size": 900}`

	items, issues := NewModulesAdapter(f.client(t)).Fetch(context.Background(), "101")

	require.Len(t, items, 2)
	assert.Equal(t, "week1.pptx", items[0].Name)
	assert.Equal(t, domain.SourceModule, items[0].Source)
	assert.Equal(t, domain.ContentSlide, items[0].ContentType)
	assert.Equal(t, "modules/Week_1", items[0].Folder)
	assert.Equal(t, "Week 1", items[0].ModuleName)

	assert.Equal(t, "Reading", items[1].Name)
	assert.Equal(t, domain.SourceModuleExternal, items[1].Source)
	assert.Equal(t, int64(0), items[1].SizeBytes)

	require.Len(t, issues, 1)
	assert.Equal(t, domain.IssueNotFound, issues[0].Kind)
}

func TestDiscussionsAdapter_ForbiddenEntries(t *testing.T) {
	f := newFakeCanvas(t)
	f.routes["/api/v1/courses/101/discussion_topics"] = `[
		{"id": 3, "title": "Intro thread", "message": "<a href=\"https://cdn.example.org/guide.pdf\">guide</a>"},
		{"id": 4, "title": "Q&A", "message": "no files"}
	]`
	f.status["/api/v1/courses/101/discussion_topics/3/entries"] = http.StatusForbidden
	f.routes["/api/v1/courses/101/discussion_topics/4/entries"] = `[
		{"id": 1, "message": "<a href=\"/courses/101/files/12/download\">answer key</a>"}
	]`

	items, issues := NewDiscussionsAdapter(f.client(t)).Fetch(context.Background(), "101")

	require.Len(t, items, 2)
	assert.Equal(t, domain.SourceDiscussion, items[0].Source)
	assert.Equal(t, "discussions/Intro_thread", items[0].Folder)
	assert.Equal(t, domain.SourceDiscussionReply, items[1].Source)
	assert.Equal(t, "answer_key", items[1].Name)

	require.Len(t, issues, 1)
	assert.Equal(t, domain.IssueAccessDenied, issues[0].Kind)
	assert.Equal(t, "discussions/3/entries", issues[0].Source)
}

func TestPagesAdapter(t *testing.T) {
	f := newFakeCanvas(t)
	f.routes["/api/v1/courses/101/pages"] = `[{"url": "week-1", "title": "Week 1"}, {"url": "gone", "title": "Gone"}]`
	f.routes["/api/v1/courses/101/pages/week-1"] = `{"url": "week-1", "title": "Week 1", "body": "<img src=\"/courses/101/files/3/preview\" alt=\"Diagram\"><a href=\"handout.docx\">Handout</a>"}`

	items, issues := NewPagesAdapter(f.client(t)).Fetch(context.Background(), "101")

	require.Len(t, items, 2)
	assert.Equal(t, "Handout", items[0].Name)
	assert.Equal(t, domain.SourceHTMLContent, items[0].Source)
	assert.Equal(t, "page_Week 1", items[0].PageTitle)
	assert.Equal(t, domain.SourceHTMLImage, items[1].Source)
	assert.Equal(t, "Diagram", items[1].Name)

	require.Len(t, issues, 1)
	assert.Equal(t, "pages/gone", issues[0].Source)
}

func TestFolderResolver(t *testing.T) {
	f := newFakeCanvas(t)
	f.routes["/api/v1/courses/101/folders"] = `[
		{"id": 9, "name": "Lecture Notes", "full_name": "course files/Lecture Notes"},
		{"id": 10, "name": ""}
	]`

	folders := NewFolderResolver(f.client(t)).Folders(context.Background(), "101")

	assert.Equal(t, map[string]string{"9": "Lecture_Notes"}, folders)
}

func TestFolderResolver_FailureIsEmpty(t *testing.T) {
	f := newFakeCanvas(t)

	folders := NewFolderResolver(f.client(t)).Folders(context.Background(), "101")

	assert.Empty(t, folders)
}
