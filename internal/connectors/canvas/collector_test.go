package canvas

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursekit/internal/core/domain"
)

func seedCourse(f *fakeCanvas) {
	f.routes["/api/v1/courses/101"] = `{"id": 101, "name": "Biology 101", "course_code": "BIO101",
		"term": {"name": "Fall 2025"}, "syllabus_body": "<h2>Syllabus</h2><p>Weekly labs.</p><img src=\"/courses/101/files/4/preview\" alt=\"cell\">"}`
	f.routes["/api/v1/courses/101/assignments"] = `[
		{"id": 1, "name": "Lab Report", "description": "<p>Write it up.</p>", "due_at": "2025-10-01T23:59:00Z", "points_possible": 20},
		{"id": 2, "name": "Reflection", "description": "", "points_possible": null}
	]`
	f.routes["/api/v1/courses/101/discussion_topics"] = `[
		{"id": 7, "title": "Introductions", "message": "<p>Say hi</p>", "author": {"display_name": "Dr. Ruiz"}}
	]`
	f.routes["/api/v1/courses/101/discussion_topics/7/entries"] = `[
		{"id": 1, "message": "<p>Hello!</p>", "user_name": "Sam"}
	]`
	f.routes["/api/v1/courses/101/modules"] = `[
		{"id": 3, "name": "Week 1", "items": [
			{"id": 1, "title": "Welcome", "type": "Page", "page_url": "welcome"},
			{"id": 2, "title": "Slides", "type": "File", "html_url": "{{base}}/courses/101/modules/items/2"}
		]}
	]`
	f.routes["/api/v1/courses/101/pages/welcome"] = `{"url": "welcome", "title": "Welcome", "body": "<p>Welcome aboard</p>"}`
	f.routes["/api/v1/courses/101/files"] = `[{"id": 1, "filename": "a.pdf", "url": "{{base}}/files/1", "size": 10, "content-type": "application/pdf"}]`
	f.routes["/api/v1/courses/101/pages"] = `[{"url": "welcome", "title": "Welcome"}]`
	f.routes["/api/v1/courses/101/quizzes"] = `[{"id": 1, "title": "Quiz 1", "description": "<p>Ch. 1</p>", "points_possible": "10", "question_count": 5}]`
	f.routes["/api/v1/courses/101/users"] = `[{"id": 1, "name": "Dr. Ruiz"}, {"id": 2, "name": "Sam"}]`
	f.routes["/api/v1/courses/101/enrollments"] = `[
		{"user_id": 1, "type": "TeacherEnrollment", "user": {"id": 1, "name": "Dr. Ruiz"}},
		{"user_id": 2, "type": "StudentEnrollment", "user": {"id": 2, "name": "Sam"}}
	]`
	f.routes["/api/v1/courses/101/discussion_topics"+announcementsSuffix] = `[
		{"id": 9, "title": "Welcome!", "message": "<p>Class starts Monday</p>", "posted_at": "2025-08-30T10:00:00Z"}
	]`
	f.routes["/api/v1/calendar_events"] = `[{"id": 1, "title": "Midterm", "start_at": "2025-10-15T09:00:00Z", "location_name": "Hall B"}]`
}

func TestCollector_Collect(t *testing.T) {
	f := newFakeCanvas(t)
	seedCourse(f)

	c := NewCollector(f.client(t))
	c.now = func() time.Time { return time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC) }

	content, issues := c.Collect(context.Background(), "101")

	require.NotNil(t, content)
	assert.Equal(t, "Biology 101", content.Course.Name)
	assert.Equal(t, "BIO101", content.Course.Code)
	assert.Equal(t, "Fall 2025", content.Course.Term)
	assert.Equal(t, []string{"Dr. Ruiz"}, content.Course.Instructors)
	assert.Equal(t, "Syllabus\nWeekly labs.", content.Syllabus)

	require.Len(t, content.Assignments, 2)
	assert.Equal(t, "Write it up.", content.Assignments[0].Description)
	require.NotNil(t, content.Assignments[0].Points)
	assert.Equal(t, 20.0, *content.Assignments[0].Points)
	assert.Nil(t, content.Assignments[1].Points)

	require.Len(t, content.Discussions, 1)
	assert.Equal(t, "Dr. Ruiz", content.Discussions[0].Author)
	require.Len(t, content.Discussions[0].Entries, 1)
	assert.Equal(t, "Sam", content.Discussions[0].Entries[0].Author)
	assert.Equal(t, "Hello!", content.Discussions[0].Entries[0].Message)

	require.Len(t, content.Modules, 1)
	require.Len(t, content.Modules[0].Items, 2)
	assert.Equal(t, "Welcome aboard", content.Modules[0].Items[0].Content)

	assert.Len(t, content.Files, 1)
	require.Len(t, content.Pages, 1)
	assert.Equal(t, "Welcome aboard", content.Pages[0].Body)

	require.Len(t, content.Quizzes, 1)
	assert.Equal(t, 10.0, *content.Quizzes[0].Points)

	require.Len(t, content.People, 2)
	assert.Equal(t, "Teacher", content.People[0].Role)
	assert.Equal(t, "Student", content.People[1].Role)

	require.Len(t, content.Calendar, 1)
	assert.Equal(t, "Hall B", content.Calendar[0].Location)

	require.Len(t, content.Announcements, 1)
	assert.Equal(t, "Class starts Monday", content.Announcements[0].Message)
	assert.Equal(t, "Unknown", content.Announcements[0].Author)

	require.Len(t, content.Embedded.Images, 1)
	assert.Equal(t, time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC), content.ExtractedAt)
	assert.Empty(t, issues)
}

func TestCollector_MissingEndpoint(t *testing.T) {
	f := newFakeCanvas(t)
	seedCourse(f)
	delete(f.routes, "/api/v1/courses/101/quizzes")

	content, issues := NewCollector(f.client(t)).Collect(context.Background(), "101")

	assert.Empty(t, content.Quizzes)
	require.Len(t, issues, 1)
	assert.Equal(t, "collect/quizzes", issues[0].Source)
	assert.Equal(t, domain.IssueNotFound, issues[0].Kind)
}

func TestCollector_EndpointFailuresAreIsolated(t *testing.T) {
	f := newFakeCanvas(t)
	seedCourse(f)
	f.status["/api/v1/courses/101/assignments"] = http.StatusForbidden
	f.status["/api/v1/courses/101/discussion_topics/7/entries"] = http.StatusForbidden

	content, issues := NewCollector(f.client(t)).Collect(context.Background(), "101")

	assert.Empty(t, content.Assignments)
	require.Len(t, content.Discussions, 1)
	assert.Empty(t, content.Discussions[0].Entries)
	assert.NotEmpty(t, content.Pages)

	sources := make([]string, 0, len(issues))
	for _, issue := range issues {
		sources = append(sources, issue.Source)
	}
	assert.Contains(t, sources, "collect/assignments")
	assert.Contains(t, sources, "collect/discussions/7/entries")
}
