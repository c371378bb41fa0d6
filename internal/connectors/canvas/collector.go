package canvas

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
	"github.com/custodia-labs/coursekit/internal/logger"
	"github.com/custodia-labs/coursekit/internal/miner"
	htmlnorm "github.com/custodia-labs/coursekit/internal/normalisers/html"
)

// Ensure Collector implements the interface.
var _ driven.ContentCollector = (*Collector)(nil)

// Collector gathers the structured course content behind the text report.
type Collector struct {
	client *Client
	now    func() time.Time
}

// NewCollector creates a content collector.
func NewCollector(client *Client) *Collector {
	return &Collector{client: client, now: time.Now}
}

// collection is the state of one Collect call.
type collection struct {
	c        *Collector
	courseID string
	content  *domain.ExtractedContent
	issues   []domain.Issue
	embedded []string
}

type collectStep struct {
	name string
	run  func(*collection, context.Context) error
}

var collectSteps = []collectStep{
	{"course", (*collection).course},
	{"assignments", (*collection).assignments},
	{"discussions", (*collection).discussions},
	{"modules", (*collection).modules},
	{"files", (*collection).files},
	{"pages", (*collection).pages},
	{"announcements", (*collection).announcements},
	{"quizzes", (*collection).quizzes},
	{"users", (*collection).users},
	{"enrollments", (*collection).enrollments},
	{"calendar_events", (*collection).calendar},
}

// Collect reads every endpoint in turn. A failing endpoint leaves its
// section empty and is reported as an issue.
func (c *Collector) Collect(ctx context.Context, courseID string) (*domain.ExtractedContent, []domain.Issue) {
	run := &collection{
		c:        c,
		courseID: courseID,
		content: &domain.ExtractedContent{
			Course:      domain.Course{ID: courseID},
			ExtractedAt: c.now().UTC(),
		},
	}

	for i, step := range collectSteps {
		if ctx.Err() != nil {
			break
		}
		if i > 0 {
			if err := c.client.Pause(ctx); err != nil {
				break
			}
		}
		logger.Debug("collect: %s", step.name)
		if err := step.run(run, ctx); err != nil {
			logger.Warn("collect %s: %v", step.name, err)
			run.issues = append(run.issues, newIssue("collect/"+step.name, err))
		}
	}

	run.content.Embedded = miner.MineEmbedded(strings.Join(run.embedded, "\n"), c.client.BaseURL())
	return run.content, run.issues
}

// text converts a rich-text field to plain text and remembers its markup
// for the embedded content scan.
func (r *collection) text(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	r.embedded = append(r.embedded, html)
	return htmlnorm.ToText(html)
}

func (r *collection) nested(source string, err error) {
	logger.Warn("collect %s: %v", source, err)
	r.issues = append(r.issues, newIssue("collect/"+source, err))
}

func (r *collection) course(ctx context.Context) error {
	var course apiCourse
	err := r.c.client.Get(ctx, "/api/v1/courses/"+url.PathEscape(r.courseID)+"?include[]=syllabus_body&include[]=term", &course)
	if err != nil {
		return err
	}
	r.content.Course.Name = course.Name
	r.content.Course.Code = course.CourseCode
	r.content.Course.StartAt = course.StartAt
	r.content.Course.EndAt = course.EndAt
	if course.Term != nil {
		r.content.Course.Term = course.Term.Name
	}
	r.content.Syllabus = r.text(course.SyllabusBody)
	return nil
}

func (r *collection) assignments(ctx context.Context) error {
	list, err := GetAll[apiAssignment](ctx, r.c.client, coursePath(r.courseID, "assignments?per_page=100"))
	for _, a := range keepValid(list, apiAssignment.validate) {
		out := domain.Assignment{
			ID:          a.ID.String(),
			Name:        a.Name,
			Description: r.text(a.Description),
			DueAt:       a.DueAt,
			Points:      a.PointsPossible.Ptr(),
			Submission:  a.SubmissionTypes,
			URL:         a.HTMLURL,
		}
		for _, att := range keepValid(a.Attachments, apiAttachment.validate) {
			out.Attachments = append(out.Attachments, domain.Attachment{Name: att.Filename, URL: att.URL, Size: att.Size})
		}
		r.content.Assignments = append(r.content.Assignments, out)
	}
	return err
}

func (r *collection) discussions(ctx context.Context) error {
	list, err := GetAll[apiDiscussion](ctx, r.c.client, coursePath(r.courseID, "discussion_topics?per_page=100"))
	for _, d := range keepValid(list, apiDiscussion.validate) {
		if d.IsAnnouncement {
			r.content.Announcements = append(r.content.Announcements, r.announcement(d))
			continue
		}

		out := domain.Discussion{
			ID:       d.ID.String(),
			Title:    d.Title,
			Message:  r.text(d.Message),
			Author:   orUnknown(d.Author.DisplayName),
			PostedAt: d.PostedAt,
		}

		if perr := r.c.client.Pause(ctx); perr != nil {
			return perr
		}
		entries, eerr := GetAll[apiEntry](ctx, r.c.client,
			coursePath(r.courseID, "discussion_topics/"+out.ID+"/entries?per_page=50"))
		if eerr != nil {
			r.nested("discussions/"+out.ID+"/entries", eerr)
		}
		for _, e := range entries {
			out.Entries = append(out.Entries, domain.DiscussionEntry{
				Author:    e.author(),
				Message:   r.text(e.Message),
				CreatedAt: e.CreatedAt,
			})
		}
		r.content.Discussions = append(r.content.Discussions, out)
	}
	return err
}

func (r *collection) announcement(d apiDiscussion) domain.Announcement {
	return domain.Announcement{
		Title:    d.Title,
		Message:  r.text(d.Message),
		PostedAt: d.PostedAt,
		Author:   orUnknown(d.Author.DisplayName),
	}
}

func (r *collection) modules(ctx context.Context) error {
	list, err := GetAll[apiModule](ctx, r.c.client, coursePath(r.courseID, "modules?include[]=items&per_page=100"))
	for _, m := range keepValid(list, apiModule.validate) {
		out := domain.Module{ID: m.ID.String(), Name: m.Name}
		for _, item := range keepValid(m.Items, apiModuleItem.validate) {
			mi := domain.ModuleItem{Title: item.Title, Type: item.Type, URL: firstOf(item.HTMLURL, item.URL, item.ExternalURL)}
			if item.Type == ItemPage && item.PageURL != "" {
				page, perr := fetchPage(ctx, r.c.client, r.courseID, item.PageURL)
				if perr != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					r.nested("modules/"+out.ID+"/"+item.PageURL, perr)
				} else {
					mi.Content = r.text(page.Body)
				}
			}
			out.Items = append(out.Items, mi)
		}
		r.content.Modules = append(r.content.Modules, out)
	}
	return err
}

func (r *collection) files(ctx context.Context) error {
	list, err := GetAll[apiFile](ctx, r.c.client, coursePath(r.courseID, "files?per_page=100&sort=name"))
	for _, f := range list {
		if f.URL == "" || f.name() == "" {
			continue
		}
		r.content.Files = append(r.content.Files, domain.FileInfo{
			Name:        f.name(),
			URL:         f.URL,
			Size:        f.Size,
			ContentType: f.ContentType,
			UpdatedAt:   f.UpdatedAt,
		})
	}
	return err
}

func (r *collection) pages(ctx context.Context) error {
	list, err := GetAll[apiPage](ctx, r.c.client, coursePath(r.courseID, "pages?per_page=100"))
	for _, p := range keepValid(list, apiPage.validate) {
		detail, perr := fetchPage(ctx, r.c.client, r.courseID, p.URL)
		if perr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.nested("pages/"+p.URL, perr)
			continue
		}
		r.content.Pages = append(r.content.Pages, domain.Page{
			Title:     detail.Title,
			Body:      r.text(detail.Body),
			URL:       detail.HTMLURL,
			UpdatedAt: detail.UpdatedAt,
		})
	}
	return err
}

func (r *collection) announcements(ctx context.Context) error {
	list, err := GetAll[apiDiscussion](ctx, r.c.client,
		coursePath(r.courseID, "discussion_topics?only_announcements=true&per_page=100"))
	seen := make(map[string]bool, len(r.content.Announcements))
	for _, a := range r.content.Announcements {
		seen[a.Title+a.PostedAt] = true
	}
	for _, d := range keepValid(list, apiDiscussion.validate) {
		if seen[d.Title+d.PostedAt] {
			continue
		}
		r.content.Announcements = append(r.content.Announcements, r.announcement(d))
	}
	return err
}

func (r *collection) quizzes(ctx context.Context) error {
	list, err := GetAll[apiQuiz](ctx, r.c.client, coursePath(r.courseID, "quizzes?per_page=100"))
	for _, q := range keepValid(list, apiQuiz.validate) {
		r.content.Quizzes = append(r.content.Quizzes, domain.Quiz{
			Title:          q.Title,
			Description:    r.text(q.Description),
			DueAt:          q.DueAt,
			Points:         q.PointsPossible.Ptr(),
			QuestionCount:  q.QuestionCount,
			TimeLimitMins:  q.TimeLimit,
			AllowedAttempt: q.AllowedAttempts,
		})
	}
	return err
}

func (r *collection) users(ctx context.Context) error {
	list, err := GetAll[apiUser](ctx, r.c.client, coursePath(r.courseID, "users?per_page=100"))
	for _, u := range keepValid(list, apiUser.validate) {
		r.content.People = append(r.content.People, domain.Person{Name: u.Name, Email: u.Email})
	}
	return err
}

// enrollments fills in roles and the instructor list.
func (r *collection) enrollments(ctx context.Context) error {
	list, err := GetAll[apiEnrollment](ctx, r.c.client, coursePath(r.courseID, "enrollments?per_page=100"))
	roles := make(map[string]string, len(list))
	for _, e := range list {
		role := strings.TrimSuffix(e.Type, "Enrollment")
		name := e.User.Name
		if name == "" {
			continue
		}
		if _, ok := roles[name]; !ok {
			roles[name] = role
		}
		if role == "Teacher" && !contains(r.content.Course.Instructors, name) {
			r.content.Course.Instructors = append(r.content.Course.Instructors, name)
		}
	}
	for i := range r.content.People {
		if role, ok := roles[r.content.People[i].Name]; ok {
			r.content.People[i].Role = role
		}
	}
	return err
}

func (r *collection) calendar(ctx context.Context) error {
	list, err := GetAll[apiCalendarEvent](ctx, r.c.client,
		"/api/v1/calendar_events?context_codes[]=course_"+url.QueryEscape(r.courseID)+"&per_page=100")
	for _, e := range keepValid(list, apiCalendarEvent.validate) {
		r.content.Calendar = append(r.content.Calendar, domain.CalendarEvent{
			Title:       e.Title,
			Description: r.text(e.Description),
			StartAt:     e.StartAt,
			EndAt:       e.EndAt,
			Location:    e.LocationName,
		})
	}
	return err
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
