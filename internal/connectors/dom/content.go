package dom

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/coursekit/internal/classifier"
	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
	"github.com/custodia-labs/coursekit/internal/miner"
	htmlnorm "github.com/custodia-labs/coursekit/internal/normalisers/html"
)

// Ensure Collector implements the interface.
var _ driven.ContentCollector = (*Collector)(nil)

// Page types recognised from the location.
const (
	PageAssignments   = "assignments"
	PageDiscussions   = "discussions"
	PageModules       = "modules"
	PageFiles         = "files"
	PageSyllabus      = "syllabus"
	PageAnnouncements = "announcements"
	PageGrades        = "grades"
	PagePages         = "pages"
	PageQuizzes       = "quizzes"
	PagePeople        = "people"
	PageHome          = "home"
)

// pageTypes is checked in order; syllabus lives under /assignments.
var pageTypes = []struct {
	kind    string
	path    string
	hashKey string
}{
	{PageSyllabus, "/assignments/syllabus", "syllabus"},
	{PageAssignments, "/assignments", "assignments"},
	{PageDiscussions, "/discussion_topics", "discussions"},
	{PageModules, "/modules", "modules"},
	{PageFiles, "/files", "files"},
	{PageAnnouncements, "/announcements", "announcements"},
	{PageGrades, "/grades", "grades"},
	{PagePages, "/pages", "pages"},
	{PageQuizzes, "/quizzes", "quizzes"},
	{PagePeople, "/users", "people"},
}

// PageType classifies a course page URL.
func PageType(location string) string {
	path, hash := location, ""
	if i := strings.Index(location, "#"); i >= 0 {
		path, hash = location[:i], location[i+1:]
	}
	for _, t := range pageTypes {
		if strings.Contains(path, t.path) || strings.Contains(hash, t.hashKey) {
			return t.kind
		}
	}
	return PageHome
}

var (
	mainContentSelectors = []string{
		"#content", ".ic-app-main-content", "main", ".course-content",
		".content-wrapper", ".user_content", ".show-content",
	}
	navSelector    = `a[href*="/courses/"], .ic-app-course-nav a, #section-tabs a, .course-navigation a`
	importantPages = []string{
		"syllabus", "assignments", "discussions", "modules", "files",
		"pages", "announcements", "grades", "people",
	}
	sectionPattern = regexp.MustCompile(`/courses/\d+/([a-z_]+)(/syllabus)?/?(?:[?#].*)?$`)
	sectionAlias   = map[string]string{"discussion_topics": "discussions", "users": "people"}
	numberPattern  = regexp.MustCompile(`\d+(?:\.\d+)?`)
	sizePattern    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(b|bytes|kb|mb|gb)\b`)
)

// Collector reads structured content from the rendered page.
type Collector struct {
	page driven.PageProvider
	now  func() time.Time
}

// NewCollector creates a page content collector.
func NewCollector(page driven.PageProvider) *Collector {
	return &Collector{page: page, now: time.Now}
}

// Collect parses the page. An unreadable page yields empty content and
// one issue.
func (c *Collector) Collect(ctx context.Context, courseID string) (*domain.ExtractedContent, []domain.Issue) {
	markup, doc, issue := load(ctx, c.page, "dom/content")
	if issue != nil {
		return &domain.ExtractedContent{Course: domain.Course{ID: courseID}, ExtractedAt: c.now().UTC()}, []domain.Issue{*issue}
	}

	content := Extract(doc, markup, c.page.Location())
	if courseID != "" {
		content.Course.ID = courseID
	}
	content.ExtractedAt = c.now().UTC()
	return content, nil
}

// Extract builds course content from a parsed page: course metadata, the
// sections the page type carries, navigation links, and embedded media.
func Extract(doc *goquery.Document, markup, location string) *domain.ExtractedContent {
	content := &domain.ExtractedContent{
		Course: courseMetadata(doc),
	}
	content.Course.ID = classifier.CourseIDFromURL(location)

	switch PageType(location) {
	case PageAssignments:
		content.Assignments = assignments(doc)
	case PageDiscussions:
		content.Discussions = discussions(doc)
	case PageModules:
		content.Modules = modules(doc)
	case PageFiles:
		content.Files = files(doc, location)
	case PageSyllabus:
		content.Syllabus = textOf(doc.Find("#course_syllabus, .syllabus, .user_content").First())
	case PageAnnouncements:
		content.Announcements = announcements(doc)
	case PageGrades:
		content.Grades = grades(doc)
	default:
		if body := mainText(doc); body != "" {
			content.Pages = []domain.Page{{Title: pageTitle(doc), Body: body, URL: location}}
		}
	}

	content.NavigationLinks = navigation(doc, location)
	content.Embedded = miner.MineEmbedded(markup, location)
	return content
}

func courseMetadata(doc *goquery.Document) domain.Course {
	course := domain.Course{
		Name: firstText(doc, "h1, .course-title, .ic-app-course-menu .ic-app-course-menu__header"),
		Code: firstText(doc, ".course-info .course-code, .ellipsible"),
		Term: firstText(doc, ".course-info .term, .ic-app-course-menu__header-term"),
	}
	doc.Find(".instructor, .teacher").Each(func(_ int, s *goquery.Selection) {
		if name := collapse(s.Text()); name != "" {
			course.Instructors = append(course.Instructors, name)
		}
	})
	return course
}

func assignments(doc *goquery.Document) []domain.Assignment {
	var out []domain.Assignment
	visible(doc.Find(".assignment, .assignment-list-item"), func(s *goquery.Selection) {
		title := childText(s, ".assignment-title, .ig-title")
		if title == "" {
			return
		}
		out = append(out, domain.Assignment{
			Name:        title,
			Description: childText(s, ".assignment-description, .ig-details"),
			DueAt:       childText(s, ".assignment-due-date, .due"),
			Points:      parsePoints(childText(s, ".points, .points-possible")),
		})
	})
	return out
}

func discussions(doc *goquery.Document) []domain.Discussion {
	var out []domain.Discussion
	visible(doc.Find(".discussion-topic, .discussion"), func(s *goquery.Selection) {
		title := childText(s, ".discussion-title, h3, h2")
		if title == "" {
			return
		}
		out = append(out, domain.Discussion{
			Title:    title,
			Message:  textOf(s),
			Author:   childText(s, ".author"),
			PostedAt: childText(s, ".date, .created-at"),
		})
	})
	return out
}

func announcements(doc *goquery.Document) []domain.Announcement {
	var out []domain.Announcement
	visible(doc.Find(".discussion-topic, .announcement"), func(s *goquery.Selection) {
		title := childText(s, "h3, h2, .discussion-title")
		if title == "" {
			return
		}
		out = append(out, domain.Announcement{
			Title:    title,
			Message:  textOf(s),
			PostedAt: childText(s, ".date, .created-at"),
			Author:   childText(s, ".author"),
		})
	})
	return out
}

func modules(doc *goquery.Document) []domain.Module {
	var out []domain.Module
	visible(doc.Find(".context_module, .module"), func(s *goquery.Selection) {
		name := childText(s, ".module-title, h2, .ig-header-title")
		if name == "" {
			return
		}
		m := domain.Module{Name: name}
		visible(s.Find(".module-item, .ig-list li"), func(item *goquery.Selection) {
			m.Items = append(m.Items, domain.ModuleItem{
				Title:   childText(item, ".ig-title, .module-item-title"),
				Type:    childText(item, ".type, .ig-type"),
				Content: textOf(item),
			})
		})
		out = append(out, m)
	})
	return out
}

func files(doc *goquery.Document, location string) []domain.FileInfo {
	var out []domain.FileInfo
	visible(doc.Find(".ef-item-row, .file"), func(s *goquery.Selection) {
		name := childText(s, ".ef-name-col, .file-name")
		if name == "" {
			return
		}
		href := s.Find("a[href]").First().AttrOr("href", "")
		out = append(out, domain.FileInfo{
			Name:      name,
			URL:       classifier.ResolveURL(href, location),
			Size:      parseSize(childText(s, ".ef-size-col, .file-size")),
			UpdatedAt: childText(s, ".ef-date-created-col, .date-modified"),
		})
	})
	return out
}

func grades(doc *goquery.Document) []domain.Grade {
	var out []domain.Grade
	visible(doc.Find(".assignment_grade, .gradebook-row"), func(s *goquery.Selection) {
		name := childText(s, ".assignment-name, .gradebook-cell-assignment")
		if name == "" {
			return
		}
		out = append(out, domain.Grade{
			Assignment: name,
			Score:      childText(s, ".grade, .gradebook-cell-grade"),
			OutOf:      childText(s, ".points, .points-possible"),
		})
	})
	return out
}

// navigation keeps course links that lead to a content section.
func navigation(doc *goquery.Document, location string) []domain.Link {
	var out []domain.Link
	seen := make(map[string]struct{})
	doc.Find(navSelector).Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if !miner.UsableHref(href) {
			return
		}
		text := collapse(s.Text())
		if !isImportant(href, text) {
			return
		}
		u := classifier.ResolveURL(href, location)
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		out = append(out, domain.Link{Text: text, URL: u})
	})
	return out
}

// isImportant matches section links such as /courses/1/modules by path,
// and any link by its label.
func isImportant(href, text string) bool {
	if m := sectionPattern.FindStringSubmatch(href); m != nil {
		section := m[1]
		if m[2] != "" {
			section = PageSyllabus
		}
		if alias, ok := sectionAlias[section]; ok {
			section = alias
		}
		for _, page := range importantPages {
			if section == page {
				return true
			}
		}
	}
	text = strings.ToLower(text)
	for _, page := range importantPages {
		if strings.Contains(text, page) {
			return true
		}
	}
	return false
}

// mainText returns the text of the first main content region found.
func mainText(doc *goquery.Document) string {
	for _, sel := range mainContentSelectors {
		if text := textOf(doc.Find(sel).First()); text != "" {
			return text
		}
	}
	return ""
}

// visible calls fn for each element of sel that is not hidden.
func visible(sel *goquery.Selection, fn func(*goquery.Selection)) {
	sel.Each(func(_ int, s *goquery.Selection) {
		if !isHidden(s) {
			fn(s)
		}
	})
}

func textOf(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	markup, err := goquery.OuterHtml(s)
	if err != nil {
		return collapse(s.Text())
	}
	return htmlnorm.ToText(markup)
}

func firstText(doc *goquery.Document, selector string) string {
	return collapse(doc.Find(selector).First().Text())
}

func childText(s *goquery.Selection, selector string) string {
	return collapse(s.Find(selector).First().Text())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// parsePoints reads the first number of a points label such as "20 pts".
func parsePoints(label string) *float64 {
	m := numberPattern.FindString(label)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseSize reads a human size label such as "1.5 MB". Unknown is 0.
func parseSize(label string) int64 {
	m := sizePattern.FindStringSubmatch(label)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch strings.ToLower(m[2]) {
	case "kb":
		v *= 1 << 10
	case "mb":
		v *= 1 << 20
	case "gb":
		v *= 1 << 30
	}
	return int64(v)
}
