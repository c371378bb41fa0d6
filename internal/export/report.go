package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/coursekit/internal/core/domain"
)

const (
	na      = "N/A"
	unknown = "Unknown"
)

var (
	heavyRule   = strings.Repeat("=", 80)
	sectionRule = strings.Repeat("=", 40)
	itemRule    = strings.Repeat("-", 30)
)

// tableOfContents lists every section in report order.
var tableOfContents = []string{
	"Course Information", "Syllabus", "Announcements", "Assignments",
	"Discussions", "Modules", "Pages", "Files", "Quizzes", "People",
	"Calendar Events", "Grades", "Embedded Content",
}

// GenerateReport renders content as a plain-text report. The output
// depends only on content.
func GenerateReport(content *domain.ExtractedContent) string {
	if content == nil {
		content = &domain.ExtractedContent{}
	}
	r := &report{}

	r.line(heavyRule)
	r.line("CANVAS COURSE CONTENT EXPORT")
	r.linef("Course: %s", or(content.Course.Name, unknown))
	r.linef("Course Code: %s", or(content.Course.Code, unknown))
	r.linef("Term: %s", or(content.Course.Term, unknown))
	r.linef("Extracted: %s", timestamp(content.ExtractedAt))
	r.line(heavyRule)
	r.line("")

	r.line("TABLE OF CONTENTS")
	r.line(strings.Repeat("-", 40))
	for i, title := range tableOfContents {
		r.linef("%d. %s", i+1, title)
	}
	r.line("")

	r.section(1)
	r.linef("Name: %s", or(content.Course.Name, na))
	r.linef("Code: %s", or(content.Course.Code, na))
	r.linef("Term: %s", or(content.Course.Term, na))
	r.linef("Instructors: %s", or(strings.Join(content.Course.Instructors, ", "), na))
	r.linef("Course ID: %s", or(content.Course.ID, na))
	r.line("")

	if content.Syllabus != "" {
		r.section(2)
		r.line(content.Syllabus)
		r.line("")
	}

	if len(content.Announcements) > 0 {
		r.section(3)
		for i, a := range content.Announcements {
			r.linef("%d. %s", i+1, or(a.Title, "Untitled"))
			r.linef("Posted: %s", or(a.PostedAt, unknown))
			r.linef("Author: %s", or(a.Author, unknown))
			r.line(itemRule)
			r.line(a.Message)
			r.line("")
		}
	}

	if len(content.Assignments) > 0 {
		r.section(4)
		for i, a := range content.Assignments {
			r.linef("%d. %s", i+1, or(a.Name, "Untitled"))
			r.linef("Due: %s", or(a.DueAt, "No due date"))
			r.linef("Points: %s", points(a.Points))
			r.line(itemRule)
			r.line(or(a.Description, "No description available"))
			for _, att := range a.Attachments {
				r.linef("Attachment: %s (%s)", att.Name, att.URL)
			}
			r.line("")
		}
	}

	if len(content.Discussions) > 0 {
		r.section(5)
		for i, d := range content.Discussions {
			r.linef("%d. %s", i+1, or(d.Title, "Untitled"))
			r.linef("Author: %s", or(d.Author, unknown))
			r.linef("Posted: %s", or(d.PostedAt, unknown))
			r.linef("Replies: %d", len(d.Entries))
			r.line(itemRule)
			r.line(d.Message)
			if len(d.Entries) > 0 {
				r.line("")
				r.line("Replies:")
				for j, e := range d.Entries {
					r.linef("  %d. %s (%s)", j+1, or(e.Author, unknown), or(e.CreatedAt, "Unknown date"))
					r.linef("     %s", e.Message)
				}
			}
			r.line("")
		}
	}

	if len(content.Modules) > 0 {
		r.section(6)
		for i, m := range content.Modules {
			r.linef("%d. %s", i+1, or(m.Name, "Untitled"))
			r.linef("Items: %d", len(m.Items))
			r.line(itemRule)
			for j, item := range m.Items {
				r.linef("  %d. %s (%s)", j+1, or(item.Title, "Untitled"), or(item.Type, "Unknown type"))
				if item.Content != "" {
					r.linef("     %s", item.Content)
				}
				if item.URL != "" {
					r.linef("     URL: %s", item.URL)
				}
			}
			r.line("")
		}
	}

	if len(content.Pages) > 0 {
		r.section(7)
		for i, p := range content.Pages {
			r.linef("%d. %s", i+1, or(p.Title, "Untitled"))
			r.linef("Updated: %s", or(p.UpdatedAt, unknown))
			r.line(itemRule)
			r.line(p.Body)
			r.line("")
		}
	}

	if len(content.Files) > 0 {
		r.section(8)
		for i, f := range content.Files {
			r.linef("%d. %s", i+1, or(f.Name, "Untitled"))
			size := unknown
			if f.Size > 0 {
				size = FormatFileSize(f.Size)
			}
			r.linef("Size: %s", size)
			r.linef("Type: %s", or(f.ContentType, unknown))
			r.linef("URL: %s", or(f.URL, na))
			r.linef("Modified: %s", or(f.UpdatedAt, unknown))
			r.line("")
		}
	}

	if len(content.Quizzes) > 0 {
		r.section(9)
		for i, q := range content.Quizzes {
			r.linef("%d. %s", i+1, or(q.Title, "Untitled"))
			r.linef("Points: %s", points(q.Points))
			r.linef("Questions: %s", count(q.QuestionCount))
			limit := "No limit"
			if q.TimeLimitMins > 0 {
				limit = fmt.Sprintf("%d minutes", q.TimeLimitMins)
			}
			r.linef("Time Limit: %s", limit)
			r.linef("Due: %s", or(q.DueAt, "No due date"))
			r.line(itemRule)
			r.line(q.Description)
			r.line("")
		}
	}

	if len(content.People) > 0 {
		r.section(10)
		for i, p := range content.People {
			r.linef("%d. %s", i+1, or(p.Name, unknown))
			r.linef("Email: %s", or(p.Email, na))
			r.linef("Role: %s", or(p.Role, na))
			r.line("")
		}
	}

	if len(content.Calendar) > 0 {
		r.section(11)
		for i, e := range content.Calendar {
			r.linef("%d. %s", i+1, or(e.Title, "Untitled"))
			r.linef("Start: %s", or(e.StartAt, na))
			r.linef("End: %s", or(e.EndAt, na))
			r.linef("Location: %s", or(e.Location, na))
			r.line(itemRule)
			r.line(e.Description)
			r.line("")
		}
	}

	if len(content.Grades) > 0 {
		r.section(12)
		for i, g := range content.Grades {
			r.linef("%d. %s", i+1, or(g.Assignment, unknown))
			r.linef("Grade: %s", or(g.Score, na))
			r.linef("Points: %s", or(g.OutOf, na))
			r.line("")
		}
	}

	if content.Embedded.Len() > 0 {
		r.section(13)
		r.links("Images", content.Embedded.Images)
		r.links("Videos", content.Embedded.Videos)
		r.links("Embedded Frames", content.Embedded.Frames)
		r.links("External Links", content.Embedded.Links)
		r.links("PDF Documents", content.Embedded.PDFs)
	}

	r.line("")
	r.line(heavyRule)
	r.line("END OF EXPORT")
	r.linef("Total Announcements: %d", len(content.Announcements))
	r.linef("Total Assignments: %d", len(content.Assignments))
	r.linef("Total Discussions: %d", len(content.Discussions))
	r.linef("Total Modules: %d", len(content.Modules))
	r.linef("Total Pages: %d", len(content.Pages))
	r.linef("Total Files: %d", len(content.Files))
	r.linef("Total Quizzes: %d", len(content.Quizzes))
	r.linef("Total People: %d", len(content.People))
	r.line(heavyRule)

	return r.b.String()
}

type report struct {
	b strings.Builder
}

func (r *report) line(s string) {
	r.b.WriteString(s)
	r.b.WriteByte('\n')
}

func (r *report) linef(format string, args ...any) {
	fmt.Fprintf(&r.b, format, args...)
	r.b.WriteByte('\n')
}

// section writes the numbered heading of a table of contents entry.
func (r *report) section(n int) {
	r.linef("%d. %s", n, strings.ToUpper(tableOfContents[n-1]))
	r.line(sectionRule)
}

func (r *report) links(title string, links []domain.Link) {
	if len(links) == 0 {
		return
	}
	r.line(title + ":")
	for i, l := range links {
		r.linef("  %d. %s - %s", i+1, or(l.Text, "Untitled"), l.URL)
	}
	r.line("")
}

func or(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func points(p *float64) string {
	if p == nil {
		return na
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func count(n int) string {
	if n <= 0 {
		return na
	}
	return strconv.Itoa(n)
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return unknown
	}
	return t.UTC().Format(time.RFC3339)
}

// FormatFileSize renders a byte count with binary units, e.g. "1.5 MB".
func FormatFileSize(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	units := []string{"Bytes", "KB", "MB", "GB", "TB"}
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	return strconv.FormatFloat(roundTo(v, 2), 'f', -1, 64) + " " + units[i]
}

func roundTo(v float64, places int) float64 {
	p, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return p
}
