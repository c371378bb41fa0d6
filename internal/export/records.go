package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/coursekit/internal/classifier"
	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/postprocessors/chunker"
)

// Record file types.
const (
	TypeSyllabus      = "syllabus"
	TypeAnnouncement  = "announcement"
	TypeAssignment    = "assignment"
	TypeDiscussion    = "discussion"
	TypeModule        = "module"
	TypePage          = "page"
	TypeQuiz          = "quiz"
	TypeCalendar      = "calendar_event"
	TypeFileReference = "file_reference"
)

// TextRecords flattens content into one record per text unit, followed by a
// file reference record for each item. Units without text are skipped.
// Record names are unique within the result.
func TextRecords(content *domain.ExtractedContent, items []domain.ContentItem) []domain.TextRecord {
	rs := &recordSet{seen: make(map[string]int)}

	if content != nil {
		if strings.TrimSpace(content.Syllabus) != "" {
			rs.add(TypeSyllabus, "", "Syllabus\n\n"+content.Syllabus)
		}
		for _, a := range content.Announcements {
			text := fmt.Sprintf("Announcement: %s\nPosted: %s\nAuthor: %s\n\n%s",
				a.Title, or(a.PostedAt, unknown), or(a.Author, unknown), a.Message)
			rs.add(TypeAnnouncement, a.Title, text)
		}
		for _, a := range content.Assignments {
			rs.add(TypeAssignment, a.Name, assignmentText(a))
		}
		for _, d := range content.Discussions {
			rs.add(TypeDiscussion, d.Title, discussionText(d))
		}
		for _, m := range content.Modules {
			if len(m.Items) == 0 {
				continue
			}
			rs.add(TypeModule, m.Name, moduleText(m))
		}
		for _, p := range content.Pages {
			if strings.TrimSpace(p.Body) == "" {
				continue
			}
			rs.add(TypePage, p.Title, fmt.Sprintf("Page: %s\n\n%s", p.Title, p.Body))
		}
		for _, q := range content.Quizzes {
			text := fmt.Sprintf("Quiz: %s\nPoints: %s\nDue: %s\n\n%s",
				q.Title, points(q.Points), or(q.DueAt, "No due date"), q.Description)
			rs.add(TypeQuiz, q.Title, text)
		}
		for _, e := range content.Calendar {
			text := fmt.Sprintf("Event: %s\nStart: %s\nEnd: %s\nLocation: %s\n\n%s",
				e.Title, or(e.StartAt, na), or(e.EndAt, na), or(e.Location, na), e.Description)
			rs.add(TypeCalendar, e.Title, text)
		}
	}

	for _, item := range items {
		text := fmt.Sprintf("File Reference: %s\nURL: %s\nType: %s\nFound on: %s",
			item.Name, item.URL, item.ContentType, or(item.PageTitle, string(item.Source)))
		rs.addNamed("file_ref_", TypeFileReference, strings.TrimSuffix(item.Name, filepath.Ext(item.Name)), text)
	}

	return rs.records
}

// Split applies the record size limit. A limit <= 0 returns records as is.
func Split(records []domain.TextRecord, limit int) []domain.TextRecord {
	return chunker.ForLimit(limit).SplitAll(records)
}

// UploadRecords wraps records in the relay wire shape for a course.
func UploadRecords(courseID string, records []domain.TextRecord) []domain.UploadRecord {
	out := make([]domain.UploadRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, domain.NewUploadRecord(courseID, rec))
	}
	return out
}

func assignmentText(a domain.Assignment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Assignment: %s\n", a.Name)
	fmt.Fprintf(&b, "Due: %s\n", or(a.DueAt, "No due date"))
	fmt.Fprintf(&b, "Points: %s\n", points(a.Points))
	if len(a.Submission) > 0 {
		fmt.Fprintf(&b, "Submission: %s\n", strings.Join(a.Submission, ", "))
	}
	b.WriteString("\n")
	b.WriteString(or(a.Description, "No description available"))
	for _, att := range a.Attachments {
		fmt.Fprintf(&b, "\nAttachment: %s (%s)", att.Name, att.URL)
	}
	return b.String()
}

func discussionText(d domain.Discussion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Discussion: %s\n", d.Title)
	if d.Author != "" {
		fmt.Fprintf(&b, "Author: %s\n", d.Author)
	}
	b.WriteString("\n")
	b.WriteString(d.Message)
	if len(d.Entries) > 0 {
		b.WriteString("\n\nReplies:")
		for _, e := range d.Entries {
			fmt.Fprintf(&b, "\n- %s: %s", or(e.Author, unknown), e.Message)
		}
	}
	return b.String()
}

func moduleText(m domain.Module) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Module: %s\n", m.Name)
	for _, item := range m.Items {
		fmt.Fprintf(&b, "\n- %s", item.Title)
		if item.Type != "" {
			fmt.Fprintf(&b, " (%s)", item.Type)
		}
		if item.Content != "" {
			fmt.Fprintf(&b, "\n  %s", strings.ReplaceAll(item.Content, "\n", "\n  "))
		}
	}
	return b.String()
}

type recordSet struct {
	records []domain.TextRecord
	seen    map[string]int
}

func (rs *recordSet) add(fileType, title, text string) {
	rs.addNamed(fileType+"_", fileType, title, text)
}

// addNamed appends a record named <prefix><slug>.txt. Repeated names get a
// numeric suffix.
func (rs *recordSet) addNamed(prefix, fileType, title, text string) {
	name := strings.TrimSuffix(prefix, "_")
	if title != "" {
		name = prefix + classifier.Slug(title)
	}
	rs.seen[name]++
	if n := rs.seen[name]; n > 1 {
		name = fmt.Sprintf("%s_%d", name, n)
	}
	rs.records = append(rs.records, domain.TextRecord{
		FileName: name + ".txt",
		FileType: fileType,
		RawText:  strings.TrimSpace(text),
	})
}
