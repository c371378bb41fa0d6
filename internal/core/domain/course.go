package domain

import "time"

// Course holds identifying information for a course.
type Course struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Code        string   `json:"code,omitempty"`
	Term        string   `json:"term,omitempty"`
	StartAt     string   `json:"start_at,omitempty"`
	EndAt       string   `json:"end_at,omitempty"`
	Instructors []string `json:"instructors,omitempty"`
}

// Announcement is a course announcement.
type Announcement struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	PostedAt string `json:"posted_at,omitempty"`
	Author   string `json:"author,omitempty"`
}

// Attachment is a file attached to an assignment or post.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size,omitempty"`
}

// Assignment is a course assignment.
type Assignment struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	DueAt       string       `json:"due_at,omitempty"`
	Points      *float64     `json:"points,omitempty"`
	Submission  []string     `json:"submission_types,omitempty"`
	URL         string       `json:"url,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// DiscussionEntry is a reply in a discussion topic.
type DiscussionEntry struct {
	Author    string `json:"author"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Discussion is a discussion topic with its replies.
type Discussion struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Message  string            `json:"message"`
	Author   string            `json:"author,omitempty"`
	PostedAt string            `json:"posted_at,omitempty"`
	Entries  []DiscussionEntry `json:"entries,omitempty"`
}

// ModuleItem is one entry of a course module.
type ModuleItem struct {
	Title   string `json:"title"`
	Type    string `json:"type"`
	URL     string `json:"url,omitempty"`
	Content string `json:"content,omitempty"`
}

// Module is a course module.
type Module struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Items []ModuleItem `json:"items,omitempty"`
}

// Page is a wiki page.
type Page struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	URL       string `json:"url,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// FileInfo is an entry of the course file listing.
type FileInfo struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// Quiz is a course quiz.
type Quiz struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	DueAt          string   `json:"due_at,omitempty"`
	Points         *float64 `json:"points,omitempty"`
	QuestionCount  int      `json:"question_count,omitempty"`
	TimeLimitMins  int      `json:"time_limit,omitempty"`
	AllowedAttempt int      `json:"allowed_attempts,omitempty"`
}

// Person is a course member.
type Person struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// CalendarEvent is a course calendar entry.
type CalendarEvent struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	StartAt     string `json:"start_at,omitempty"`
	EndAt       string `json:"end_at,omitempty"`
	Location    string `json:"location,omitempty"`
}

// Grade is a row of the grades page.
type Grade struct {
	Assignment string `json:"assignment"`
	Score      string `json:"score"`
	OutOf      string `json:"out_of,omitempty"`
}

// Link is a labelled hyperlink.
type Link struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// EmbeddedContent collects media and links referenced inside pages.
type EmbeddedContent struct {
	Images []Link `json:"images,omitempty"`
	Videos []Link `json:"videos,omitempty"`
	Frames []Link `json:"iframes,omitempty"`
	Links  []Link `json:"links,omitempty"`
	PDFs   []Link `json:"pdfs,omitempty"`
}

// Len returns the total number of embedded references.
func (e EmbeddedContent) Len() int {
	return len(e.Images) + len(e.Videos) + len(e.Frames) + len(e.Links) + len(e.PDFs)
}

// ExtractedContent is the structured content of a course.
// It backs the text report and the upload records.
type ExtractedContent struct {
	Course          Course          `json:"course"`
	Syllabus        string          `json:"syllabus,omitempty"`
	Announcements   []Announcement  `json:"announcements,omitempty"`
	Assignments     []Assignment    `json:"assignments,omitempty"`
	Discussions     []Discussion    `json:"discussions,omitempty"`
	Modules         []Module        `json:"modules,omitempty"`
	Pages           []Page          `json:"pages,omitempty"`
	Files           []FileInfo      `json:"files,omitempty"`
	Quizzes         []Quiz          `json:"quizzes,omitempty"`
	People          []Person        `json:"people,omitempty"`
	Calendar        []CalendarEvent `json:"calendar,omitempty"`
	Grades          []Grade         `json:"grades,omitempty"`
	Embedded        EmbeddedContent `json:"embedded"`
	NavigationLinks []Link          `json:"navigation_links,omitempty"`
	ExtractedAt     time.Time       `json:"extracted_at"`
}

// IsEmpty reports whether no course content was collected.
func (c *ExtractedContent) IsEmpty() bool {
	return c.Syllabus == "" &&
		len(c.Announcements) == 0 &&
		len(c.Assignments) == 0 &&
		len(c.Discussions) == 0 &&
		len(c.Modules) == 0 &&
		len(c.Pages) == 0 &&
		len(c.Files) == 0 &&
		len(c.Quizzes) == 0 &&
		len(c.People) == 0 &&
		len(c.Calendar) == 0 &&
		len(c.Grades) == 0 &&
		c.Embedded.Len() == 0
}

// Merge fills empty sections of c from other. Non-empty sections of c win.
func (c *ExtractedContent) Merge(other *ExtractedContent) {
	if other == nil {
		return
	}
	if c.Course.Name == "" {
		c.Course.Name = other.Course.Name
	}
	if c.Course.Code == "" {
		c.Course.Code = other.Course.Code
	}
	if c.Course.Term == "" {
		c.Course.Term = other.Course.Term
	}
	if c.Syllabus == "" {
		c.Syllabus = other.Syllabus
	}
	if len(c.Announcements) == 0 {
		c.Announcements = other.Announcements
	}
	if len(c.Assignments) == 0 {
		c.Assignments = other.Assignments
	}
	if len(c.Discussions) == 0 {
		c.Discussions = other.Discussions
	}
	if len(c.Modules) == 0 {
		c.Modules = other.Modules
	}
	if len(c.Pages) == 0 {
		c.Pages = other.Pages
	}
	if len(c.Files) == 0 {
		c.Files = other.Files
	}
	if len(c.Quizzes) == 0 {
		c.Quizzes = other.Quizzes
	}
	if len(c.People) == 0 {
		c.People = other.People
	}
	if len(c.Calendar) == 0 {
		c.Calendar = other.Calendar
	}
	if len(c.Grades) == 0 {
		c.Grades = other.Grades
	}
	if c.Embedded.Len() == 0 {
		c.Embedded = other.Embedded
	}
	if len(c.NavigationLinks) == 0 {
		c.NavigationLinks = other.NavigationLinks
	}
}
