package canvas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexString decodes ids sent either as JSON strings or numbers.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("flexstring: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

// String returns the id as a string.
func (f FlexString) String() string { return string(f) }

// FlexFloat decodes numbers that may arrive quoted.
type FlexFloat struct {
	Value float64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = FlexFloat{}
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("flexfloat: %w", err)
	}
	*f = FlexFloat{Value: v, Valid: true}
	return nil
}

// Ptr returns the value or nil when absent.
func (f FlexFloat) Ptr() *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

type displayUser struct {
	DisplayName string `json:"display_name"`
}

type apiFile struct {
	ID          FlexString `json:"id"`
	Filename    string     `json:"filename"`
	DisplayName string     `json:"display_name"`
	URL         string     `json:"url"`
	Size        int64      `json:"size"`
	ContentType string     `json:"content-type"`
	FolderID    FlexString `json:"folder_id"`
	UpdatedAt   string     `json:"updated_at"`
}

// validate reports whether the file can be downloaded.
func (f apiFile) validate() bool {
	return f.URL != "" && f.Filename != "" && f.Size > 0
}

func (f apiFile) name() string {
	if f.Filename != "" {
		return f.Filename
	}
	return f.DisplayName
}

type apiFolder struct {
	ID       FlexString `json:"id"`
	Name     string     `json:"name"`
	FullName string     `json:"full_name"`
	ParentID FlexString `json:"parent_folder_id"`
}

func (f apiFolder) validate() bool {
	return f.ID != "" && f.Name != ""
}

type apiAttachment struct {
	ID          FlexString `json:"id"`
	Filename    string     `json:"filename"`
	DisplayName string     `json:"display_name"`
	URL         string     `json:"url"`
	Size        int64      `json:"size"`
	ContentType string     `json:"content-type"`
}

func (a apiAttachment) validate() bool {
	return a.URL != "" && a.Filename != ""
}

type apiAssignment struct {
	ID              FlexString      `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	DueAt           string          `json:"due_at"`
	PointsPossible  FlexFloat       `json:"points_possible"`
	SubmissionTypes []string        `json:"submission_types"`
	HTMLURL         string          `json:"html_url"`
	Attachments     []apiAttachment `json:"attachments"`
}

func (a apiAssignment) validate() bool {
	return a.ID != "" && a.Name != ""
}

type apiModuleItem struct {
	ID          FlexString `json:"id"`
	Title       string     `json:"title"`
	Type        string     `json:"type"`
	URL         string     `json:"url"`
	HTMLURL     string     `json:"html_url"`
	ExternalURL string     `json:"external_url"`
	PageURL     string     `json:"page_url"`
}

func (i apiModuleItem) validate() bool {
	return i.Type != ""
}

type apiModule struct {
	ID    FlexString      `json:"id"`
	Name  string          `json:"name"`
	Items []apiModuleItem `json:"items"`
}

func (m apiModule) validate() bool {
	return m.ID != ""
}

type apiDiscussion struct {
	ID             FlexString      `json:"id"`
	Title          string          `json:"title"`
	Message        string          `json:"message"`
	PostedAt       string          `json:"posted_at"`
	Author         displayUser     `json:"author"`
	IsAnnouncement bool            `json:"is_announcement"`
	Attachments    []apiAttachment `json:"attachments"`
}

func (d apiDiscussion) validate() bool {
	return d.ID != ""
}

type apiEntry struct {
	ID        FlexString  `json:"id"`
	Message   string      `json:"message"`
	CreatedAt string      `json:"created_at"`
	User      displayUser `json:"user"`
	UserName  string      `json:"user_name"`
}

func (e apiEntry) author() string {
	if e.User.DisplayName != "" {
		return e.User.DisplayName
	}
	if e.UserName != "" {
		return e.UserName
	}
	return "Unknown"
}

type apiPage struct {
	PageID    FlexString `json:"page_id"`
	URL       string     `json:"url"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	HTMLURL   string     `json:"html_url"`
	UpdatedAt string     `json:"updated_at"`
}

func (p apiPage) validate() bool {
	return p.URL != ""
}

type apiTerm struct {
	Name string `json:"name"`
}

type apiCourse struct {
	ID           FlexString `json:"id"`
	Name         string     `json:"name"`
	CourseCode   string     `json:"course_code"`
	StartAt      string     `json:"start_at"`
	EndAt        string     `json:"end_at"`
	SyllabusBody string     `json:"syllabus_body"`
	Term         *apiTerm   `json:"term"`
}

type apiQuiz struct {
	ID              FlexString `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	DueAt           string     `json:"due_at"`
	PointsPossible  FlexFloat  `json:"points_possible"`
	QuestionCount   int        `json:"question_count"`
	TimeLimit       int        `json:"time_limit"`
	AllowedAttempts int        `json:"allowed_attempts"`
}

func (q apiQuiz) validate() bool {
	return q.ID != "" && q.Title != ""
}

type apiUser struct {
	ID    FlexString `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
}

func (u apiUser) validate() bool {
	return u.ID != "" && u.Name != ""
}

type apiEnrollment struct {
	UserID FlexString `json:"user_id"`
	Type   string     `json:"type"`
	User   apiUser    `json:"user"`
}

type apiCalendarEvent struct {
	ID           FlexString `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	StartAt      string     `json:"start_at"`
	EndAt        string     `json:"end_at"`
	LocationName string     `json:"location_name"`
}

func (e apiCalendarEvent) validate() bool {
	return e.Title != ""
}

// keepValid drops records that fail validation.
func keepValid[T any](in []T, valid func(T) bool) []T {
	out := in[:0]
	for _, v := range in {
		if valid(v) {
			out = append(out, v)
		}
	}
	return out
}
