package domain

import "time"

// NoContentMessage is reported when a run finds nothing.
const NoContentMessage = "No content found"

// IssueKind classifies a failed fetch.
type IssueKind string

// Issue kinds.
const (
	IssueTransient    IssueKind = "transient"
	IssueAccessDenied IssueKind = "access_denied"
	IssueNotFound     IssueKind = "not_found"
	IssueParse        IssueKind = "parse"
	IssueRateLimited  IssueKind = "rate_limited"
)

// Issue records a non-fatal failure during a run.
type Issue struct {
	Source  string    `json:"source"`
	Kind    IssueKind `json:"kind"`
	Message string    `json:"message"`
}

// Stats summarises an aggregated item set.
type Stats struct {
	Total    int                 `json:"total"`
	ByType   map[ContentType]int `json:"by_type"`
	BySource map[Source]int      `json:"by_source"`
}

// ExtractionResult is the outcome of one extraction run.
// Total failure is reported through Success, never as an error.
type ExtractionResult struct {
	RunID     string            `json:"run_id"`
	Success   bool              `json:"success"`
	Message   string            `json:"message,omitempty"`
	Course    Course            `json:"course"`
	Items     []ContentItem     `json:"items"`
	Stats     Stats             `json:"stats"`
	Content   *ExtractedContent `json:"content,omitempty"`
	Report    string            `json:"-"`
	Records   []TextRecord      `json:"records,omitempty"`
	Issues    []Issue           `json:"issues,omitempty"`
	StartedAt time.Time         `json:"started_at"`
	EndedAt   time.Time         `json:"ended_at"`
}

// Run is the stored summary of an extraction run.
type Run struct {
	ID         string    `json:"id"`
	CourseID   string    `json:"course_id"`
	CourseName string    `json:"course_name"`
	Success    bool      `json:"success"`
	Message    string    `json:"message,omitempty"`
	ItemCount  int       `json:"item_count"`
	Report     string    `json:"-"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}

// RunFromResult summarises a result for storage.
func RunFromResult(r *ExtractionResult) Run {
	return Run{
		ID:         r.RunID,
		CourseID:   r.Course.ID,
		CourseName: r.Course.Name,
		Success:    r.Success,
		Message:    r.Message,
		ItemCount:  len(r.Items),
		Report:     r.Report,
		StartedAt:  r.StartedAt,
		EndedAt:    r.EndedAt,
	}
}
