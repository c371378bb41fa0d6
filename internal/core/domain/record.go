package domain

// StudentIDPrefix prefixes the course id to form the relay student id.
const StudentIDPrefix = "student_course_"

// StudentIDFor returns the relay student id for a course.
func StudentIDFor(courseID string) string {
	return StudentIDPrefix + courseID
}

// TextRecord is a unit of normalised course text.
type TextRecord struct {
	// FileName is the logical name, e.g. "assignment_essay_1.txt".
	FileName string `json:"file_name"`

	// FileType labels the record kind (syllabus, assignment, page, ...).
	FileType string `json:"file_type"`

	// RawText is the plain-text body.
	RawText string `json:"raw_text"`
}

// SizeBytes returns the byte length of the text body.
func (r TextRecord) SizeBytes() int {
	return len(r.RawText)
}

// UploadRecord is the relay wire shape of a TextRecord.
type UploadRecord struct {
	ID            string `json:"id,omitempty"`
	StudentID     string `json:"student_id"`
	CourseID      string `json:"course_id"`
	FileName      string `json:"file_name"`
	FileType      string `json:"file_type"`
	RawText       string `json:"raw_text"`
	FileSizeBytes int    `json:"file_size_bytes"`
}

// NewUploadRecord wraps a TextRecord for the given course.
func NewUploadRecord(courseID string, rec TextRecord) UploadRecord {
	return UploadRecord{
		StudentID:     StudentIDFor(courseID),
		CourseID:      courseID,
		FileName:      rec.FileName,
		FileType:      rec.FileType,
		RawText:       rec.RawText,
		FileSizeBytes: rec.SizeBytes(),
	}
}

// IngestStatus is the per-record outcome of a batch upload.
type IngestStatus struct {
	ID       string `json:"id,omitempty"`
	FileName string `json:"file_name"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// IngestStatus values.
const (
	IngestSuccess = "success"
	IngestError   = "error"
)
