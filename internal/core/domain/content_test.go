package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestContentType_IsValid tests valid and invalid content types
func TestContentType_IsValid(t *testing.T) {
	for _, ct := range AllContentTypes() {
		assert.True(t, ct.IsValid(), ct.String())
	}
	assert.False(t, ContentType("").IsValid())
	assert.False(t, ContentType("video").IsValid())
}

func TestContentType_MIME(t *testing.T) {
	tests := []struct {
		ct       ContentType
		expected string
	}{
		{ContentPDF, "application/pdf"},
		{ContentText, "text/plain"},
		{ContentArchive, "application/zip"},
		{ContentUnknown, "application/octet-stream"},
		{ContentType("bogus"), "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.ct.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.ct.MIME())
		})
	}
}

func TestContentType_Description(t *testing.T) {
	assert.Equal(t, "PDF document", ContentPDF.Description())
	assert.Equal(t, "Unknown", ContentType("bogus").Description())
}

func TestSource_IsValid(t *testing.T) {
	assert.Len(t, AllSources(), 14)
	for _, s := range AllSources() {
		assert.True(t, s.IsValid(), s.String())
	}
	assert.False(t, Source("dom").IsValid())
}

func TestContentItem_Key(t *testing.T) {
	a := ContentItem{URL: "https://x.test/files/1", Name: "a.pdf"}
	b := ContentItem{URL: "https://x.test/files/1", Name: "b.pdf"}

	assert.Equal(t, "https://x.test/files/1_a.pdf", a.Key())
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestNewUploadRecord(t *testing.T) {
	rec := TextRecord{FileName: "syllabus.txt", FileType: "syllabus", RawText: "héllo"}

	up := NewUploadRecord("42", rec)

	assert.Equal(t, "student_course_42", up.StudentID)
	assert.Equal(t, "42", up.CourseID)
	assert.Equal(t, "syllabus.txt", up.FileName)
	assert.Equal(t, 6, up.FileSizeBytes, "size is the byte length, not rune count")
}

func TestExtractedContent_IsEmpty(t *testing.T) {
	c := &ExtractedContent{Course: Course{Name: "Biology"}}
	assert.True(t, c.IsEmpty())

	c.Grades = []Grade{{Assignment: "Lab 1", Score: "9"}}
	assert.False(t, c.IsEmpty())
}

func TestExtractedContent_Merge(t *testing.T) {
	c := &ExtractedContent{Syllabus: "mine"}
	other := &ExtractedContent{
		Course:   Course{Name: "Chemistry"},
		Syllabus: "theirs",
		Pages:    []Page{{Title: "Intro"}},
	}

	c.Merge(other)
	c.Merge(nil)

	assert.Equal(t, "mine", c.Syllabus)
	assert.Equal(t, "Chemistry", c.Course.Name)
	assert.Len(t, c.Pages, 1)
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.True(t, s.Extract.IncludeFiles)
	assert.Equal(t, 3, s.Download.Window)
	assert.Equal(t, DefaultNestedDelay, s.Canvas.NestedDelay)
	assert.False(t, s.Canvas.IsConfigured())

	s.Canvas.BaseURL = "https://x.test"
	s.Canvas.Cookie = "session=1"
	assert.True(t, s.Canvas.IsConfigured())
}
