package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursekit/internal/core/domain"
)

func sampleResult(id string, started time.Time) *domain.ExtractionResult {
	return &domain.ExtractionResult{
		RunID:     id,
		Success:   true,
		Course:    domain.Course{ID: "101", Name: "Biology"},
		Items:     []domain.ContentItem{{URL: "https://x/files/1", Name: "a.pdf", Source: domain.SourceAPI}},
		Records:   []domain.TextRecord{{FileName: "syllabus.txt", FileType: "syllabus", RawText: "Labs"}},
		Report:    "REPORT",
		StartedAt: started,
	}
}

func TestRunStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewRunStore()

	require.NoError(t, s.SaveRun(ctx, sampleResult("r1", time.Now())))

	run, err := s.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "101", run.CourseID)
	assert.Equal(t, 1, run.ItemCount)
	assert.Equal(t, "REPORT", run.Report)

	items, err := s.Items(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	records, err := s.Records(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "syllabus.txt", records[0].FileName)
}

func TestRunStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := NewRunStore()

	_, err := s.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Items(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.DeleteRun(ctx, "missing"), domain.ErrNotFound)
	assert.ErrorIs(t, s.SaveRun(ctx, &domain.ExtractionResult{}), domain.ErrInvalidInput)
}

func TestRunStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewRunStore()
	base := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveRun(ctx, sampleResult("old", base)))
	require.NoError(t, s.SaveRun(ctx, sampleResult("new", base.Add(time.Hour))))

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)

	require.NoError(t, s.DeleteRun(ctx, "new"))
	runs, err = s.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRecordStore(t *testing.T) {
	ctx := context.Background()
	s := NewRecordStore()
	good := domain.NewUploadRecord("101", domain.TextRecord{FileName: "page_a.txt", FileType: "page", RawText: "a"})
	bad := domain.UploadRecord{FileName: "orphan.txt"}

	statuses, err := s.IngestBatch(ctx, []domain.UploadRecord{good, bad})
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, domain.IngestSuccess, statuses[0].Status)
	assert.NotEmpty(t, statuses[0].ID)
	assert.Equal(t, domain.IngestError, statuses[1].Status)

	got, err := s.Content(ctx, "student_course_101", "101")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, statuses[0].ID, got[0].ID)

	assert.NoError(t, s.Ping(ctx))
}
