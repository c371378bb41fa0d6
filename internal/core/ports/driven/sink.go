package driven

import (
	"context"

	"github.com/custodia-labs/coursekit/internal/core/domain"
)

// RecordSink receives text records for storage and retrieval.
type RecordSink interface {
	// Ingest stores one record and returns its id.
	Ingest(ctx context.Context, rec domain.UploadRecord) (string, error)

	// IngestBatch stores many records. Failures are reported per record.
	IngestBatch(ctx context.Context, recs []domain.UploadRecord) ([]domain.IngestStatus, error)

	// Content lists stored records for a student and course.
	Content(ctx context.Context, studentID, courseID string) ([]domain.UploadRecord, error)

	// Ping checks that the sink and its backing store are reachable.
	Ping(ctx context.Context) error
}

// RunStore persists finished extraction runs.
type RunStore interface {
	// SaveRun stores a run together with its items and records.
	SaveRun(ctx context.Context, result *domain.ExtractionResult) error

	// GetRun retrieves a run summary by id.
	GetRun(ctx context.Context, id string) (*domain.Run, error)

	// ListRuns returns runs, newest first.
	ListRuns(ctx context.Context) ([]domain.Run, error)

	// Items returns the items of a run, in aggregation order.
	Items(ctx context.Context, runID string) ([]domain.ContentItem, error)

	// Records returns the text records of a run.
	Records(ctx context.Context, runID string) ([]domain.TextRecord, error)

	// DeleteRun removes a run and everything attached to it.
	DeleteRun(ctx context.Context, id string) error
}
