package driving

import (
	"context"

	"github.com/custodia-labs/coursekit/internal/core/domain"
)

// ExtractOptions tunes a single extraction run.
type ExtractOptions struct {
	// CourseID is the course to extract. Empty forces the DOM fallback.
	CourseID string

	// SkipContent skips the structured content collection.
	SkipContent bool
}

// ExtractionService runs the course extraction pipeline.
type ExtractionService interface {
	// Extract runs every enabled source, aggregates, and builds the report.
	// Total failure is a result with Success=false, not an error.
	Extract(ctx context.Context, opts ExtractOptions) (*domain.ExtractionResult, error)
}

// RunService reads stored runs.
type RunService interface {
	List(ctx context.Context) ([]domain.Run, error)
	Get(ctx context.Context, id string) (*domain.Run, error)
	Items(ctx context.Context, runID string, source domain.Source) ([]domain.ContentItem, error)
	Records(ctx context.Context, runID string) ([]domain.TextRecord, error)
	Delete(ctx context.Context, id string) error
}

// UploadService pushes stored records to the relay.
type UploadService interface {
	// Upload sends the records of a run as one batch.
	Upload(ctx context.Context, runID string) (*UploadSummary, error)

	// Ping checks relay connectivity.
	Ping(ctx context.Context) error
}

// UploadSummary is the outcome of a batch upload.
type UploadSummary struct {
	Processed int
	Failed    int
	Results   []domain.IngestStatus
}
