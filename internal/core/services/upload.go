package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
	"github.com/custodia-labs/coursekit/internal/core/ports/driving"
	"github.com/custodia-labs/coursekit/internal/export"
	"github.com/custodia-labs/coursekit/internal/logger"
)

// Ensure UploadService implements the interface.
var _ driving.UploadService = (*UploadService)(nil)

// UploadService pushes the records of stored runs to a record sink.
type UploadService struct {
	store driven.RunStore
	sink  driven.RecordSink
}

// NewUploadService creates an upload service.
func NewUploadService(store driven.RunStore, sink driven.RecordSink) *UploadService {
	return &UploadService{store: store, sink: sink}
}

// Upload sends every record of a run in one batch.
func (s *UploadService) Upload(ctx context.Context, runID string) (*driving.UploadSummary, error) {
	if s.sink == nil {
		return nil, domain.ErrRelayUnavailable
	}

	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	records, err := s.store.Records(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("get records: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("run %s: %w", runID, domain.ErrNoContent)
	}

	batch := export.UploadRecords(run.CourseID, records)
	logger.Info("upload: sending %d records for course %s", len(batch), run.CourseID)

	statuses, err := s.sink.IngestBatch(ctx, batch)
	if err != nil && len(statuses) == 0 {
		return nil, fmt.Errorf("ingest batch: %w", err)
	}

	summary := &driving.UploadSummary{Results: statuses}
	var failures []error
	for _, st := range statuses {
		if st.Status == domain.IngestSuccess {
			summary.Processed++
			continue
		}
		summary.Failed++
		failures = append(failures, fmt.Errorf("%s: %s", st.FileName, st.Error))
	}
	if len(failures) > 0 {
		logger.Warn("upload: %v", errors.Join(failures...))
	}
	return summary, nil
}

// Ping checks the sink.
func (s *UploadService) Ping(ctx context.Context) error {
	if s.sink == nil {
		return domain.ErrRelayUnavailable
	}
	return s.sink.Ping(ctx)
}
