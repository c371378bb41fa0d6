package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordSink = (*RecordStore)(nil)

// RecordStore is an in-memory record sink.
type RecordStore struct {
	mu      sync.RWMutex
	records []domain.UploadRecord
}

// NewRecordStore creates a new in-memory record sink.
func NewRecordStore() *RecordStore {
	return &RecordStore{}
}

// Ingest stores one record.
func (s *RecordStore) Ingest(_ context.Context, rec domain.UploadRecord) (string, error) {
	if err := validate(rec); err != nil {
		return "", err
	}
	rec.ID = uuid.New().String()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return rec.ID, nil
}

// IngestBatch stores records one by one, reporting each outcome.
func (s *RecordStore) IngestBatch(ctx context.Context, recs []domain.UploadRecord) ([]domain.IngestStatus, error) {
	out := make([]domain.IngestStatus, 0, len(recs))
	for _, rec := range recs {
		id, err := s.Ingest(ctx, rec)
		if err != nil {
			out = append(out, domain.IngestStatus{FileName: rec.FileName, Status: domain.IngestError, Error: err.Error()})
			continue
		}
		out = append(out, domain.IngestStatus{ID: id, FileName: rec.FileName, Status: domain.IngestSuccess})
	}
	return out, nil
}

// Content lists records for a student and course in ingest order.
func (s *RecordStore) Content(_ context.Context, studentID, courseID string) ([]domain.UploadRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.UploadRecord
	for _, rec := range s.records {
		if rec.StudentID == studentID && rec.CourseID == courseID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Ping always succeeds.
func (s *RecordStore) Ping(context.Context) error {
	return nil
}

func validate(rec domain.UploadRecord) error {
	if strings.TrimSpace(rec.StudentID) == "" || strings.TrimSpace(rec.CourseID) == "" ||
		strings.TrimSpace(rec.FileName) == "" {
		return domain.ErrInvalidInput
	}
	return nil
}
