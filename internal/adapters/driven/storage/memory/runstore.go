package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu      sync.RWMutex
	runs    map[string]domain.Run
	items   map[string][]domain.ContentItem
	records map[string][]domain.TextRecord
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs:    make(map[string]domain.Run),
		items:   make(map[string][]domain.ContentItem),
		records: make(map[string][]domain.TextRecord),
	}
}

// SaveRun stores or replaces a run.
func (s *RunStore) SaveRun(_ context.Context, result *domain.ExtractionResult) error {
	if result == nil || result.RunID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[result.RunID] = domain.RunFromResult(result)
	s.items[result.RunID] = append([]domain.ContentItem(nil), result.Items...)
	s.records[result.RunID] = append([]domain.TextRecord(nil), result.Records...)
	return nil
}

// GetRun retrieves a run by id.
func (s *RunStore) GetRun(_ context.Context, id string) (*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &run, nil
}

// ListRuns returns runs, newest first.
func (s *RunStore) ListRuns(_ context.Context) ([]domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := make([]domain.Run, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	return runs, nil
}

// Items returns the items of a run.
func (s *RunStore) Items(_ context.Context, runID string) ([]domain.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.runs[runID]; !ok {
		return nil, domain.ErrNotFound
	}
	return append([]domain.ContentItem(nil), s.items[runID]...), nil
}

// Records returns the text records of a run.
func (s *RunStore) Records(_ context.Context, runID string) ([]domain.TextRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.runs[runID]; !ok {
		return nil, domain.ErrNotFound
	}
	return append([]domain.TextRecord(nil), s.records[runID]...), nil
}

// DeleteRun removes a run.
func (s *RunStore) DeleteRun(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.runs, id)
	delete(s.items, id)
	delete(s.records, id)
	return nil
}
