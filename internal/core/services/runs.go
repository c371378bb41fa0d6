package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
	"github.com/custodia-labs/coursekit/internal/core/ports/driving"
)

// Ensure RunService implements the interface.
var _ driving.RunService = (*RunService)(nil)

// RunService reads stored extraction runs.
type RunService struct {
	store driven.RunStore
}

// NewRunService creates a run service over a store.
func NewRunService(store driven.RunStore) *RunService {
	return &RunService{store: store}
}

// List returns stored runs, newest first.
func (s *RunService) List(ctx context.Context) ([]domain.Run, error) {
	return s.store.ListRuns(ctx)
}

// Get returns a run by id.
func (s *RunService) Get(ctx context.Context, id string) (*domain.Run, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}
	return s.store.GetRun(ctx, id)
}

// Items returns the items of a run. A non-empty source filters the list.
func (s *RunService) Items(ctx context.Context, runID string, source domain.Source) ([]domain.ContentItem, error) {
	if source != "" && !source.IsValid() {
		return nil, fmt.Errorf("%w: unknown source %q", domain.ErrInvalidInput, source)
	}
	items, err := s.store.Items(ctx, runID)
	if err != nil {
		return nil, err
	}
	if source == "" {
		return items, nil
	}

	filtered := make([]domain.ContentItem, 0, len(items))
	for _, item := range items {
		if item.Source == source {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// Records returns the text records of a run.
func (s *RunService) Records(ctx context.Context, runID string) ([]domain.TextRecord, error) {
	return s.store.Records(ctx, runID)
}

// Delete removes a run.
func (s *RunService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteRun(ctx, id)
}
