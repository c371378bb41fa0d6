package mcp

import (
	"context"
	"strings"

	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driving"
)

var _ driving.RunService = (*stubRuns)(nil)

type stubRuns struct {
	runs    []domain.Run
	items   []domain.ContentItem
	records []domain.TextRecord
	err     error
}

func (m *stubRuns) List(_ context.Context) ([]domain.Run, error) {
	return m.runs, m.err
}

func (m *stubRuns) Get(_ context.Context, id string) (*domain.Run, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.runs {
		if m.runs[i].ID == id {
			return &m.runs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *stubRuns) Items(_ context.Context, _ string, source domain.Source) ([]domain.ContentItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.ContentItem
	for _, item := range m.items {
		if source == "" || strings.EqualFold(string(item.Source), string(source)) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *stubRuns) Records(_ context.Context, _ string) ([]domain.TextRecord, error) {
	return m.records, m.err
}

func (m *stubRuns) Delete(_ context.Context, _ string) error {
	return m.err
}
