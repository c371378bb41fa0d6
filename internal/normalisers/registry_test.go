package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursekit/internal/core/domain"
)

type stubNormaliser struct {
	mimes    []string
	priority int
	label    string
}

func (s *stubNormaliser) SupportedMIMETypes() []string { return s.mimes }
func (s *stubNormaliser) Priority() int                { return s.priority }
func (s *stubNormaliser) Normalise(_ context.Context, item domain.ContentItem, _ []byte) (*domain.TextRecord, error) {
	rec := RecordFor(item, s.label)
	return rec, nil
}

func TestRegistry_PicksHighestPriority(t *testing.T) {
	r := NewRegistry(
		&stubNormaliser{mimes: []string{"text/plain"}, priority: 5, label: "fallback"},
		&stubNormaliser{mimes: []string{"text/plain", "text/html"}, priority: 50, label: "specific"},
	)

	rec, err := r.Normalise(context.Background(), domain.ContentItem{Name: "a.txt"}, "Text/Plain; charset=utf-8", nil)

	require.NoError(t, err)
	assert.Equal(t, "specific", rec.RawText)
}

func TestRegistry_Unsupported(t *testing.T) {
	r := NewRegistry()

	_, err := r.Normalise(context.Background(), domain.ContentItem{}, "application/x-foo", nil)

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRegistry_SupportedMIMETypes(t *testing.T) {
	r := NewRegistry(
		&stubNormaliser{mimes: []string{"text/plain", "text/csv"}},
		&stubNormaliser{mimes: []string{"text/plain"}},
	)

	assert.Equal(t, []string{"text/csv", "text/plain"}, r.SupportedMIMETypes())
}

func TestRecordFor(t *testing.T) {
	rec := RecordFor(domain.ContentItem{Name: "Lecture 3 Slides.pdf", ContentType: domain.ContentPDF}, "body")

	assert.Equal(t, "file_lecture_3_slides.txt", rec.FileName)
	assert.Equal(t, "pdf", rec.FileType)
	assert.Equal(t, "body", rec.RawText)
}
