package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursekit/internal/core/domain"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()

	assert.Contains(t, mimeTypes, "text/plain")
	assert.Contains(t, mimeTypes, "text/csv")
	assert.Contains(t, mimeTypes, "application/json")
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 5, New().Priority())
}

func TestNormalise_Success(t *testing.T) {
	item := domain.ContentItem{Name: "lab_notes.txt", ContentType: domain.ContentText}

	rec, err := New().Normalise(context.Background(), item, []byte("line one\r\nline two\r\n"))

	require.NoError(t, err)
	assert.Equal(t, "file_lab_notes.txt", rec.FileName)
	assert.Equal(t, "text", rec.FileType)
	assert.Equal(t, "line one\nline two", rec.RawText)
}

func TestNormalise_StripsByteOrderMark(t *testing.T) {
	item := domain.ContentItem{Name: "grades.csv", ContentType: domain.ContentText}

	rec, err := New().Normalise(context.Background(), item, []byte("\xef\xbb\xbfname,score\n"))

	require.NoError(t, err)
	assert.Equal(t, "name,score", rec.RawText)
}

func TestNormalise_KeepsCodeType(t *testing.T) {
	item := domain.ContentItem{Name: "solver.py", ContentType: domain.ContentCode}

	rec, err := New().Normalise(context.Background(), item, []byte("print(1)"))

	require.NoError(t, err)
	assert.Equal(t, "code", rec.FileType)
}

func TestNormalise_InvalidInput(t *testing.T) {
	n := New()
	ctx := context.Background()

	_, err := n.Normalise(ctx, domain.ContentItem{}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = n.Normalise(ctx, domain.ContentItem{}, []byte{0xff, 0xfe, 0xfd})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
