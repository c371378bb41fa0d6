package plaintext

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
	"github.com/custodia-labs/coursekit/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text and source files.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
		"text/x-markdown",
		"text/csv",
		"text/x-python",
		"text/x-java",
		"text/x-c",
		"text/x-c++",
		"text/x-sql",
		"text/javascript",
		"application/json",
		"application/xml",
		"application/x-ipynb+json",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5
}

// Normalise returns the file content as text. Invalid UTF-8 is rejected.
func (n *Normaliser) Normalise(_ context.Context, item domain.ContentItem, content []byte) (*domain.TextRecord, error) {
	if content == nil || !utf8.Valid(content) {
		return nil, domain.ErrInvalidInput
	}

	text := strings.TrimPrefix(string(content), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	rec := normalisers.RecordFor(item, strings.TrimSpace(text))
	if rec.FileType == "" || rec.FileType == string(domain.ContentUnknown) {
		rec.FileType = string(domain.ContentText)
	}
	return rec, nil
}
