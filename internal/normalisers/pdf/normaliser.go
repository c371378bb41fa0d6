// Package pdf extracts text from downloaded PDF files.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
	"github.com/custodia-labs/coursekit/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ErrNoText indicates the PDF holds no extractable text (e.g. a scan).
var ErrNoText = errors.New("pdf: no extractable text")

// DefaultMaxPages bounds extraction for very long documents.
const DefaultMaxPages = 200

// Normaliser handles PDF documents.
type Normaliser struct {
	maxPages int
}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{maxPages: DefaultMaxPages}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the plain text of every page.
func (n *Normaliser) Normalise(_ context.Context, item domain.ContentItem, content []byte) (*domain.TextRecord, error) {
	if !IsPDF(content) {
		return nil, domain.ErrInvalidInput
	}

	doc, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= doc.NumPage(); i++ {
		if n.maxPages > 0 && i > n.maxPages {
			break
		}
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return nil, ErrNoText
	}

	rec := normalisers.RecordFor(item, text)
	rec.FileType = string(domain.ContentPDF)
	return rec, nil
}

// IsPDF reports whether content starts with the PDF signature.
func IsPDF(content []byte) bool {
	return bytes.HasPrefix(content, []byte("%PDF"))
}
