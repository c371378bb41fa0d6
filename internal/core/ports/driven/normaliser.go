package driven

import (
	"context"

	"github.com/custodia-labs/coursekit/internal/core/domain"
)

// Normaliser turns the bytes of a downloaded file into a text record.
// Each normaliser handles specific MIME types (e.g., PDF, DOCX).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise extracts plain text from content.
	Normalise(ctx context.Context, item domain.ContentItem, content []byte) (*domain.TextRecord, error)
}

// NormaliserRegistry selects the appropriate normaliser for a file.
type NormaliserRegistry interface {
	// Normalise extracts text using the best matching normaliser.
	Normalise(ctx context.Context, item domain.ContentItem, mimeType string, content []byte) (*domain.TextRecord, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string
}
