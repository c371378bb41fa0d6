package normalisers

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/coursekit/internal/classifier"
	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches files to the highest-priority normaliser for their MIME type.
type Registry struct {
	mu          sync.RWMutex
	normalisers []driven.Normaliser
}

// NewRegistry creates a registry holding the given normalisers.
func NewRegistry(ns ...driven.Normaliser) *Registry {
	r := &Registry{}
	for _, n := range ns {
		r.Register(n)
	}
	return r
}

// Register adds a normaliser to the registry.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalisers = append(r.normalisers, n)
	sort.SliceStable(r.normalisers, func(i, j int) bool {
		return r.normalisers[i].Priority() > r.normalisers[j].Priority()
	})
}

// SupportedMIMETypes returns all MIME types that can be normalised.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, n := range r.normalisers {
		for _, m := range n.SupportedMIMETypes() {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}

// Normalise extracts text using the best matching normaliser.
func (r *Registry) Normalise(
	ctx context.Context, item domain.ContentItem, mimeType string, content []byte,
) (*domain.TextRecord, error) {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	r.mu.RLock()
	var match driven.Normaliser
	for _, n := range r.normalisers {
		if supports(n, mimeType) {
			match = n
			break
		}
	}
	r.mu.RUnlock()

	if match == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, mimeType)
	}
	return match.Normalise(ctx, item, content)
}

func supports(n driven.Normaliser, mimeType string) bool {
	for _, m := range n.SupportedMIMETypes() {
		if m == mimeType {
			return true
		}
	}
	return false
}

// RecordFor builds the text record of a downloaded file.
func RecordFor(item domain.ContentItem, text string) *domain.TextRecord {
	base := strings.TrimSuffix(item.Name, filepath.Ext(item.Name))
	return &domain.TextRecord{
		FileName: "file_" + classifier.Slug(base) + ".txt",
		FileType: string(item.ContentType),
		RawText:  text,
	}
}
