// Package chunker splits long text records into overlapping parts.
//
// Relay rows land in a warehouse column of bounded size, so records above
// the configured limit are cut on paragraph, then sentence, then word
// boundaries. Each part carries a little of the previous part's tail.
package chunker

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/custodia-labs/coursekit/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per part.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Splitter cuts text records into parts of at most chunkSize runes.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the part size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between parts in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// ForLimit returns a splitter for a record size limit, with a tenth of
// the limit as overlap. A limit <= 0 returns nil.
func ForLimit(limit int) *Splitter {
	if limit <= 0 {
		return nil
	}
	return New(WithChunkSize(limit), WithOverlap(limit/10))
}

// Split returns rec unchanged when it fits, otherwise its parts named
// <name>_partN.txt. A nil splitter never splits.
func (s *Splitter) Split(rec domain.TextRecord) []domain.TextRecord {
	runes := []rune(rec.RawText)
	if s == nil || len(runes) <= s.chunkSize {
		return []domain.TextRecord{rec}
	}

	base := strings.TrimSuffix(rec.FileName, ".txt")
	var parts []domain.TextRecord

	for start := 0; start < len(runes); {
		end := start + s.chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else if cut := boundary(runes[start:end]); cut > 0 {
			end = start + cut
		}

		text := strings.TrimSpace(string(runes[start:end]))
		if text != "" {
			parts = append(parts, domain.TextRecord{
				FileName: fmt.Sprintf("%s_part%d.txt", base, len(parts)+1),
				FileType: rec.FileType,
				RawText:  text,
			})
		}
		if end == len(runes) {
			break
		}

		next := end - s.overlap
		for next > start && next < end && !unicode.IsSpace(runes[next-1]) {
			next++
		}
		if next <= start {
			next = end
		}
		start = next
	}

	return parts
}

// SplitAll applies Split to every record, keeping order.
func (s *Splitter) SplitAll(recs []domain.TextRecord) []domain.TextRecord {
	if s == nil {
		return recs
	}
	out := make([]domain.TextRecord, 0, len(recs))
	for _, rec := range recs {
		out = append(out, s.Split(rec)...)
	}
	return out
}

// boundary returns the cut offset inside window: after the last paragraph
// break, sentence end, or space in its second half. Zero means hard cut.
func boundary(window []rune) int {
	half := len(window) / 2
	text := string(window)

	for _, sep := range []string{"\n\n", ". ", ".\n", "? ", "! ", "\n"} {
		if i := strings.LastIndex(text, sep); i >= 0 {
			cut := len([]rune(text[:i+len(sep)]))
			if cut > half {
				return cut
			}
		}
	}
	for i := len(window) - 1; i > half; i-- {
		if unicode.IsSpace(window[i]) {
			return i + 1
		}
	}
	return 0
}
