package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursekit/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		s := New()
		assert.Equal(t, DefaultChunkSize, s.chunkSize)
		assert.Equal(t, DefaultChunkOverlap, s.overlap)
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		s := New(WithChunkSize(100), WithOverlap(150))
		assert.Less(t, s.overlap, s.chunkSize)
	})

	t.Run("zero values ignored", func(t *testing.T) {
		s := New(WithChunkSize(0), WithOverlap(-1))
		assert.Equal(t, DefaultChunkSize, s.chunkSize)
		assert.Equal(t, DefaultChunkOverlap, s.overlap)
	})
}

func TestForLimit(t *testing.T) {
	assert.Nil(t, ForLimit(0))

	s := ForLimit(500)
	require.NotNil(t, s)
	assert.Equal(t, 500, s.chunkSize)
	assert.Equal(t, 50, s.overlap)
}

func TestSplit_SmallRecordUnchanged(t *testing.T) {
	rec := domain.TextRecord{FileName: "page_intro.txt", FileType: "page", RawText: "short"}

	assert.Equal(t, []domain.TextRecord{rec}, New(WithChunkSize(100)).Split(rec))

	var nilSplitter *Splitter
	assert.Equal(t, []domain.TextRecord{rec}, nilSplitter.Split(rec))
}

func TestSplit_PrefersParagraphBoundary(t *testing.T) {
	first := strings.Repeat("a", 70)
	second := strings.Repeat("b", 70)
	rec := domain.TextRecord{FileName: "syllabus.txt", FileType: "syllabus", RawText: first + "\n\n" + second}

	parts := New(WithChunkSize(100), WithOverlap(0)).Split(rec)

	require.Len(t, parts, 2)
	assert.Equal(t, "syllabus_part1.txt", parts[0].FileName)
	assert.Equal(t, first, parts[0].RawText)
	assert.Equal(t, "syllabus_part2.txt", parts[1].FileName)
	assert.Equal(t, second, parts[1].RawText)
	assert.Equal(t, "syllabus", parts[1].FileType)
}

func TestSplit_PartsRespectLimitAndCoverText(t *testing.T) {
	words := make([]string, 400)
	for i := range words {
		words[i] = "word"
	}
	text := strings.Join(words, " ")
	rec := domain.TextRecord{FileName: "page_long.txt", FileType: "page", RawText: text}

	parts := New(WithChunkSize(120), WithOverlap(20)).Split(rec)

	require.Greater(t, len(parts), 1)
	for _, p := range parts {
		assert.LessOrEqual(t, len([]rune(p.RawText)), 120)
		assert.False(t, strings.HasPrefix(p.RawText, "ord"), "parts start on a word")
	}
	assert.True(t, strings.HasPrefix(text, parts[0].RawText))
	assert.True(t, strings.HasSuffix(text, parts[len(parts)-1].RawText))
}

func TestSplit_MultibyteText(t *testing.T) {
	rec := domain.TextRecord{FileName: "x.txt", RawText: strings.Repeat("é", 250)}

	parts := New(WithChunkSize(100), WithOverlap(10)).Split(rec)

	require.Len(t, parts, 3)
	for _, p := range parts {
		assert.LessOrEqual(t, len([]rune(p.RawText)), 100)
	}
}

func TestSplitAll(t *testing.T) {
	recs := []domain.TextRecord{
		{FileName: "a.txt", RawText: "tiny"},
		{FileName: "b.txt", RawText: strings.Repeat("x ", 100)},
	}

	out := New(WithChunkSize(50), WithOverlap(0)).SplitAll(recs)

	assert.Equal(t, "a.txt", out[0].FileName)
	assert.Equal(t, "b_part1.txt", out[1].FileName)
	assert.Greater(t, len(out), 2)

	var nilSplitter *Splitter
	assert.Equal(t, recs, nilSplitter.SplitAll(recs))
}
