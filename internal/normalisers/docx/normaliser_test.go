package docx

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
	assert.Len(t, mimeTypes, 1)
	assert.Contains(t, mimeTypes[0], "wordprocessingml")
}

func TestNormalise_RejectsNonZip(t *testing.T) {
	_, err := New().Normalise(context.Background(), domain.ContentItem{}, []byte("%PDF-1.4"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseDocumentXML(t *testing.T) {
	xmlContent := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Essay </w:t></w:r><w:r><w:t>prompt</w:t></w:r></w:p>
    <w:p><w:r><w:t>Due Friday</w:t></w:r></w:p>
  </w:body>
</w:document>`

	assert.Equal(t, "Essay prompt\nDue Friday", parseDocumentXML(xmlContent))
	assert.Equal(t, "", parseDocumentXML("not xml"))
}

func TestParseDocumentXML_TablesAndTabs(t *testing.T) {
	xmlContent := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Week 1</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Intro</w:t><w:tab/><w:t>Reading</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
    <w:p></w:p>
    <w:p><w:r><w:t>Line one</w:t><w:br/><w:t>Line two</w:t></w:r></w:p>
  </w:body>
</w:document>`

	assert.Equal(t, "Week 1\nIntro\tReading\nLine one\nLine two", parseDocumentXML(xmlContent))
}
