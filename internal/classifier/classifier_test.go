package classifier

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/coursekit/internal/core/domain"
)

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name     string
		href     string
		base     string
		expected string
	}{
		{"relative path", "files/1/a.pdf", "https://x.test/courses/1/", "https://x.test/courses/1/files/1/a.pdf"},
		{"root relative", "/files/2", "https://x.test/courses/1/pages/x", "https://x.test/files/2"},
		{"absolute unchanged", "https://cdn.test/a.pdf", "https://x.test/", "https://cdn.test/a.pdf"},
		{"empty href", "", "https://x.test/", ""},
		{"malformed href", "http://[::1", "https://x.test/", "http://[::1"},
		{"malformed base", "a.pdf", "%%", "a.pdf"},
		{"no base", "a.pdf", "", "a.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveURL(tt.href, tt.base))
		})
	}
}

func TestIsDownloadableFile(t *testing.T) {
	tests := []struct {
		url      string
		expected bool
	}{
		{"https://x.test/courses/1/files/7", true},
		{"https://x.test/api/v1/files/7", true},
		{"https://x.test/a?verifier=abc", true},
		{"https://cdn.test/notes.PDF", true},
		{"https://cdn.test/slides.pptx?download=1", true},
		{"https://cdn.test/data.tar.gz", true},
		{"https://cdn.test/page.html", false},
		{"https://example.zip/", false},
		{"https://x.test/courses/1/pages/intro", false},
		{"", false},
		{"%%%", false},
		{"://", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDownloadableFile(tt.url))
		})
	}
}

func TestContentTypeOf(t *testing.T) {
	tests := []struct {
		url      string
		expected domain.ContentType
	}{
		{"https://x.test/files/7/download?verifier=abc.pdf", domain.ContentPDF},
		{"https://x.test/files/7/preview=pdf", domain.ContentPDF},
		{"https://cdn.test/essay.docx", domain.ContentDoc},
		{"https://cdn.test/essay.doc", domain.ContentDoc},
		{"https://cdn.test/deck.pptx", domain.ContentSlide},
		{"https://cdn.test/grades.xlsx", domain.ContentSheet},
		{"https://cdn.test/readme.txt", domain.ContentText},
		{"https://cdn.test/pic.jpeg#frag", domain.ContentImage},
		{"https://cdn.test/lecture.mp4", domain.ContentMedia},
		{"https://cdn.test/bundle.zip", domain.ContentArchive},
		{"https://cdn.test/main.py", domain.ContentCode},
		{"https://x.test/files/7", domain.ContentUnknown},
		{"", domain.ContentUnknown},
		{"not a url at all", domain.ContentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContentTypeOf(tt.url))
		})
	}
}

func TestContentTypeFromMIME(t *testing.T) {
	assert.Equal(t, domain.ContentPDF, ContentTypeFromMIME("application/pdf; charset=binary"))
	assert.Equal(t, domain.ContentImage, ContentTypeFromMIME("image/png"))
	assert.Equal(t, domain.ContentMedia, ContentTypeFromMIME("audio/mpeg"))
	assert.Equal(t, domain.ContentUnknown, ContentTypeFromMIME(""))
}

func TestExtractFilenameFromURL(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://cdn.test/dir/My%20Notes.pdf?x=1", "My Notes.pdf"},
		{"https://cdn.test/dir/report.pdf/", "report.pdf"},
		{"https://x.test/files/7/download?verifier=abc", "download"},
		{"https://cdn.test/", "download"},
		{"", "download"},
		{"http://[::1", "download"},
		{"https://cdn.test/bad%zzname", "download"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractFilenameFromURL(tt.url))
		})
	}
}

func TestResolveThenExtract_RecoversBaseName(t *testing.T) {
	base := "https://x.test/courses/1/pages/week-1"
	for _, href := range []string{"handouts/Lab%201.pdf", "../files/syllabus.docx", "/uploads/deck.pptx"} {
		t.Run(href, func(t *testing.T) {
			name := ExtractFilenameFromURL(ResolveURL(href, base))
			expected := ExtractFilenameFromURL("https://any.test/" + href)
			assert.Equal(t, expected, name)
			assert.NotEqual(t, DefaultFilename, name)
		})
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		kind     Kind
		expected string
	}{
		{"empty", "", KindFilename, "untitled"},
		{"whitespace only", "   ", KindFilename, "untitled"},
		{"illegal chars", `a<b>c:d"e/f\g|h?i*j.pdf`, KindFilename, "a_b_c_d_e_f_g_h_i_j.pdf"},
		{"collapses whitespace", "Week  1\tnotes.pdf", KindFilename, "Week_1_notes.pdf"},
		{"collapses underscores", "a___b", KindFilename, "a_b"},
		{"trims underscores", "__a__", KindFilename, "a"},
		{"only underscores", "___", KindFilename, "untitled"},
		{
			"long sentence reduced to five words",
			"Please read the following chapters before our next class meeting on Friday",
			KindFilename,
			"Please_read_the_following_chapters",
		},
		{"control chars", "a\x00b\x1fc", KindFilename, "a_b_c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sanitize(tt.input, tt.kind))
		})
	}
}

func TestSanitize_Bounds(t *testing.T) {
	long := strings.Repeat("x", 500)

	assert.Equal(t, MaxFilenameLen, utf8.RuneCountInString(Sanitize(long, KindFilename)))
	assert.Equal(t, MaxPathComponentLen, utf8.RuneCountInString(Sanitize(long, KindPathComponent)))

	multibyte := strings.Repeat("é", 200)
	out := Sanitize(multibyte, KindPathComponent)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, MaxPathComponentLen, utf8.RuneCountInString(out))
}

func TestSanitize_Properties(t *testing.T) {
	inputs := []string{
		"", " ", "simple.pdf", "a/b/c", `<<>>`, "Lecture 1: Intro?.pptx",
		strings.Repeat("ab ", 60), strings.Repeat("_x", 80) + "_",
		"tab\tsep\nnew line", "ünïcødé näme.docx", "\x7f\x00", "a" + strings.Repeat(" ", 60) + "b",
		strings.Repeat("y", 49) + "_" + strings.Repeat("z", 60),
	}

	for _, in := range inputs {
		for _, kind := range []Kind{KindFilename, KindPathComponent} {
			once := Sanitize(in, kind)

			assert.NotEmpty(t, once)
			assert.False(t, strings.ContainsAny(once, illegalChars), "illegal char in %q", once)
			assert.LessOrEqual(t, utf8.RuneCountInString(once), maxLen(kind))
			assert.Equal(t, once, Sanitize(once, kind), "not idempotent for %q", in)
		}
	}
}

func TestSanitizeFolderPath(t *testing.T) {
	assert.Equal(t, "assignments/Essay_1", SanitizeFolderPath("assignments/Essay 1"))
	assert.Equal(t, "a/b", SanitizeFolderPath("/a//b/"))
	assert.Equal(t, "untitled", SanitizeFolderPath(""))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "week_1_overview", Slug("Week 1: Overview"))
}

func TestSameHost(t *testing.T) {
	assert.True(t, SameHost("https://X.test/a", "https://x.test/b"))
	assert.False(t, SameHost("https://x.test/a", "https://y.test/a"))
	assert.False(t, SameHost("/relative", "https://x.test"))
}

func TestCourseIDFromURL(t *testing.T) {
	tests := map[string]string{
		"https://x.test/courses/1234/assignments/5": "1234",
		"https://x.test/courses/77":                 "77",
		"4821":                                      "4821",
		"https://x.test/profile":                    "",
		"":                                          "",
	}
	for in, want := range tests {
		assert.Equal(t, want, CourseIDFromURL(in), in)
	}
}

func TestSelectors(t *testing.T) {
	all := Selectors(PageGroups()...)
	assert.NotEmpty(t, all)
	assert.Len(t, Selectors(GroupEmbeds), 3)
	assert.Empty(t, Selectors(Group("missing")))

	for _, s := range all {
		assert.NotEmpty(t, s.Query)
		assert.NotEmpty(t, s.Attr)
	}
}

func TestExtensions(t *testing.T) {
	exts := Extensions()
	assert.GreaterOrEqual(t, len(exts), 30)
	assert.Equal(t, domain.ContentPDF, TypeOfExtension(".PDF"))
	assert.Equal(t, domain.ContentUnknown, TypeOfExtension("exe"))
}
