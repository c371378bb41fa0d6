package classifier

import (
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/coursekit/internal/core/domain"
)

// extensionTypes maps lower-case file extensions to their category.
var extensionTypes = map[string]domain.ContentType{
	"pdf": domain.ContentPDF,

	"doc":  domain.ContentDoc,
	"docx": domain.ContentDoc,
	"odt":  domain.ContentDoc,
	"rtf":  domain.ContentDoc,

	"ppt":  domain.ContentSlide,
	"pptx": domain.ContentSlide,
	"odp":  domain.ContentSlide,
	"key":  domain.ContentSlide,

	"xls":  domain.ContentSheet,
	"xlsx": domain.ContentSheet,
	"ods":  domain.ContentSheet,
	"csv":  domain.ContentSheet,

	"txt": domain.ContentText,
	"md":  domain.ContentText,

	"jpg":  domain.ContentImage,
	"jpeg": domain.ContentImage,
	"png":  domain.ContentImage,
	"gif":  domain.ContentImage,
	"bmp":  domain.ContentImage,
	"svg":  domain.ContentImage,
	"tiff": domain.ContentImage,
	"webp": domain.ContentImage,

	"mp4": domain.ContentMedia,
	"mp3": domain.ContentMedia,
	"wav": domain.ContentMedia,
	"avi": domain.ContentMedia,
	"mov": domain.ContentMedia,
	"wmv": domain.ContentMedia,
	"m4a": domain.ContentMedia,

	"zip": domain.ContentArchive,
	"rar": domain.ContentArchive,
	"tar": domain.ContentArchive,
	"gz":  domain.ContentArchive,
	"7z":  domain.ContentArchive,

	"py":    domain.ContentCode,
	"java":  domain.ContentCode,
	"cpp":   domain.ContentCode,
	"c":     domain.ContentCode,
	"h":     domain.ContentCode,
	"js":    domain.ContentCode,
	"json":  domain.ContentCode,
	"xml":   domain.ContentCode,
	"sql":   domain.ContentCode,
	"ipynb": domain.ContentCode,
}

// mimeTypes maps listing-API MIME types to categories when the URL has no extension.
var mimeTypes = map[string]domain.ContentType{
	"application/pdf":    domain.ContentPDF,
	"application/msword": domain.ContentDoc,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   domain.ContentDoc,
	"application/vnd.ms-powerpoint":                                             domain.ContentSlide,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": domain.ContentSlide,
	"application/vnd.ms-excel":                                                  domain.ContentSheet,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         domain.ContentSheet,
	"text/csv":                     domain.ContentSheet,
	"text/plain":                   domain.ContentText,
	"text/markdown":                domain.ContentText,
	"application/zip":              domain.ContentArchive,
	"application/x-zip-compressed": domain.ContentArchive,
	"application/gzip":             domain.ContentArchive,
	"application/json":             domain.ContentCode,
}

// extensionPattern matches a known extension followed by the end of the
// string or a URL delimiter.
var extensionPattern = buildExtensionPattern()

func buildExtensionPattern() *regexp.Regexp {
	exts := Extensions()
	// Longest first so "docx" wins over "doc".
	sort.SliceStable(exts, func(i, j int) bool { return len(exts[i]) > len(exts[j]) })
	return regexp.MustCompile(`\.(` + strings.Join(exts, "|") + `)(?:$|[?#&/])`)
}

// Extensions returns the known file extensions in lexical order.
func Extensions() []string {
	exts := make([]string, 0, len(extensionTypes))
	for ext := range extensionTypes {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// TypeOfExtension returns the category of an extension, with or without a dot.
func TypeOfExtension(ext string) domain.ContentType {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ct, ok := extensionTypes[ext]; ok {
		return ct
	}
	return domain.ContentUnknown
}

// ContentTypeFromMIME maps a MIME type to a category.
func ContentTypeFromMIME(mime string) domain.ContentType {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if ct, ok := mimeTypes[mime]; ok {
		return ct
	}
	switch {
	case strings.HasPrefix(mime, "image/"):
		return domain.ContentImage
	case strings.HasPrefix(mime, "video/"), strings.HasPrefix(mime, "audio/"):
		return domain.ContentMedia
	case strings.HasPrefix(mime, "text/x-"):
		return domain.ContentCode
	}
	return domain.ContentUnknown
}
