package classifier

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/custodia-labs/coursekit/internal/core/domain"
)

// DefaultFilename is returned when no filename can be derived from a URL.
const DefaultFilename = "download"

// filePathMarkers identify platform file-hosting paths.
var filePathMarkers = []string{"/files/", "/api/v1/files/"}

var coursePathPattern = regexp.MustCompile(`/courses/(\d+)`)

// ResolveURL resolves href against base. Malformed input returns href unchanged.
func ResolveURL(href, base string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() || base == "" {
		return href
	}
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() {
		return href
	}
	return b.ResolveReference(ref).String()
}

// IsDownloadableFile reports whether u points at a downloadable file:
// a platform file path, a signed download, or a known extension.
func IsDownloadableFile(u string) bool {
	if u == "" {
		return false
	}
	lower := strings.ToLower(u)
	for _, marker := range filePathMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	if strings.Contains(lower, "verifier=") {
		return true
	}
	for _, part := range urlParts(lower) {
		if extensionPattern.MatchString(part) {
			return true
		}
	}
	return false
}

// ContentTypeOf returns the category of the file u points at.
// Query hints win over extensions; unknown URLs map to ContentUnknown.
func ContentTypeOf(u string) domain.ContentType {
	if u == "" {
		return domain.ContentUnknown
	}
	lower := strings.ToLower(u)
	if strings.Contains(lower, "preview=pdf") ||
		strings.Contains(lower, "content-type=application%2fpdf") ||
		strings.Contains(lower, "content_type=application/pdf") {
		return domain.ContentPDF
	}

	// Path extension first, then query (e.g. ?verifier=x.pdf).
	for _, part := range urlParts(lower) {
		matches := extensionPattern.FindAllStringSubmatch(part, -1)
		if len(matches) == 0 {
			continue
		}
		return TypeOfExtension(matches[len(matches)-1][1])
	}
	return domain.ContentUnknown
}

// ExtractFilenameFromURL returns the decoded last path segment of u,
// or DefaultFilename when there is none.
func ExtractFilenameFromURL(u string) string {
	if strings.TrimSpace(u) == "" {
		return DefaultFilename
	}
	parsed, err := url.Parse(strings.TrimSpace(u))
	if err != nil {
		return DefaultFilename
	}
	segments := strings.Split(parsed.EscapedPath(), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] == "" {
			continue
		}
		name, err := url.PathUnescape(segments[i])
		if err != nil || strings.TrimSpace(name) == "" {
			return DefaultFilename
		}
		return name
	}
	return DefaultFilename
}

// SameHost reports whether a and b share a host. Unparseable input is never equal.
func SameHost(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil || ua.Host == "" {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return strings.EqualFold(ua.Host, ub.Host)
}

// CourseIDFromURL returns the numeric course id in a /courses/<id> path.
// A bare numeric argument is returned as is.
func CourseIDFromURL(u string) string {
	u = strings.TrimSpace(u)
	if u != "" && strings.Trim(u, "0123456789") == "" {
		return u
	}
	if m := coursePathPattern.FindStringSubmatch(u); m != nil {
		return m[1]
	}
	return ""
}

// urlParts splits u into path and query for extension matching.
// An unparseable URL is matched as a whole.
func urlParts(u string) []string {
	parsed, err := url.Parse(u)
	if err != nil {
		return []string{u}
	}
	parts := make([]string, 0, 2)
	if parsed.Path != "" {
		parts = append(parts, parsed.Path)
	} else if parsed.Opaque != "" {
		parts = append(parts, parsed.Opaque)
	}
	if parsed.RawQuery != "" {
		parts = append(parts, parsed.RawQuery)
	}
	return parts
}
