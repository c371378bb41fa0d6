package classifier

import (
	"strings"
	"unicode"
)

// Kind selects the length bound applied by Sanitize.
type Kind int

const (
	// KindFilename bounds output to MaxFilenameLen runes.
	KindFilename Kind = iota
	// KindPathComponent bounds output to MaxPathComponentLen runes.
	KindPathComponent
)

const (
	MaxFilenameLen      = 100
	MaxPathComponentLen = 50

	// Untitled replaces names that sanitise to nothing.
	Untitled = "untitled"

	// Free text longer than this (and containing a space) is cut to its
	// first sentenceTokens words before sanitising.
	sentenceThreshold = 50
	sentenceTokens    = 5
)

// illegalChars are rejected by at least one common filesystem.
const illegalChars = `<>:"/\|?*`

// Sanitize turns name into a safe file or folder name.
// The result never contains illegal characters, never exceeds the bound
// for kind, is never empty, and Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(name string, kind Kind) string {
	if strings.TrimSpace(name) == "" {
		return Untitled
	}

	if strings.Contains(name, " ") && len(name) > sentenceThreshold {
		words := strings.Fields(name)
		if len(words) > sentenceTokens {
			words = words[:sentenceTokens]
		}
		name = strings.Join(words, "_")
	}

	var b strings.Builder
	b.Grow(len(name))
	lastUnderscore := false
	for _, r := range name {
		if strings.ContainsRune(illegalChars, r) || unicode.IsControl(r) || unicode.IsSpace(r) {
			r = '_'
		}
		if r == '_' {
			if lastUnderscore {
				continue
			}
			lastUnderscore = true
		} else {
			lastUnderscore = false
		}
		b.WriteRune(r)
	}

	out := truncateRunes(b.String(), maxLen(kind))
	out = strings.Trim(out, "_")
	if out == "" {
		return Untitled
	}
	return out
}

// SanitizeFolderPath sanitises each segment of a slash-separated path as
// a path component. Empty segments are dropped.
func SanitizeFolderPath(path string) string {
	parts := strings.Split(path, "/")
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		clean = append(clean, Sanitize(p, KindPathComponent))
	}
	if len(clean) == 0 {
		return Untitled
	}
	return strings.Join(clean, "/")
}

// Slug lower-cases and sanitises a title for use in record file names.
func Slug(title string) string {
	return strings.ToLower(Sanitize(title, KindPathComponent))
}

func maxLen(kind Kind) int {
	if kind == KindPathComponent {
		return MaxPathComponentLen
	}
	return MaxFilenameLen
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
