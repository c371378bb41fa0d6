// Package classifier decides whether a URL names a downloadable file,
// which content category it belongs to, and how to turn URLs and titles
// into safe file and folder names.
//
// Every function is pure and total: empty or malformed input yields a
// conservative default (false, [domain.ContentUnknown], "download",
// "untitled") instead of an error or panic.
//
// The package also owns the selector table shared by the HTML miner and
// the DOM fallback adapter, so both discover files with the same rules.
package classifier
