// Package html converts HTML into readable plain text, stripping tags,
// scripts, and styles and decoding entities. It serves both rich-text API
// fields and downloaded HTML files.
package html
