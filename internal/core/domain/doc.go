// Package domain defines the core business entities for coursekit.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ContentItem: a downloadable resource discovered in a course
//   - TextRecord: a unit of course text ready for upload
//   - UploadRecord: the relay wire shape of a TextRecord
//   - ExtractedContent: structured course content backing the report
//   - ExtractionResult: the outcome of one extraction run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
