// Package canvas implements the REST source adapters for Canvas courses.
//
// Each adapter reads one family of endpoints under /api/v1/courses/:id and
// turns the payloads into content items. Adapters never fail a run: every
// endpoint error is logged, classified, and returned as a domain.Issue next
// to whatever items were recovered.
//
// # Architecture
//
//   - Client: authenticated HTTP access with throttling, retries and pagination
//   - FilesAdapter, AssignmentsAdapter, ModulesAdapter, DiscussionsAdapter,
//     PagesAdapter: one driven.SourceAdapter per endpoint family
//   - FolderResolver: maps folder ids from the file listing to folder names
//   - Collector: gathers structured course content for the text report
//   - Config: parses which adapters a run enables
//
// # Authentication
//
// A bearer token is attached through golang.org/x/oauth2. When only a
// session cookie is available it is sent verbatim on every request. The
// Accept header asks for string ids so large ids survive JSON decoding.
//
// # Rate Limiting
//
//  1. Proactive throttling: a token bucket caps the request rate.
//
//  2. Reactive handling: X-Rate-Limit-Remaining is tracked from every
//     response. A 429, or a 403 once the quota is spent, becomes a
//     RateLimitError and the request is retried with backoff.
//
// Per-item detail fetches additionally pause for the configured nested
// delay between requests.
//
// # Decoding
//
// Payloads are decoded into typed structs. Ids use FlexString, which accepts
// numbers or strings, and records failing validate() are dropped.
package canvas
