// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - SourceAdapter: discovers content items from one course source
//   - ContentCollector: gathers structured course content for the report
//   - ConfigStore: application configuration
//
// # Optional Interfaces
//
// These can be nil; the application degrades gracefully:
//
//   - PageProvider: rendered page HTML for the DOM fallback
//   - RecordSink: relay or local ingest target for text records
//   - RunStore: persistence of finished runs
//   - NormaliserRegistry: text extraction from downloaded files
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
