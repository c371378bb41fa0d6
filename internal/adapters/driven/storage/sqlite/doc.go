// Package sqlite provides a SQLite-based implementation of the driven
// storage ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. One database connection backs two interfaces:
//
//   - RunStore: extraction runs with their items, records and report
//   - RecordSink: records received through the ingest endpoints
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files; applied versions are tracked in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.coursekit/data/coursekit.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
