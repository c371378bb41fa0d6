// Package connectors groups the course content sources.
//
// canvas talks to the platform REST API and provides the per-source
// adapters, the folder resolver and the content collector. dom works on
// rendered course pages, either a saved snapshot or a live fetch, and is
// the fallback when the API is unavailable.
package connectors
