// Package mcp exposes stored extraction runs to MCP clients.
// Tools list runs, items and text records and return the printable
// report of a run.
package mcp

import "errors"

// ErrMissingRunService is returned when the run service is not provided.
var ErrMissingRunService = errors.New("mcp: run service is required")
