package mcp

import (
	"github.com/custodia-labs/coursekit/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server needs.
type Ports struct {
	// Runs reads stored extraction runs.
	Runs driving.RunService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Runs == nil {
		return ErrMissingRunService
	}
	return nil
}
