package canvas

import (
	"strings"

	"github.com/custodia-labs/coursekit/internal/core/domain"
	"github.com/custodia-labs/coursekit/internal/core/ports/driven"
)

// SourceKind names a REST adapter.
type SourceKind string

// Adapter kinds, in merge precedence order.
const (
	SourceFiles       SourceKind = "files"
	SourceAssignments SourceKind = "assignments"
	SourceModules     SourceKind = "modules"
	SourceDiscussions SourceKind = "discussions"
	SourcePages       SourceKind = "pages"
)

// AllSourceKinds returns every adapter kind in precedence order.
func AllSourceKinds() []SourceKind {
	return []SourceKind{SourceFiles, SourceAssignments, SourceModules, SourceDiscussions, SourcePages}
}

// Config holds which adapters a run enables.
type Config struct {
	// Sources lists enabled adapters. Default: all kinds.
	Sources []SourceKind
}

// ParseConfig builds a Config from the include toggles, optionally narrowed
// by a comma-separated list of kinds.
func ParseConfig(settings domain.ExtractSettings, only string) (*Config, error) {
	enabled := map[SourceKind]bool{
		SourceFiles:       settings.IncludeFiles,
		SourceAssignments: settings.IncludeAssignments,
		SourceModules:     settings.IncludeModules,
		SourceDiscussions: settings.IncludeDiscussions,
		SourcePages:       settings.IncludePages,
	}

	if strings.TrimSpace(only) != "" {
		kinds, err := parseSourceKinds(only)
		if err != nil {
			return nil, err
		}
		picked := make(map[SourceKind]bool, len(kinds))
		for _, k := range kinds {
			picked[k] = true
		}
		for k := range enabled {
			enabled[k] = enabled[k] && picked[k]
		}
	}

	cfg := &Config{}
	for _, k := range AllSourceKinds() {
		if enabled[k] {
			cfg.Sources = append(cfg.Sources, k)
		}
	}
	return cfg, nil
}

// parseSourceKinds parses a comma-separated list of adapter kinds.
func parseSourceKinds(s string) ([]SourceKind, error) {
	valid := make(map[string]SourceKind)
	for _, k := range AllSourceKinds() {
		valid[string(k)] = k
	}

	var kinds []SourceKind
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		k, ok := valid[part]
		if !ok {
			return nil, ErrConfigInvalidSource
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// HasSource checks if an adapter kind is enabled.
func (c *Config) HasSource(k SourceKind) bool {
	for _, s := range c.Sources {
		if s == k {
			return true
		}
	}
	return false
}

// Adapters returns the enabled adapters in precedence order.
func (c *Config) Adapters(client *Client) []driven.SourceAdapter {
	var out []driven.SourceAdapter
	for _, k := range c.Sources {
		switch k {
		case SourceFiles:
			out = append(out, NewFilesAdapter(client))
		case SourceAssignments:
			out = append(out, NewAssignmentsAdapter(client))
		case SourceModules:
			out = append(out, NewModulesAdapter(client))
		case SourceDiscussions:
			out = append(out, NewDiscussionsAdapter(client))
		case SourcePages:
			out = append(out, NewPagesAdapter(client))
		}
	}
	return out
}
