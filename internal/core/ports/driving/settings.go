package driving

import "github.com/custodia-labs/coursekit/internal/core/domain"

// SettingsService reads and updates application settings.
type SettingsService interface {
	// Get returns the effective settings: defaults, then the config
	// file, then environment overrides.
	Get() (*domain.Settings, error)

	// Set parses a raw value for a known key and persists it.
	Set(key, value string) error

	// Keys lists the known configuration keys.
	Keys() []string
}
