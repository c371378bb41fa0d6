package driven

// ConfigStore holds flat dotted keys such as "canvas.base_url".
// Typed getters return the zero value for a missing key or a value of
// another type.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores a value and persists it.
	Set(key string, value any) error

	// Save writes every value to the backing file.
	Save() error

	// Load replaces the values with the backing file's content.
	Load() error

	// Path is the backing file, empty for in-memory stores.
	Path() string
}
