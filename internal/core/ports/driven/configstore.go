package driven

// ConfigStore reads and writes application configuration. Keys use dot
// notation ("llm.model"); implementations own persistence and type
// coercion.
type ConfigStore interface {
	// Get returns the raw value under key and whether it exists.
	Get(key string) (any, bool)

	// GetString returns the string under key, or "" when the key is
	// absent or holds another type.
	GetString(key string) string

	// GetInt returns the integer under key, or 0 when absent or not an
	// integer.
	GetInt(key string) int

	// GetFloat returns the number under key as a float64, or 0 when
	// absent or not numeric.
	GetFloat(key string) float64

	// GetBool returns the boolean under key, or false when absent or
	// not a boolean.
	GetBool(key string) bool

	// GetStringSlice returns the string list under key, or nil when
	// absent or not a list.
	GetStringSlice(key string) []string

	// Set stores value under key and persists it immediately.
	Set(key string, value any) error

	// Save persists the current configuration.
	Save() error

	// Load replaces the in-memory configuration from storage.
	Load() error

	// Path reports where the configuration is persisted.
	Path() string
}
