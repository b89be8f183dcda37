package driven

import "time"

// ConfigStore provides access to application configuration.
// Keys use dot notation ("firestore.project_id"); implementations handle
// persistence and type conversion.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string value, or "" when absent or mistyped.
	GetString(key string) string

	// GetInt retrieves an integer value, or 0 when absent or mistyped.
	GetInt(key string) int

	// GetFloat retrieves a number value, or 0 when absent or mistyped.
	// Integers are converted.
	GetFloat(key string) float64

	// GetBool retrieves a boolean value, or false when absent or mistyped.
	GetBool(key string) bool

	// GetDuration retrieves a duration stored as a Go duration string
	// ("10m"), or 0 when absent or unparseable.
	GetDuration(key string) time.Duration

	// Set stores a configuration value.
	// The value is persisted immediately.
	Set(key string, value any) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
