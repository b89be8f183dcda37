package driving

import "github.com/custodia-labs/jelly-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates a single setting by key.
	Set(key, value string) error

	// Keys returns the supported setting keys.
	Keys() []string

	// Validate checks that the settings required for loading are present.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
