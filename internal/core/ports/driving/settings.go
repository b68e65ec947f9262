package driving

import "github.com/PieMyth/CloudCluster/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings: defaults, overlaid by the config
	// file, overlaid by environment variables.
	Get() (*domain.AppSettings, error)

	// Set stores a single setting, coercing value to the key's type.
	Set(key, value string) error

	// Keys returns every recognised setting key.
	Keys() []string

	// Path returns the config file path.
	Path() string
}
