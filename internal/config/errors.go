package config

import (
	"fmt"

	"reelpipe/internal/services"
)

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration: %s", e.Reason)
	}
	return fmt.Sprintf("configuration: %s %s", e.Field, e.Reason)
}

// Unwrap ties configuration errors to the shared classification marker.
func (e *ConfigError) Unwrap() error {
	return services.ErrConfiguration
}

func invalid(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
