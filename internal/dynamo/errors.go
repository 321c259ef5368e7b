package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for configuration and analysis.
var (
	// ErrInvalidConfig indicates a configuration value that cannot drive an analysis.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrEmptySweep indicates a sweep range that yields no samples.
	ErrEmptySweep = errors.New("dynamo: sweep range is empty")

	// ErrUnknownPreset indicates a preset name that is not registered.
	ErrUnknownPreset = errors.New("dynamo: unknown preset")
)

// ConfigError wraps a configuration error with the offending field.
type ConfigError struct {
	Field   string
	Reason  string
	Wrapped error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Wrapped.Error(), e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Wrapped
}

// InvalidConfig builds a ConfigError wrapping ErrInvalidConfig.
func InvalidConfig(field, format string, args ...any) error {
	return &ConfigError{
		Field:   field,
		Reason:  fmt.Sprintf(format, args...),
		Wrapped: ErrInvalidConfig,
	}
}
