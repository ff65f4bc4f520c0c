package model

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is wrapped by every ConfigurationError.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ErrEmptyHorizon is returned when a run is started without any hours.
var ErrEmptyHorizon = errors.New("empty simulation horizon")

// ConfigurationError reports a missing or out-of-range input. It aborts a run
// before any hour is processed.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfiguration, e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrInvalidConfiguration }

// NewConfigurationError is a shorthand for building a ConfigurationError with
// a formatted reason.
func NewConfigurationError(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
