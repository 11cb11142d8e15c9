package ir

import (
	"errors"
	"fmt"
)

// ConfigError signals caller misuse detected while configuring or driving
// the engine. Configuration errors are non-recoverable: the call that
// returned one had no effect.
type ConfigError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Message is a human-readable description.
	Message string

	// Details contains additional context.
	Details map[string]string
}

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeReservedAccuracy indicates an evaluator was registered for the
	// default accuracy.
	ErrCodeReservedAccuracy ConfigErrorCode = "RESERVED_ACCURACY"

	// ErrCodeInvalidHits indicates a non-positive hit count.
	ErrCodeInvalidHits ConfigErrorCode = "INVALID_HITS"

	// ErrCodeNilConfigurator indicates a required configurator or
	// evaluator was nil.
	ErrCodeNilConfigurator ConfigErrorCode = "NIL_CONFIGURATOR"

	// ErrCodeNotConfigured indicates judgment or scoring was requested
	// before it was configured.
	ErrCodeNotConfigured ConfigErrorCode = "NOT_CONFIGURED"

	// ErrCodeInvalidWindow indicates a negative timing window.
	ErrCodeInvalidWindow ConfigErrorCode = "INVALID_WINDOW"

	// ErrCodeInvalidBPM indicates a chart without a usable starting bpm.
	ErrCodeInvalidBPM ConfigErrorCode = "INVALID_BPM"

	// ErrCodeUnknownAccuracy indicates an accuracy name that no profile
	// defines.
	ErrCodeUnknownAccuracy ConfigErrorCode = "UNKNOWN_ACCURACY"
)

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewConfigError creates a ConfigError with a formatted message.
func NewConfigError(code ConfigErrorCode, format string, args ...any) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsConfigError returns true if err is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// HasConfigCode returns true if err is or wraps a ConfigError with the
// given code.
func HasConfigCode(err error, code ConfigErrorCode) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
