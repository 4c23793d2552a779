package step

import (
	"errors"
	"fmt"
)

// ConfigurationError is an invalid input, nothing was loaded or written.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewConfigurationError ...
func NewConfigurationError(err error) *ConfigurationError {
	return &ConfigurationError{Err: err}
}

// IsConfigurationError checks if the error is or wraps a ConfigurationError
func IsConfigurationError(err error) bool {
	var configErr *ConfigurationError
	return err != nil && errors.As(err, &configErr)
}

// LoadFailure means the output documents could not be read, combined or reported.
type LoadFailure struct {
	Err error
}

func (e *LoadFailure) Error() string {
	return fmt.Sprintf("failed to load results: %v", e.Err)
}

func (e *LoadFailure) Unwrap() error {
	return e.Err
}

// NewLoadFailure ...
func NewLoadFailure(err error) *LoadFailure {
	return &LoadFailure{Err: err}
}

// IsLoadFailure checks if the error is or wraps a LoadFailure
func IsLoadFailure(err error) bool {
	var loadErr *LoadFailure
	return err != nil && errors.As(err, &loadErr)
}
