package dither

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownMode       = errors.New("unknown dither mode")
	ErrUnknownReducer    = errors.New("unknown grayscale reducer")
	ErrNotBlackWhite     = errors.New("grayscale reducers only produce black and white")
	ErrReducerNotAllowed = errors.New("mode does not support grayscale reducers")
)

// ConfigError reports a selection that was rejected before any pixel was
// processed.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
