// Package ml implements the serving-time prediction pipeline: alignment of
// encoded records onto the frozen feature registry, numeric scaling, native
// evaluation of the trained classifiers, and the uncombined model ensemble.
//
// All shared state (registry, scaler, models) is loaded once at process
// start into an immutable bundle and is safe for concurrent use.
package ml

import "fmt"

// ConfigurationError reports broken or inconsistent model artifacts. It is
// fatal to the process, not recoverable per request.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s", e.Reason)
}

// DimensionError reports a feature-vector length that does not match what
// the scaler or a model expects. It indicates registry/encoder version
// skew and is surfaced loudly, never silently truncated or padded.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch: want %d features, got %d", e.Want, e.Got)
}
