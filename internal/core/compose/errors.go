// Package compose builds the multi-service orchestration descriptor for GPU
// workers. This is part of the Functional Core - all functions are pure with no I/O.
package compose

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// Build errors
	ErrDuplicateService = errors.New("duplicate service name")
	ErrNegativeCount    = errors.New("accelerator count must not be negative")

	// Serialization errors
	ErrInvalidDescriptor = errors.New("descriptor failed compose validation")
)

// BuildError wraps errors with context about where building failed.
type BuildError struct {
	Field   string // e.g., "services.yolo_worker2"
	Message string
	Err     error
}

func (e *BuildError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// NewBuildError creates a new BuildError.
func NewBuildError(field, message string, err error) *BuildError {
	return &BuildError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
