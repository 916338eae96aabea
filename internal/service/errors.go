package service

import (
	"errors"
	"fmt"
)

var (
	// ErrSyncInProgress is returned when a sync is requested while another
	// one is still running.
	ErrSyncInProgress = errors.New("sync in progress")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
