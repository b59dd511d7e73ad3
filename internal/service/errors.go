package service

import (
	"errors"
	"fmt"

	"github.com/stencilhq/stencil-api/internal/store"
)

// Common sentinel errors for TemplateService
var (
	// ErrTemplateNotFound indicates that the template item does not exist
	ErrTemplateNotFound = errors.New("template not found")
)

// TemplateServiceError wraps errors from the template service with context.
type TemplateServiceError struct {
	// Operation is the operation that failed (e.g., "create_template")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for TemplateServiceError.
func (e *TemplateServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("template service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("template service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TemplateServiceError) Unwrap() error {
	return e.Err
}

// NewTemplateServiceError creates a new TemplateServiceError.
// It returns known sentinel errors directly without wrapping.
func NewTemplateServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrTemplateNotFound) {
		return ErrTemplateNotFound
	}

	// Map store-level sentinels to service-level ones
	if errors.Is(err, store.ErrTemplateNotFound) {
		return ErrTemplateNotFound
	}

	return &TemplateServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
