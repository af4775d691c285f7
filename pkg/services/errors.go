// Package services runs the generation pipeline and the user-scoped workflow and
// template operations, and defines the error taxonomy the API maps to HTTP.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/persistence"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest       = errors.New("invalid request")
	ErrWorkflowNameRequired = errors.New("workflow name is required")
	ErrDocumentRequired     = errors.New("a workflow document or generation id is required")
	ErrInvalidStatus        = errors.New("invalid workflow status")
	ErrUnknownPattern       = errors.New("unknown workflow pattern")
	ErrInvalidCatalog       = errors.New("invalid node catalog")

	// Authentication Errors (401 Unauthorized).
	ErrNotAuthenticated = errors.New("not authenticated")

	// Not Found Errors (404 Not Found).
	ErrWorkflowNotFound   = persistence.ErrWorkflowNotFound
	ErrGenerationNotFound = errors.New("generation not found or expired")
	ErrNodeTypeNotFound   = persistence.ErrNodeTypeNotFound

	// Business Logic Conflicts (409 Conflict).
	ErrDuplicateNodeName = models.ErrDuplicateNodeName
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrWorkflowNameRequired) ||
		errors.Is(err, ErrDocumentRequired) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrUnknownPattern) ||
		errors.Is(err, ErrInvalidCatalog)
}

// IsAuthError checks if an error should return HTTP 401.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotAuthenticated)
}

// IsNotFoundError checks if an error should return HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound) ||
		errors.Is(err, ErrGenerationNotFound) ||
		errors.Is(err, ErrNodeTypeNotFound)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrDuplicateNodeName)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
