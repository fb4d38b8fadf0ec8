package api

import (
	"errors"
	"fmt"
)

// NotFoundError represents a resource not found error with contextual information.
type NotFoundError struct {
	// ResourceType categorizes the resource, e.g. "server".
	ResourceType string

	// ResourceName is the identifier that was looked up.
	ResourceName string

	// Message overrides the default text when set.
	Message string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ResourceName)
}

// IsNotFound checks if an error is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// NewNotFoundError creates a new NotFoundError with the specified resource type and name.
//
// Example:
//
//	return api.NewNotFoundError("server", id)
func NewNotFoundError(resourceType, resourceName string) *NotFoundError {
	return &NotFoundError{
		ResourceType: resourceType,
		ResourceName: resourceName,
	}
}

// NewServerNotFoundError is a shorthand for server definitions.
func NewServerNotFoundError(id string) *NotFoundError {
	return NewNotFoundError("server", id)
}
