// Package errors provides sentinel errors and custom error types for sonar-tools.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// ErrUnauthorized indicates the token was rejected by the platform (401/403)
	ErrUnauthorized = errors.New("not authorized")

	// ErrNotFound indicates the requested object does not exist on the platform
	ErrNotFound = errors.New("object not found")

	// ErrNoToken indicates that no authentication token was configured
	ErrNoToken = errors.New("no token provided, use --token or the SONAR_TOKEN environment variable")

	// ErrNoURL indicates that no platform URL was configured
	ErrNoURL = errors.New("no platform URL provided, use --url or the SONAR_HOST_URL environment variable")

	// ErrUnsupportedFormat indicates an unknown output format was requested
	ErrUnsupportedFormat = errors.New("unsupported output format")

	// ErrAuditProblems indicates the audit found at least one problem.
	// The CLI maps it to exit code 2 for CI gating.
	ErrAuditProblems = errors.New("audit found problems")
)

// APIError represents a non-2xx response from the SonarQube Web API
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API %s returned HTTP %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API %s returned HTTP %d", e.Endpoint, e.StatusCode)
}

// Is maps authentication and missing-object status codes to their sentinels
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == 401 || e.StatusCode == 403
	case ErrNotFound:
		return e.StatusCode == 404
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// ObjectNotFoundError represents a lookup of a platform object that does not exist
type ObjectNotFoundError struct {
	Type string
	Key  string
}

func (e *ObjectNotFoundError) Error() string {
	return fmt.Sprintf("%s %q does not exist", e.Type, e.Key)
}

// Is returns true if the target error is ErrNotFound
func (e *ObjectNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewObjectNotFoundError creates a new ObjectNotFoundError
func NewObjectNotFoundError(objectType, key string) *ObjectNotFoundError {
	return &ObjectNotFoundError{Type: objectType, Key: key}
}
