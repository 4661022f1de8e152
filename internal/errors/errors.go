package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies application errors
type ErrorType string

const (
	ErrorTypeCredential    ErrorType = "credential"
	ErrorTypeInvalidRegion ErrorType = "invalid_region"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeInvalidState  ErrorType = "invalid_state_transition"
	ErrorTypeInvalidParams ErrorType = "invalid_parameters"
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeCollaborator  ErrorType = "collaborator"
	ErrorTypeConfig        ErrorType = "config"
	ErrorTypeInternal      ErrorType = "internal"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to an error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	e.Context[key] = value
	return e
}

func newError(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewCredentialError reports missing or invalid credentials for an account.
// The account id rides along in the context so callers can surface a warning
// scoped to that account and keep the rest of the session alive.
func NewCredentialError(accountID string, cause error) *AppError {
	e := newError(ErrorTypeCredential, fmt.Sprintf("credentials unavailable for account %s", accountID), cause)
	e.Context["account_id"] = accountID
	return e
}

// NewInvalidRegionError reports a wildcard or empty region supplied to a
// region-bound operation
func NewInvalidRegionError(region string) *AppError {
	e := newError(ErrorTypeInvalidRegion, fmt.Sprintf("operation requires a concrete region, got %q", region), nil)
	e.Context["region"] = region
	return e
}

// NewNotFoundError reports a referenced entity that does not exist
func NewNotFoundError(kind, id string) *AppError {
	e := newError(ErrorTypeNotFound, fmt.Sprintf("%s %s not found", kind, id), nil)
	e.Context["id"] = id
	return e
}

// NewInvalidStateTransitionError reports a lifecycle operation attempted
// against a deployment that is not in the required state
func NewInvalidStateTransitionError(pipelineID, from, event string) *AppError {
	e := newError(ErrorTypeInvalidState,
		fmt.Sprintf("cannot %s deployment %s in state %s", event, pipelineID, from), nil)
	e.Context["pipeline_id"] = pipelineID
	e.Context["from"] = from
	return e
}

// NewInvalidParametersError reports malformed trigger parameters
func NewInvalidParametersError(message string, cause error) *AppError {
	return newError(ErrorTypeInvalidParams, message, cause)
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return newError(ErrorTypeValidation, message, cause)
}

// NewConfigError creates a new configuration error
func NewConfigError(message string, cause error) *AppError {
	return newError(ErrorTypeConfig, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return newError(ErrorTypeInternal, message, cause)
}

// WrapCollaborator wraps a failure from an external collaborator with the
// operation name and target key instead of passing it through opaquely
func WrapCollaborator(operation, target string, cause error) *AppError {
	e := newError(ErrorTypeCollaborator, fmt.Sprintf("%s failed for %s", operation, target), cause)
	e.Context["operation"] = operation
	e.Context["target"] = target
	return e
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}
