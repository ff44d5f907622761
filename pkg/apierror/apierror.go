package apierror

import (
	"fmt"
	"time"
)

// Code represents a stable error code carried on every API error
type Code string

// The closed set of error codes. Every error leaving the service carries
// exactly one of these.
const (
	CodeBadRequest   Code = "ERR_BAD_REQUEST"
	CodeNotFound     Code = "ERR_NOT_FOUND"
	CodeUnauthorized Code = "ERR_UNAUTHORIZED"
	CodeForbidden    Code = "ERR_FORBIDDEN"
	CodeValidation   Code = "ERR_VALIDATION"
	CodeInternal     Code = "ERR_INTERNAL"
	CodeDatabase     Code = "ERR_DATABASE"
)

// FieldError describes a single field-level violation
type FieldError struct {
	Message string `json:"message"`
}

// Error is the structured error type used across all packages.
// StatusCode is always one of 400, 401, 403, 404, 422, 500.
type Error struct {
	StatusCode int                   // HTTP status to write
	Name       string                // Error class name, e.g. "ValidationError"
	Message    string                // Human-readable message
	Code       Code                  // Stable error code
	Fields     map[string]FieldError // Optional field-level details
	Source     string                // Package/component where the error originated
	Timestamp  time.Time             // When the error was created
	Data       map[string]any        // Additional contextual data, withheld in production
	Err        error                 // Wrapped underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// WithSource records the component the error originated from
func (e *Error) WithSource(source string) *Error {
	e.Source = source
	return e
}

// WithData attaches a contextual value to the error
func (e *Error) WithData(key string, value any) *Error {
	if e.Data == nil {
		e.Data = make(map[string]any)
	}
	e.Data[key] = value
	return e
}

// WrapErr records the underlying error without changing the classification
func (e *Error) WrapErr(err error) *Error {
	e.Err = err
	return e
}

func newError(statusCode int, name, message string, code Code) *Error {
	return &Error{
		StatusCode: statusCode,
		Name:       name,
		Message:    message,
		Code:       code,
		Timestamp:  time.Now().UTC(),
	}
}

// BadRequest creates a 400 error for malformed input
func BadRequest(message string, fields map[string]FieldError) *Error {
	e := newError(400, "BadRequestError", message, CodeBadRequest)
	e.Fields = fields
	return e
}

// NotFound creates a 404 error. When entity is non-empty the message is
// prefixed with the entity name.
func NotFound(message, entity string) *Error {
	if entity != "" {
		message = fmt.Sprintf("%s not found: %s", entity, message)
	}
	return newError(404, "NotFoundError", message, CodeNotFound)
}

// Unauthorized creates a 401 error
func Unauthorized(message string) *Error {
	if message == "" {
		message = "Unauthorized"
	}
	return newError(401, "UnauthorizedError", message, CodeUnauthorized)
}

// Forbidden creates a 403 error
func Forbidden(message string) *Error {
	if message == "" {
		message = "Forbidden"
	}
	return newError(403, "ForbiddenError", message, CodeForbidden)
}

// Validation creates a 422 error carrying field-level details
func Validation(message string, fields map[string]FieldError) *Error {
	e := newError(422, "ValidationError", message, CodeValidation)
	e.Fields = fields
	return e
}

// Internal creates a 500 error for unclassified failures
func Internal(message string) *Error {
	return newError(500, "InternalServerError", message, CodeInternal)
}

// Database creates a 500 error for storage-layer failures. The original
// message is preserved under data.originalError.
func Database(message string, original string) *Error {
	e := newError(500, "DatabaseError", message, CodeDatabase)
	return e.WithData("originalError", original)
}

// ValidationError is a plain error carrying field violations. It exists for
// callers that cannot depend on *Error directly; the normalizer folds it into
// the validation taxonomy entry with its fields intact.
type ValidationError struct {
	Message string
	Fields  map[string]FieldError
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return "Validation failed"
	}
	return e.Message
}
