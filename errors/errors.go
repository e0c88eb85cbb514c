package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message safe to show to callers.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error. It is logged server side only.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// InvalidInput creates an AppError for malformed request data.
func InvalidInput(field, reason string) *AppError {
	e := New(ErrCodeInvalidInput, fmt.Sprintf("Invalid input: %s", reason), http.StatusBadRequest)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Validation creates an AppError for struct validation failures.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

// InvalidCredentials creates the login failure error. The message is identical
// for unknown users and wrong passwords.
func InvalidCredentials() *AppError {
	return New(ErrCodeInvalidCredentials, "Invalid Credentials", http.StatusUnauthorized)
}

// Conflict creates an AppError for a duplicate unique key.
func Conflict(resource string) *AppError {
	return New(ErrCodeConflict, fmt.Sprintf("A %s with these details already exists.", resource), http.StatusConflict).
		WithDetail("resource", resource)
}

// StorageError creates an AppError for a backing store failure.
func StorageError(cause error) *AppError {
	return New(ErrCodeStorage, "A storage error occurred. Please try again.", http.StatusInternalServerError).
		WithCause(cause)
}

// MissingHeader creates an AppError for a request without an Authorization header.
func MissingHeader() *AppError {
	return New(ErrCodeMissingHeader, "missing Authorization header", http.StatusUnauthorized)
}

// MalformedHeader creates an AppError for an Authorization header that is not
// a scheme followed by a token.
func MalformedHeader() *AppError {
	return New(ErrCodeMalformedHeader, "invalid scheme, or no token after scheme name.", http.StatusUnauthorized)
}

// UnsupportedScheme creates an AppError for an Authorization scheme the gate
// does not accept.
func UnsupportedScheme(scheme string) *AppError {
	return New(ErrCodeUnsupportedScheme, "invalid scheme, or no token after scheme name.", http.StatusUnauthorized).
		WithDetail("scheme", scheme)
}

// InvalidSignature creates an AppError for a token whose signature does not verify.
func InvalidSignature() *AppError {
	return New(ErrCodeInvalidSignature, "error verifying token", http.StatusUnauthorized)
}

// TokenExpired creates an AppError for an expired token.
func TokenExpired() *AppError {
	return New(ErrCodeTokenExpired, "token expired", http.StatusUnauthorized)
}

// MalformedToken creates an AppError for a token that could not be decoded.
func MalformedToken() *AppError {
	return New(ErrCodeMalformedToken, "error verifying token", http.StatusUnauthorized)
}

// Internal creates an AppError for an unexpected server error.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred.", http.StatusInternalServerError).
		WithCause(cause)
}
