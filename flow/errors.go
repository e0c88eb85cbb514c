package flow

import (
	stderrors "errors"

	"github.com/kbukum/authgate/errors"
)

// Sentinel errors returned by Service. Returned errors wrap one of these and
// may also wrap the underlying cause, so callers match with errors.Is.
var (
	ErrInvalidInput       = stderrors.New("flow: invalid input")
	ErrConflict           = stderrors.New("flow: username already registered")
	ErrStorage            = stderrors.New("flow: storage failure")
	ErrInvalidCredentials = stderrors.New("flow: invalid credentials")
	ErrInternal           = stderrors.New("flow: internal failure")
)

// AppError converts a Service error into the HTTP-facing error. An
// *errors.AppError already in the chain is returned as is. The storage and
// internal causes are attached for server-side logging only.
func AppError(err error) *errors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}
	switch {
	case stderrors.Is(err, ErrInvalidInput):
		return errors.InvalidInput("", "username and password are required")
	case stderrors.Is(err, ErrConflict):
		return errors.Conflict("user")
	case stderrors.Is(err, ErrInvalidCredentials):
		return errors.InvalidCredentials()
	case stderrors.Is(err, ErrStorage):
		return errors.StorageError(err)
	default:
		return errors.Internal(err)
	}
}

// outcome labels a result for metrics and logs.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case stderrors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case stderrors.Is(err, ErrConflict):
		return "conflict"
	case stderrors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case stderrors.Is(err, ErrStorage):
		return "storage_error"
	default:
		return "internal_error"
	}
}
