package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Request errors
const (
	// ErrCodeInvalidInput indicates malformed request data.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeConflict indicates a duplicate unique key.
	ErrCodeConflict ErrorCode = "CONFLICT"
)

// Credential errors
const (
	// ErrCodeInvalidCredentials indicates a login mismatch. It never says which
	// half of the credential was wrong.
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	// ErrCodeMissingHeader indicates no Authorization header was presented.
	ErrCodeMissingHeader ErrorCode = "MISSING_HEADER"
	// ErrCodeMalformedHeader indicates the header is not "<scheme> <token>".
	ErrCodeMalformedHeader ErrorCode = "MALFORMED_HEADER"
	// ErrCodeUnsupportedScheme indicates a scheme other than the accepted ones.
	ErrCodeUnsupportedScheme ErrorCode = "UNSUPPORTED_SCHEME"
)

// Token errors
const (
	// ErrCodeInvalidSignature indicates the token signature does not verify.
	ErrCodeInvalidSignature ErrorCode = "INVALID_SIGNATURE"
	// ErrCodeTokenExpired indicates the token exp is at or before now.
	ErrCodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
	// ErrCodeMalformedToken indicates the token could not be decoded.
	ErrCodeMalformedToken ErrorCode = "MALFORMED_TOKEN"
)

// Internal errors
const (
	// ErrCodeStorage indicates a backing store failure.
	ErrCodeStorage ErrorCode = "STORAGE_ERROR"
	// ErrCodeInternal indicates any other server-side failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeStorage: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
