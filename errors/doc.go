// Package errors provides the gateway's structured error type.
//
// Every failure that reaches an HTTP client is an *AppError carrying a
// machine-readable code, a short non-revealing message and the HTTP status the
// edge should answer with. Lower layers return plain wrapped errors; only the
// flow and middleware layers convert them.
package errors
