package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Retryable(t *testing.T) {
	if !New(ErrCodeStorage, "down", http.StatusInternalServerError).Retryable {
		t.Error("STORAGE_ERROR should be retryable")
	}
	if New(ErrCodeInvalidCredentials, "no", http.StatusUnauthorized).Retryable {
		t.Error("INVALID_CREDENTIALS should not be retryable")
	}
}

func TestAppError_Constructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   ErrorCode
		status int
	}{
		{"invalid input", InvalidInput("username", "is required"), ErrCodeInvalidInput, http.StatusBadRequest},
		{"invalid credentials", InvalidCredentials(), ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{"conflict", Conflict("user"), ErrCodeConflict, http.StatusConflict},
		{"storage", StorageError(fmt.Errorf("disk")), ErrCodeStorage, http.StatusInternalServerError},
		{"missing header", MissingHeader(), ErrCodeMissingHeader, http.StatusUnauthorized},
		{"malformed header", MalformedHeader(), ErrCodeMalformedHeader, http.StatusUnauthorized},
		{"unsupported scheme", UnsupportedScheme("Basic"), ErrCodeUnsupportedScheme, http.StatusUnauthorized},
		{"signature", InvalidSignature(), ErrCodeInvalidSignature, http.StatusUnauthorized},
		{"expired", TokenExpired(), ErrCodeTokenExpired, http.StatusUnauthorized},
		{"malformed token", MalformedToken(), ErrCodeMalformedToken, http.StatusUnauthorized},
		{"internal", Internal(nil), ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.HTTPStatus)
			}
			if tc.err.Message == "" {
				t.Error("expected non-empty message")
			}
		})
	}
}

func TestInvalidCredentials_Message(t *testing.T) {
	if got := InvalidCredentials().Message; got != "Invalid Credentials" {
		t.Errorf("expected 'Invalid Credentials', got %q", got)
	}
}

func TestAppError_ErrorString(t *testing.T) {
	err := StorageError(fmt.Errorf("connection lost"))
	if !strings.Contains(err.Error(), "connection lost") {
		t.Errorf("expected cause in error string, got %q", err.Error())
	}
	if !strings.Contains(MissingHeader().Error(), string(ErrCodeMissingHeader)) {
		t.Error("expected code in error string")
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("root")
	err := Internal(cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestToResponse_OmitsCause(t *testing.T) {
	resp := StorageError(fmt.Errorf("password=hunter2")).ToResponse()
	if strings.Contains(resp.Message, "hunter2") {
		t.Error("cause leaked into response message")
	}
	if resp.Code != ErrCodeStorage {
		t.Errorf("expected STORAGE_ERROR, got %s", resp.Code)
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", InvalidCredentials())
	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AppError in chain")
	}
	if appErr.Code != ErrCodeInvalidCredentials {
		t.Errorf("unexpected code %s", appErr.Code)
	}
	if _, ok := AsAppError(stderrors.New("plain")); ok {
		t.Error("plain error should not be an AppError")
	}
	if !HasCode(wrapped, ErrCodeInvalidCredentials) {
		t.Error("HasCode should match wrapped AppError")
	}
	if HasCode(wrapped, ErrCodeConflict) {
		t.Error("HasCode should not match a different code")
	}
}
