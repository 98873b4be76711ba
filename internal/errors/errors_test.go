package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestNewAppError(t *testing.T) {
	err := NewAppError(ErrCodeInvalidInput, "Test error", nil)

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Expected code %s, got %s", ErrCodeInvalidInput, err.Code)
	}

	if err.Message != "Test error" {
		t.Errorf("Expected message 'Test error', got %s", err.Message)
	}

	if err.Severity != SeverityLow {
		t.Errorf("Expected severity %s, got %s", SeverityLow, err.Severity)
	}
}

func TestAppErrorHTTPStatus(t *testing.T) {
	tests := []struct {
		code           ErrorCode
		expectedStatus int
	}{
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeRateLimit, http.StatusTooManyRequests},
		{ErrCodeBackendUnreachable, http.StatusInternalServerError},
		{ErrCodeBackendTimeout, http.StatusInternalServerError},
	}

	for _, test := range tests {
		err := NewAppError(test.code, "Test", nil)
		status := err.HTTPStatus()

		if status != test.expectedStatus {
			t.Errorf("Code %s: expected status %d, got %d", test.code, test.expectedStatus, status)
		}
	}
}

func TestAppErrorWithContext(t *testing.T) {
	err := NewAppError(ErrCodeInternal, "Test error", nil)
	err = err.WithContext("operation", "start")
	err = err.WithRequestID("req_456")

	if err.Context["operation"] != "start" {
		t.Errorf("Expected context operation 'start', got %v", err.Context["operation"])
	}

	if err.RequestID != "req_456" {
		t.Errorf("Expected request ID 'req_456', got %s", err.RequestID)
	}
}

func TestWrapError(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := WrapError(cause, ErrCodeBackendUnreachable, "Backend unreachable")

	if err.Cause != cause {
		t.Error("Expected cause to be preserved")
	}

	if err.Unwrap() != cause {
		t.Error("Expected Unwrap to return the cause")
	}

	// Wrapping an AppError returns it unchanged.
	again := WrapError(err, ErrCodeInternal, "other")
	if again != err {
		t.Error("Expected wrapping an AppError to return it as-is")
	}
}

func TestSeverityByCode(t *testing.T) {
	if NewAppError(ErrCodeBackendTimeout, "t", nil).Severity != SeverityHigh {
		t.Error("Expected backend timeout to be high severity")
	}
	if NewAppError(ErrCodeBackendError, "t", nil).Severity != SeverityMedium {
		t.Error("Expected backend error to be medium severity")
	}
	if !NewAppError(ErrCodeBackendUnreachable, "t", nil).IsRetryable() {
		t.Error("Expected transport failures to be retryable")
	}
	if NewAppError(ErrCodeInvalidInput, "t", nil).IsRetryable() {
		t.Error("Expected validation errors to be non-retryable")
	}
}
