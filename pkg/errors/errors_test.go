package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeOperationFailed, "booking failed")

	if err.Code != CodeOperationFailed {
		t.Errorf("expected code %s, got %s", CodeOperationFailed, err.Code)
	}
	if err.Message != "booking failed" {
		t.Errorf("expected message 'booking failed', got %s", err.Message)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("connection refused")
	wrapped := Wrap(originalErr, CodeOperationFailed, "request failed")

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if wrapped.Code != CodeOperationFailed {
		t.Errorf("expected code %s, got %s", CodeOperationFailed, wrapped.Code)
	}
}

func TestWithDetails(t *testing.T) {
	err := Validation("Validation failed", map[string]any{"Email": "Email is required"})

	if err.Code != CodeValidationFailed {
		t.Errorf("expected code %s, got %s", CodeValidationFailed, err.Code)
	}
	if err.Details["Email"] != "Email is required" {
		t.Errorf("expected details to carry the field message, got %v", err.Details)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   &AppError{Code: CodeBookingConflict, Message: "Event is already booked"},
			expected: "BOOKING_CONFLICT: Event is already booked",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeOperationFailed,
				Message: "request failed",
				Err:     errors.New("connection refused"),
			},
			expected: "OPERATION_FAILED: request failed (caused by: connection refused)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeOperationFailed, "wrapped")

	if unwrapped := errors.Unwrap(appErr); unwrapped != originalErr {
		t.Errorf("Unwrap() should return original error")
	}
}

func TestCodePredicates(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		predicate func(error) bool
		want      bool
	}{
		{"auth required matches", AuthRequired(), IsAuthRequired, true},
		{"auth expired matches", AuthExpired(), IsAuthExpired, true},
		{"conflict matches", BookingConflict(""), IsConflict, true},
		{"conflict is not generic failure", BookingConflict(""), func(err error) bool {
			return CodeOf(err) == CodeOperationFailed
		}, false},
		{"validation matches", Validation("bad input", nil), IsValidation, true},
		{"not found matches", NotFound("Event"), IsNotFound, true},
		{"plain error matches nothing", errors.New("boom"), IsConflict, false},
		{"wrapped app error still matches", fmt.Errorf("op: %w", AuthExpired()), IsAuthExpired, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.predicate(tt.err); got != tt.want {
				t.Errorf("predicate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(BookingConflict("Event is full")); got != "Event is full" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("dial tcp: timeout")); got != "An error occurred, please try again later" {
		t.Errorf("UserMessage() should hide transport detail, got %q", got)
	}
}
