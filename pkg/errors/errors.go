// Package errors defines the client-side error taxonomy. Every remote failure
// is converted into an AppError with one of the codes below before it leaves
// the API layer; callers branch on codes, never on raw HTTP statuses.
package errors

import (
	"errors"
	"fmt"
)

const (
	CodeAuthRequired     = "AUTH_REQUIRED"
	CodeAuthExpired      = "AUTH_EXPIRED"
	CodeBookingConflict  = "BOOKING_CONFLICT"
	CodeOperationFailed  = "OPERATION_FAILED"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
)

type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`

	// RemoteStatus is the HTTP status that produced this error, zero when the
	// error never reached the remote service.
	RemoteStatus int   `json:"-"`
	Err          error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithStatus(status int) *AppError {
	e.RemoteStatus = status
	return e
}

func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// AuthRequired is raised locally when an operation needs a session and none
// exists. It never comes back from the remote service.
func AuthRequired() *AppError {
	return New(CodeAuthRequired, "You need to log in to do that")
}

// AuthExpired maps any remote authentication-failure outcome. The caller is
// expected to clear the session and send the user back to login.
func AuthExpired() *AppError {
	return New(CodeAuthExpired, "Your session has expired, please log in again")
}

// BookingConflict covers the business rejections of a booking attempt:
// already booked by this user, or the event is full.
func BookingConflict(message string) *AppError {
	if message == "" {
		message = "Event is already booked"
	}
	return New(CodeBookingConflict, message)
}

func OperationFailed(message string, err error) *AppError {
	if message == "" {
		message = "An error occurred, please try again later"
	}
	return Wrap(err, CodeOperationFailed, message)
}

func Validation(message string, details map[string]any) *AppError {
	return New(CodeValidationFailed, message).WithDetails(details)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// CodeOf extracts the taxonomy code from err, or empty when err is not an
// AppError.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func IsAuthRequired(err error) bool { return CodeOf(err) == CodeAuthRequired }

func IsAuthExpired(err error) bool { return CodeOf(err) == CodeAuthExpired }

func IsConflict(err error) bool { return CodeOf(err) == CodeBookingConflict }

func IsValidation(err error) bool { return CodeOf(err) == CodeValidationFailed }

func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }

// UserMessage returns the message safe to show to the user. Non-taxonomy
// errors collapse into the generic failure wording so transport details never
// leak into the UI.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "An error occurred, please try again later"
}
