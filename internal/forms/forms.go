// Package forms runs the client-side pre-submission checks. Anything caught
// here surfaces as VALIDATION_FAILED with per-field messages and never
// reaches the remote service.
package forms

import (
	apperrors "gatherctl/pkg/errors"

	"github.com/go-playground/validator/v10"
)

type Login struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type Registration struct {
	FirstName       string `validate:"required"`
	LastName        string `validate:"required"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=8"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
	Gender          string `validate:"required,oneof=MALE FEMALE PREFER_NOT_TO_SAY"`
	BirthDate       string `validate:"required,datetime=2006-01-02"`
}

type PasswordChange struct {
	CurrentPassword string `validate:"required"`
	NewPassword     string `validate:"required,min=8,nefield=CurrentPassword"`
	ConfirmPassword string `validate:"required,eqfield=NewPassword"`
}

type PasswordResetRequest struct {
	Email string `validate:"required,email"`
}

// PasswordReset is the token-based variant: the current password is unknown,
// only the new pair is checked.
type PasswordReset struct {
	NewPassword     string `validate:"required,min=8"`
	ConfirmPassword string `validate:"required,eqfield=NewPassword"`
}

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate checks a form struct and converts any violations into a
// VALIDATION_FAILED error carrying one message per offending field.
func (v *Validator) Validate(form any) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	violations, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.Validation("Validation failed", nil)
	}

	details := make(map[string]any, len(violations))
	for _, violation := range violations {
		details[violation.Field()] = messageFor(violation)
	}
	return apperrors.Validation("Validation failed", details)
}

func messageFor(violation validator.FieldError) string {
	switch violation.Tag() {
	case "required":
		return violation.Field() + " is required"
	case "email":
		return "Please enter a valid email address"
	case "min":
		return violation.Field() + " must be at least " + violation.Param() + " characters"
	case "eqfield":
		return "Passwords do not match"
	case "nefield":
		return "New password must differ from the current one"
	case "oneof":
		return violation.Field() + " must be one of: " + violation.Param()
	case "datetime":
		return violation.Field() + " must be a date formatted " + violation.Param()
	default:
		return violation.Field() + " is invalid"
	}
}
