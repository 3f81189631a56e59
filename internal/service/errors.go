package service

import (
	"errors"
	"fmt"
)

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Quiz Errors =====
var (
	ErrQuizNotFound   = errors.New("quiz not found")
	ErrQuizIDRequired = errors.New("quiz id is required")
)

// ===== Routing Errors =====
var (
	ErrStepIncomplete = errors.New("step is incomplete")
	ErrInvalidOption  = errors.New("invalid option selected")
	ErrTerminalStep   = errors.New("step has no next step")
	ErrUnknownStep    = errors.New("unknown step")
)

// ===== Contact Errors =====
var (
	ErrNameRequired         = errors.New("name is required")
	ErrNameTooLong          = errors.New("name must be at most 100 characters")
	ErrInvalidEmail         = errors.New("invalid email format")
	ErrInvalidPhone         = errors.New("phone must contain 10 to 15 digits")
	ErrInvalidPainStartDate = errors.New("approximate pain start date must be YYYY-MM-DD or YYYY-MM")
)

// ===== Notification Errors =====
var (
	ErrNotifierUnavailable = errors.New("notification service unavailable")
)

// InputError ties a validation failure to the request field that caused it
type InputError struct {
	Field string
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func fieldErr(field string, err error) error {
	return &InputError{Field: field, Err: err}
}
