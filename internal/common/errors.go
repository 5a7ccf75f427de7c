// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Input data errors. These surface to callers as explicit signals
	// rather than hard failures.
	ErrMatterNotFound = errors.New("matter not found")
	ErrInvalidMatter  = errors.New("invalid matter")

	// Forecasting errors. ErrModelUnavailable is internal only: the
	// orchestrator always absorbs it by routing to the extrapolator.
	ErrModelUnavailable = errors.New("forecast model unavailable")

	// Configuration errors. Invalid configuration is fatal at startup.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
