// Package server provides the HTTP REST API for NexWork.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/nexwork/nexwork/internal/config"
	"github.com/nexwork/nexwork/internal/db"
	"github.com/nexwork/nexwork/internal/screening"
	"github.com/nexwork/nexwork/internal/status"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	var (
		emailExists *ErrEmailAlreadyExists
		badCreds    *ErrInvalidCredentials
		invalid     *ErrValidation
		fieldErrs   validator.ValidationErrors
	)
	switch {
	case errors.As(err, &emailExists), errors.Is(err, db.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.As(err, &badCreds):
		return http.StatusUnauthorized
	case errors.As(err, &invalid), errors.As(err, &fieldErrs), errors.Is(err, config.ErrPasswordTooLong):
		return http.StatusBadRequest
	case errors.Is(err, status.ErrIllegalTransition), errors.Is(err, screening.ErrWrongPhase):
		return http.StatusConflict
	case errors.Is(err, db.ErrNotFound), errors.Is(err, screening.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, screening.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, screening.ErrCodingTestUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// extractValidationErrors turns validator errors into a client message.
func extractValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		// First error only
		ve := validationErrors[0]
		return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
	}
	return "validation error: invalid request"
}
