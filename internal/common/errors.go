package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnavailable  = errors.New("service unavailable")
	ErrValidation   = errors.New("validation failed")
	ErrInternal     = errors.New("internal error")
)

// Error codes for the three failure classes surfaced to the user.
const (
	CodeInputError     = "INPUT_ERROR"          // PDF unreadable/corrupt or no text
	CodeConnectivity   = "CONNECTIVITY_ERROR"   // credential invalid or endpoint unreachable
	CodeModelAdherence = "MODEL_ADHERENCE_ERROR" // LLM response does not match the contract
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func InputError(message string, cause error) *AppError {
	return NewAppError(CodeInputError, message, cause)
}

func ConnectivityError(message string, cause error) *AppError {
	return NewAppError(CodeConnectivity, message, cause)
}

func ModelAdherenceError(message string, cause error) *AppError {
	return NewAppError(CodeModelAdherence, message, cause)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPError maps an error to an echo.HTTPError for the web boundary.
// Every failure class gets a user-visible message; nothing is swallowed.
func HTTPError(err error) *echo.HTTPError {
	var ae *AppError
	if errors.As(err, &ae) {
		switch ae.Code {
		case CodeInputError:
			return echo.NewHTTPError(http.StatusUnprocessableEntity, ae.Message)
		case CodeConnectivity:
			return echo.NewHTTPError(http.StatusBadGateway, ae.Message)
		case CodeModelAdherence:
			return echo.NewHTTPError(http.StatusBadGateway, ae.Message)
		}
	}
	if errors.Is(err, ErrInvalidInput) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
