package types

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	ERR_UNAUTHORIZED            ErrorKind = "UNAUTHORIZED"
	ERR_FORBIDDEN               ErrorKind = "FORBIDDEN"
	ERR_NOT_FOUND               ErrorKind = "NOT_FOUND"
	ERR_INVALID_STATE           ErrorKind = "INVALID_STATE"
	ERR_VALIDATION              ErrorKind = "VALIDATION_ERROR"
	ERR_DEPENDENCY_UNCONFIGURED ErrorKind = "DEPENDENCY_UNCONFIGURED"
	ERR_TRANSFER_FAILED         ErrorKind = "TRANSFER_FAILED"
	ERR_PERSISTENCE_FAILED      ErrorKind = "PERSISTENCE_FAILED"
)

// AppError is returned by the order lifecycle operations. Message is safe to
// show to the caller, Cause is only logged.
type AppError struct {
	Kind    ErrorKind
	Message string
	Details any
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case ERR_UNAUTHORIZED:
		return http.StatusUnauthorized
	case ERR_FORBIDDEN:
		return http.StatusForbidden
	case ERR_NOT_FOUND:
		return http.StatusNotFound
	case ERR_INVALID_STATE, ERR_VALIDATION, ERR_DEPENDENCY_UNCONFIGURED:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func NewAppError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func ErrUnauthorized() *AppError {
	return NewAppError(ERR_UNAUTHORIZED, "Unauthorized")
}

func ErrForbidden(message string) *AppError {
	return NewAppError(ERR_FORBIDDEN, message)
}

func ErrNotFound(message string) *AppError {
	return NewAppError(ERR_NOT_FOUND, message)
}

func ErrInvalidState(message string, current string) *AppError {
	return &AppError{
		Kind:    ERR_INVALID_STATE,
		Message: message,
		Details: map[string]string{"currentStatus": current},
	}
}

func ErrValidation(message string, details any) *AppError {
	return &AppError{Kind: ERR_VALIDATION, Message: message, Details: details}
}

func ErrDependencyUnconfigured(message string) *AppError {
	return NewAppError(ERR_DEPENDENCY_UNCONFIGURED, message)
}

func ErrTransferFailed(cause error) *AppError {
	return &AppError{
		Kind:    ERR_TRANSFER_FAILED,
		Message: "Payment transfer failed",
		Details: cause.Error(),
		Cause:   cause,
	}
}

func ErrPersistence(cause error) *AppError {
	return &AppError{Kind: ERR_PERSISTENCE_FAILED, Message: "Could not save order", Cause: cause}
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsKind(err error, kind ErrorKind) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Kind == kind
}
