// Package apperror maps application failures onto HTTP responses for the local REST surface.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType int

const (
	UnknownError ErrorType = iota
	ValidationError
	NotFoundError
	// UnauthorizedError means no user is signed in.
	UnauthorizedError
	// ExternalServiceError means the remote posts API failed or could not be reached.
	ExternalServiceError
	InternalError
)

func (t ErrorType) String() string {
	switch t {
	case ValidationError:
		return "validation"
	case NotFoundError:
		return "not_found"
	case UnauthorizedError:
		return "unauthorized"
	case ExternalServiceError:
		return "external_service"
	case InternalError:
		return "internal"
	default:
		return "unknown"
	}
}

// AppError carries a user-facing Message and the underlying cause.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status for the error type.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case ValidationError:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	case UnauthorizedError:
		return http.StatusUnauthorized
	case ExternalServiceError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func NewAppError(errType ErrorType, message string, err error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

func NewValidationError(message string, err error) *AppError {
	return NewAppError(ValidationError, message, err)
}

func NewNotFoundError(message string, err error) *AppError {
	return NewAppError(NotFoundError, message, err)
}

func NewUnauthorizedError(message string, err error) *AppError {
	return NewAppError(UnauthorizedError, message, err)
}

func NewExternalServiceError(message string, err error) *AppError {
	return NewAppError(ExternalServiceError, message, err)
}

func NewInternalError(message string, err error) *AppError {
	return NewAppError(InternalError, message, err)
}

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

// ToResponse exposes only the message, never the underlying cause.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message, Type: e.Type.String()}
}

// FromError finds an *AppError in err's chain. Anything else becomes an InternalError.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError("internal server error", err)
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == NotFoundError
}

func IsValidationError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ValidationError
}
