package shared

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a domain error that maps directly onto an HTTP response.
type AppError struct {
	StatusCode int
	Message    string
	Data       interface{}
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

func NewAppError(statusCode int, message string) *AppError {
	return &AppError{StatusCode: statusCode, Message: message}
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func ErrNotAuthenticated() *AppError {
	return NewAppError(http.StatusUnauthorized, "Not authenticated")
}

func ErrForbidden(message string) *AppError {
	if message == "" {
		message = "Forbidden"
	}
	return NewAppError(http.StatusForbidden, message)
}

func ErrNotFound(message string) *AppError {
	if message == "" {
		message = "Not Found"
	}
	return NewAppError(http.StatusNotFound, message)
}

func ErrBadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message)
}

func ErrConflict(message string) *AppError {
	return NewAppError(http.StatusConflict, message)
}

func ErrUnprocessable(message string) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, message)
}
