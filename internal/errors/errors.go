package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrInternal      = errors.New("internal error")
)

// Error codes shared with API clients. The code string and its HTTP status
// are part of the wire contract.
const (
	CodeNoToken            = "NO_TOKEN"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUserDisabled       = "USER_DISABLED"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeNotAdmin           = "NOT_ADMIN"
	CodeAccessDenied       = "ACCESS_DENIED"
	CodeGraphNotFound      = "GRAPH_NOT_FOUND"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeEmptyList          = "EMPTY_LIST"
	CodeInvalidRange       = "INVALID_RANGE"
	CodeInvalidRangeValues = "INVALID_RANGE_VALUES"
	CodeInvalidPaging      = "INVALID_PAGING"
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidCode        = "INVALID_CODE"
	CodeExpiredCode        = "EXPIRED_CODE"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError with an explicit status and code.
func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

// NoToken creates a 401 error for a missing or malformed Authorization header.
func NoToken() *AppError {
	return &AppError{
		Code:    CodeNoToken,
		Message: "authorization token is missing",
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// InvalidToken creates a 401 error. Malformed, unsigned, expired, and
// wrong-type tokens all map here so callers cannot probe which it was.
func InvalidToken() *AppError {
	return &AppError{
		Code:    CodeInvalidToken,
		Message: "token is invalid or expired",
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// InvalidCredentials creates a 401 error for a failed login.
func InvalidCredentials() *AppError {
	return &AppError{
		Code:    CodeInvalidCredentials,
		Message: "email or password is incorrect",
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// UserDisabled creates a 403 error for a deactivated account.
func UserDisabled() *AppError {
	return &AppError{
		Code:    CodeUserDisabled,
		Message: "account has been disabled",
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// UserNotFound creates a 401 error for a token whose subject no longer exists.
func UserNotFound() *AppError {
	return &AppError{
		Code:    CodeUserNotFound,
		Message: "user not found",
		Status:  http.StatusUnauthorized,
		Err:     ErrNotFound,
	}
}

// NotAdmin creates a 403 error for a non-admin caller on an admin endpoint.
func NotAdmin() *AppError {
	return &AppError{
		Code:    CodeNotAdmin,
		Message: "insufficient permissions",
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// AccessDenied creates a 403 error for an ownership failure.
func AccessDenied(message string) *AppError {
	return &AppError{
		Code:    CodeAccessDenied,
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// GraphNotFound creates a 404 error.
func GraphNotFound(id int64) *AppError {
	return &AppError{
		Code:    CodeGraphNotFound,
		Message: fmt.Sprintf("graph %d not found", id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// EmailExists creates a 409 error for duplicate registration.
func EmailExists(email string) *AppError {
	return &AppError{
		Code:    CodeEmailExists,
		Message: fmt.Sprintf("a user with email %q already exists", email),
		Status:  http.StatusConflict,
		Err:     ErrAlreadyExists,
	}
}

// InvalidInput creates a 400 error with the VALIDATION_ERROR code.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    CodeValidationError,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
