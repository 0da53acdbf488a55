package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes used across the application. Handlers map these to HTTP
// statuses via StatusForError.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeInvalidToken    = "INVALID_TOKEN"
	CodeExpiredToken    = "EXPIRED_TOKEN"
	CodeNotFound        = "NOT_FOUND"
	CodeForbidden       = "FORBIDDEN"
	CodeConflict        = "CONFLICT"
	CodeInternal        = "INTERNAL_ERROR"
)

// AppError is a classified application error.
type AppError struct {
	Code    string
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

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewUnauthenticatedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthenticated,
		Message: message,
	}
}

func NewInvalidTokenError(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidToken,
		Message: message,
	}
}

func NewExpiredTokenError(message string) *AppError {
	return &AppError{
		Code:    CodeExpiredToken,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// StatusForError maps a classified error to its HTTP status. Unclassified
// errors surface as 500.
func StatusForError(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeValidation, CodeConflict:
		return fiber.StatusBadRequest
	case CodeUnauthenticated, CodeInvalidToken, CodeExpiredToken:
		return fiber.StatusUnauthorized
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError writes the standard failure envelope. The wrapped cause
// of an internal error is kept server-side; the client only sees the
// generic message.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	message := err.Error()
	var appErr *AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
