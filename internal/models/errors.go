package models

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Error codes used across services and mapped to HTTP statuses by the server layer.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeConflict           = "CONFLICT"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeSessionExpired     = "SESSION_EXPIRED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	CodeInvalidEncoding    = "INVALID_ENCODING"
	CodeCorruptImage       = "CORRUPT_IMAGE"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
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

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

func NewInvalidCredentialsError() *AppError {
	return &AppError{
		Code:    CodeInvalidCredentials,
		Message: "Invalid credentials",
	}
}

func NewInvalidTokenError(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidToken,
		Message: message,
	}
}

func NewSessionExpiredError() *AppError {
	return &AppError{
		Code:    CodeSessionExpired,
		Message: "Session has expired",
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewUnsupportedFormatError(format string) *AppError {
	return &AppError{
		Code:    CodeUnsupportedFormat,
		Message: fmt.Sprintf("Unsupported image format %q", format),
	}
}

func NewInvalidEncodingError(err error) *AppError {
	return &AppError{
		Code:    CodeInvalidEncoding,
		Message: "Image payload is not valid base64",
		Err:     err,
	}
}

func NewCorruptImageError(err error) *AppError {
	return &AppError{
		Code:    CodeCorruptImage,
		Message: "Image data could not be decoded",
		Err:     err,
	}
}

func NewStorageUnavailableError(err error) *AppError {
	return &AppError{
		Code:    CodeStorageUnavailable,
		Message: "Object storage is unavailable",
		Err:     err,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// RespondWithError creates a standardized error response. Wrapped error text
// is exposed only for client-caused failures; a 5xx body stays generic and
// the underlying error goes to the server log instead, so driver or SDK
// internals never reach the wire.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	if appErr, ok := err.(*AppError); ok {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil && status < fiber.StatusInternalServerError {
			response.Details = appErr.Err.Error()
		}
	} else if status >= fiber.StatusInternalServerError {
		response = ErrorResponse{Error: "Internal server error"}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	if status >= fiber.StatusInternalServerError {
		slog.ErrorContext(c.UserContext(), "request failed",
			slog.Int("status", status),
			slog.String("error", err.Error()))
	}

	return c.Status(status).JSON(response)
}
