// errors.go - Structured error handling for API responses
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/unibrain/backend/internal/export"
	"github.com/unibrain/backend/internal/pipeline"
	"github.com/unibrain/backend/internal/session"
	"github.com/unibrain/backend/internal/storage"
	"github.com/unibrain/backend/internal/summarize"
	"github.com/unibrain/backend/internal/translate"
)

// ShowErrorDetails includes the cause of unexpected errors in responses.
// main enables it for development logging.
var ShowErrorDetails = false

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewContentTooShortError creates the 422 warning shown when there is too
// little text to summarize.
func NewContentTooShortError() *APIError {
	return &APIError{
		Status:  http.StatusUnprocessableEntity,
		Code:    "CONTENT_TOO_SHORT",
		Message: "Content too short to summarize.",
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil && ShowErrorDetails {
		err.Details = cause.Error()
	}
	return err
}

// NewServiceUnavailableError creates a 503 Service Unavailable error
func NewServiceUnavailableError(message string) *APIError {
	return &APIError{
		Status:  http.StatusServiceUnavailable,
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
	}
}

// mapError converts domain errors into API errors. sessionID is used for
// not-found messages.
func mapError(err error, sessionID string) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return NewNotFoundError("session", sessionID)
	case errors.Is(err, storage.ErrNotFound):
		return NewBadRequestError("uploaded file is no longer available", err)
	case errors.Is(err, pipeline.ErrEmptyBatch):
		return NewValidationError("files")
	case errors.Is(err, pipeline.ErrTooManyFiles):
		return NewBadRequestError("too many files in one upload", err)
	case errors.Is(err, session.ErrNoText):
		return NewBadRequestError("no text available, upload documents first", nil)
	case errors.Is(err, summarize.ErrTooShort):
		return NewContentTooShortError()
	case errors.Is(err, summarize.ErrUnavailable):
		return NewServiceUnavailableError("The summarization service is currently unavailable. Please try again later.")
	case errors.Is(err, translate.ErrUnsupportedLanguage):
		return NewBadRequestError("unsupported target language", err)
	case errors.Is(err, translate.ErrUnavailable):
		return NewServiceUnavailableError(translate.TransientMessage(err))
	case errors.Is(err, export.ErrUnknownFormat):
		return NewValidationError("format")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return NewServiceUnavailableError("request cancelled")
	}
	return NewInternalError("unexpected error", err)
}

// ErrorHandler middleware for Echo
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &httpErr):
		apiErr = &APIError{
			Status:  httpErr.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	default:
		apiErr = &APIError{
			Status:  http.StatusInternalServerError,
			Code:    "UNKNOWN_ERROR",
			Message: "An unexpected error occurred",
		}
		if ShowErrorDetails {
			apiErr.Details = err.Error()
		}
	}

	if c.Request().Method == http.MethodHead {
		c.NoContent(apiErr.Status)
		return
	}
	RespondWithError(c, apiErr)
}

// RespondWithError is a helper to respond with an APIError
func RespondWithError(c echo.Context, err *APIError) error {
	return c.JSON(err.Status, err)
}
