// errors.go - Structured error handling for API responses
package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ironsheep/ocr-gateway/internal/models"
	"github.com/ironsheep/ocr-gateway/internal/pipeline"
)

// APIError is an error with the HTTP status and client-facing message.
// Every failed request is rendered as {"success": false, "error": Message}.
type APIError struct {
	Status  int
	Message string
	Cause   error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Cause)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a 422 error for a malformed request body.
func NewValidationError(detail string) *APIError {
	return &APIError{
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation Error: " + detail,
	}
}

// NewRateLimitError creates a 429 error.
func NewRateLimitError(perMinute int) *APIError {
	return &APIError{
		Status:  http.StatusTooManyRequests,
		Message: fmt.Sprintf("Rate limit exceeded: %d per 1 minute", perMinute),
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	return &APIError{
		Status:  http.StatusInternalServerError,
		Message: message,
		Cause:   cause,
	}
}

// FromPipelineError maps a pipeline failure to its response.
func FromPipelineError(err error) *APIError {
	status, message := pipeline.Classify(err)
	return &APIError{Status: status, Message: message, Cause: err}
}

// ErrorHandler renders errors returned by handlers and middleware.
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError

	switch e := err.(type) {
	case *APIError:
		apiErr = e
	case *echo.HTTPError:
		apiErr = &APIError{
			Status:  e.Code,
			Message: fmt.Sprintf("%v", e.Message),
		}
	default:
		apiErr = NewInternalError("Internal Processing Error: "+err.Error(), err)
	}

	if apiErr.Status >= http.StatusInternalServerError {
		log.Printf("[api] %s %s: %v", c.Request().Method, c.Request().URL.Path, apiErr)
	}

	body := models.ErrorResponse{Success: false, Error: apiErr.Message}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(apiErr.Status)
	} else {
		writeErr = respond(c, apiErr.Status, body)
	}
	if writeErr != nil {
		log.Printf("[api] failed to write error response: %v", writeErr)
	}
}
