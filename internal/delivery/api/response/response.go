// Package response writes the JSON bodies of the API.
package response

import (
	"net/http"

	deliverycontext "folio/internal/delivery/context"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body of every failed request. Error is the stable, user-facing message.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// SuccessFlag is the body of operations that return nothing else.
type SuccessFlag struct {
	Success bool `json:"success"`
}

// Success writes data as the response body.
func Success(c echo.Context, statusCode int, data any) error {
	return c.JSON(statusCode, data)
}

// OK writes {"success": true}.
func OK(c echo.Context) error {
	return c.JSON(http.StatusOK, SuccessFlag{Success: true})
}

// Error writes an error body. Details are kept only for 400 responses.
func Error(c echo.Context, statusCode int, errorCode, message string, details any) error {
	if statusCode != http.StatusBadRequest {
		details = nil
	}
	if s, ok := details.(string); ok && s == "" {
		details = nil
	}

	return c.JSON(statusCode, ErrorResponse{
		Error:     message,
		Code:      errorCode,
		Details:   details,
		RequestID: deliverycontext.GetRequestID(c),
	})
}

// InternalServerError returns a 500 error
func InternalServerError(c echo.Context, errorCode, message string) error {
	return Error(c, http.StatusInternalServerError, errorCode, message, nil)
}
