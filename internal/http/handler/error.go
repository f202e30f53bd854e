package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"pdfapi/internal/apperror"
	"pdfapi/internal/http/middleware"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_FILE_TYPE", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		Error:     message,
		Code:      code,
		RequestID: middleware.GetRequestID(c),
	})
}

// writeAppError renders a pipeline error. A staged file that vanished mid-run
// is a server fault on the operation endpoints, so it is reported as 500 there.
func writeAppError(c *fiber.Ctx, err error) error {
	return renderAppError(c, err, fiber.StatusInternalServerError)
}

// writeArtifactError renders errors from the download and listing endpoints,
// where a missing artifact is a plain 404.
func writeArtifactError(c *fiber.Ctx, err error) error {
	return renderAppError(c, err, fiber.StatusNotFound)
}

func renderAppError(c *fiber.Ctx, err error, notFound int) error {
	ae, ok := apperror.As(err)
	if !ok {
		return writeError(c, fiber.StatusInternalServerError, string(apperror.KindInternal), "internal server error")
	}
	status := apperror.StatusCode(ae.Kind)
	if ae.Kind == apperror.KindFileNotFound {
		status = notFound
	}
	return writeError(c, status, string(ae.Kind), ae.Message)
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
// maxBytes is the configured body limit, quoted back on 413.
func ErrorHandler(maxBytes int64) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if _, ok := apperror.As(err); ok {
			return writeAppError(c, err)
		}

		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, string(apperror.KindPayloadTooLarge), tooLargeMessage(maxBytes))
		case fiber.StatusTooManyRequests:
			return writeError(c, status, "RATE_LIMITED", "too many requests")
		}
		if status >= http.StatusBadRequest && status < http.StatusInternalServerError {
			return writeError(c, status, "BAD_REQUEST", strings.ToLower(http.StatusText(status)))
		}
		return writeError(c, fiber.StatusInternalServerError, string(apperror.KindInternal), "internal server error")
	}
}

func tooLargeMessage(maxBytes int64) string {
	return fmt.Sprintf("File too large. Maximum size is %dMB", maxBytes>>20)
}
