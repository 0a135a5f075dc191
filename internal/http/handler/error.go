package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"studocs/internal/auth"
	"studocs/internal/http/middleware"
	"studocs/internal/http/view"
	"studocs/internal/repository"
	"studocs/internal/service"
	"studocs/internal/storage"
	"studocs/internal/validation"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a standardized JSON error response. message must be
// safe to show; internal errors never reach it.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: middleware.RequestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	})
}

// writeServiceError maps a service error onto the JSON envelope.
func writeServiceError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var (
		ve       *validation.Error
		rejected *repository.RejectedError
	)
	switch {
	case errors.As(err, &ve):
		return writeError(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", ve.Message)
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	case errors.Is(err, auth.ErrUnauthorized):
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "session expired or invalid")
	case errors.Is(err, repository.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	case errors.Is(err, storage.ErrObjectNotFound):
		return writeError(c, fiber.StatusNotFound, "FILE_NOT_FOUND", "file not found in storage")
	case errors.Is(err, storage.ErrObjectExists):
		return writeError(c, fiber.StatusConflict, "CONFLICT", "a file with this key already exists")
	case errors.As(err, &rejected):
		return writeError(c, fiber.StatusForbidden, "REJECTED", rejected.Message)
	}
	log.Error("request_failed",
		zap.String("request_id", middleware.RequestIDFromCtx(c)),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

func wantsJSON(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/") || c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}

// ErrorHandler returns the global error handler. API callers get the JSON
// envelope; browsers get the error page.
func ErrorHandler(views *view.Renderer, log *zap.Logger) fiber.ErrorHandler {
	log = orNop(log)
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		code, message := "INTERNAL_ERROR", "internal server error"
		switch status {
		case fiber.StatusBadRequest:
			code, message = "BAD_REQUEST", "bad request"
		case fiber.StatusNotFound:
			code, message = "NOT_FOUND", "resource not found"
		case fiber.StatusMethodNotAllowed:
			code, message = "METHOD_NOT_ALLOWED", "method not allowed"
		case fiber.StatusRequestEntityTooLarge:
			code, message = "PAYLOAD_TOO_LARGE", "file is too large"
		default:
			if status >= fiber.StatusInternalServerError {
				log.Error("unhandled_error",
					zap.String("request_id", middleware.RequestIDFromCtx(c)),
					zap.String("path", c.Path()),
					zap.Error(err),
				)
			} else if fe != nil && fe.Message != "" {
				code, message = "ERROR", strings.ToLower(fe.Message)
			}
		}

		if views == nil || wantsJSON(c) {
			return writeError(c, status, code, message)
		}
		c.Status(status)
		return c.Render(view.PageError, view.ErrorPage{
			Status:    status,
			Message:   strings.ToUpper(message[:1]) + message[1:],
			RequestID: middleware.RequestIDFromCtx(c),
		})
	}
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
