package handlers

import (
	"errors"
	"log/slog"

	"inventory/internal/apperrors"
	"inventory/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	msgInternal      = "Something went wrong!"
	msgRouteNotFound = "Route not found"
	codeStoreOffline = "DATABASE_OFFLINE"
)

// StatusOf maps an error kind to its HTTP status.
func StatusOf(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation, apperrors.KindInvalidArgument:
		return fiber.StatusBadRequest
	case apperrors.KindConflict:
		return fiber.StatusConflict
	case apperrors.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperrors.KindNotFound:
		return fiber.StatusNotFound
	case apperrors.KindStoreUnavailable:
		return fiber.StatusServiceUnavailable
	case apperrors.KindInternal:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders every error returned by a handler or middleware as the
// JSON envelope {message[, error][, errors]}. Internal errors are logged and
// replaced by a generic message.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			msg := fe.Message
			if fe.Code == fiber.StatusNotFound {
				msg = msgRouteNotFound
			}
			if fe.Code >= fiber.StatusInternalServerError {
				log.Error("request failed", "request_id", requestID(c), "path", c.Path(), "error", err)
				msg = msgInternal
			}
			return c.Status(fe.Code).JSON(fiber.Map{"message": msg})
		}

		kind := apperrors.KindOf(err)
		status := StatusOf(kind)
		body := fiber.Map{"message": apperrors.MessageOf(err)}

		switch kind {
		case apperrors.KindStoreUnavailable:
			body["error"] = codeStoreOffline
		case apperrors.KindValidation:
			var verrs validation.Errors
			if errors.As(err, &verrs) {
				body["errors"] = verrs
			}
		case apperrors.KindInternal:
			log.Error("request failed", "request_id", requestID(c), "method", c.Method(), "path", c.Path(), "error", err)
			body["message"] = msgInternal
		}
		return c.Status(status).JSON(body)
	}
}

// NotFound is the terminal handler for unmatched routes.
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": msgRouteNotFound})
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}
