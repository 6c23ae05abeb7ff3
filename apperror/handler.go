package apperror

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler renders every error returned by a handler as JSON.
func Handler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			kind := KindInternal
			switch fe.Code {
			case fiber.StatusUnauthorized:
				kind = KindAuth
			case fiber.StatusForbidden:
				kind = KindForbidden
			case fiber.StatusNotFound:
				kind = KindNotFound
			case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
				kind = KindValidation
			case fiber.StatusTooManyRequests:
				kind = "rate_limited"
			}
			return c.Status(fe.Code).JSON(fiber.Map{
				"success": false,
				"error":   kind,
				"message": fe.Message,
			})
		}

		appErr := From(err, "resource")
		if appErr.Status >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("kind", appErr.Kind),
				zap.Error(err),
			)
		}

		body := fiber.Map{
			"success": false,
			"error":   appErr.Kind,
			"message": appErr.Message,
		}
		if len(appErr.Fields) > 0 {
			body["fields"] = appErr.Fields
		}
		return c.Status(appErr.Status).JSON(body)
	}
}
