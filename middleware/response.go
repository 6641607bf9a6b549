package middleware

import (
	"coursemanager/utils"
	"coursemanager/utils/apperror"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// UnauthorizedResponse is the body every protected route returns without a valid bearer token
func UnauthorizedResponse(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status":  false,
		"error":   "Unauthorized",
		"message": "You must include a valid Authorization token to access this resource.",
		"data":    nil,
	})
}

// ErrorResponse writes an engine error. Client errors keep their message, anything else is a logged 500.
func ErrorResponse(c *fiber.Ctx, err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return JsonResponse(c, appErr.Status, false, appErr.Message, nil)
	}

	log.Printf("[API] %s %s failed: %+v", c.Method(), c.Path(), err)
	utils.ReportError(err, map[string]interface{}{
		"method":     c.Method(),
		"path":       c.Path(),
		"request_id": c.Locals("requestId"),
	})
	return JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
}

// FiberErrorHandler keeps router-level failures (unknown route, bad method, recovered panic) in the envelope
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonResponse(c, fe.Code, false, fe.Message, nil)
	}
	return ErrorResponse(c, err)
}
