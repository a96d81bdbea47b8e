package cli

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/dreamdigital/landing/internal/logging"
)

// createFiberConfig returns Fiber configuration.
func createFiberConfig(appName string, views fiber.Views) fiber.Config {
	return fiber.Config{
		AppName:      appName,
		Views:        views,
		ErrorHandler: errorHandler,
	}
}

// errorHandler answers with a JSON body; 5xx details stay in the log
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		logging.L().Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		message = "Internal server error"
	}
	return c.Status(code).JSON(fiber.Map{"error": message})
}
