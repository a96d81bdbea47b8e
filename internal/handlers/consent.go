package handlers

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/dreamdigital/landing/internal/logging"
	"github.com/dreamdigital/landing/internal/models"
)

// HandleGetConsent returns the calling visitor's cookie consent
// GET /api/consent
func HandleGetConsent(d *Deps) fiber.Handler {
	return func(c fiber.Ctx) error {
		visitor, _ := d.visitorID(c)
		return c.JSON(fiber.Map{
			"consent": d.Consent.Get(c.Context(), visitor),
			"decided": d.Consent.Decided(c.Context(), visitor),
		})
	}
}

// HandleUpdateConsent stores the calling visitor's cookie consent
// PUT /api/consent
func HandleUpdateConsent(d *Deps) fiber.Handler {
	return func(c fiber.Ctx) error {
		var choice models.CookieConsent
		if err := c.Bind().Body(&choice); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid JSON payload",
			})
		}

		visitor, _ := d.visitorID(c)
		saved, err := d.Consent.Update(c.Context(), visitor, choice)
		if err != nil {
			logging.L().Error("failed to save cookie consent", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to save consent",
			})
		}
		return c.JSON(fiber.Map{
			"consent": saved,
			"decided": true,
		})
	}
}
